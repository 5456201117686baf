package resume

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTextJoinsPagesInOrder(t *testing.T) {
	// Page 2 has an empty content stream.
	data, err := os.ReadFile(filepath.Join("testdata", "three_pages.pdf"))
	require.NoError(t, err)

	text, err := ExtractText(data)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\n\n\n\nExperience", text)
}

func TestExtractTextRejectsNonPDF(t *testing.T) {
	for name, data := range map[string][]byte{
		"empty":     nil,
		"plain":     []byte("Experience\nEducation\nSkills"),
		"truncated": []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog"),
	} {
		t.Run(name, func(t *testing.T) {
			text, err := ExtractText(data)
			assert.Error(t, err)
			assert.Empty(t, text)
		})
	}
}
