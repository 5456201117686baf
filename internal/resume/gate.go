// Package resume holds the résumé plausibility gate and PDF text extraction.
package resume

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMinHits is the keyword threshold used when none is configured.
	DefaultMinHits = 3
	// MinTextLength is the shortest normalized text, in characters, that can pass.
	MinTextLength = 400
)

const (
	reasonTooShort   = "Text is too short to be a resume."
	reasonAccepted   = "Looks like a resume."
	reasonFewMatches = "Not enough resume keywords (need %d)."
)

// Keywords are matched as substrings of the normalized text, so a hit on
// "work experience" also counts "experience".
var Keywords = []string{
	"professional summary",
	"experience",
	"work experience",
	"education",
	"skills",
	"projects",
	"internship",
	"certification",
	"summary",
	"objective",
	"linkedin",
	"github",
	"achievements",
	"responsibilities",
}

// Check is the verdict of the plausibility gate.
type Check struct {
	IsResume bool     `json:"isResume"`
	Hits     int      `json:"hits"`
	Matched  []string `json:"matched"`
	Reason   string   `json:"reason"`
}

// Normalize lower-cases text, collapses whitespace runs to one space and trims.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// Inspect decides whether text plausibly came from a résumé. Keywords are
// always counted; short text is rejected whatever it matched. minHits <= 0
// uses DefaultMinHits.
func Inspect(text string, minHits int) Check {
	if minHits <= 0 {
		minHits = DefaultMinHits
	}

	normalized := Normalize(text)

	matched := make([]string, 0, len(Keywords))
	for _, keyword := range Keywords {
		if strings.Contains(normalized, keyword) {
			matched = append(matched, keyword)
		}
	}

	check := Check{Hits: len(matched), Matched: matched}
	if utf8.RuneCountInString(normalized) < MinTextLength {
		check.Reason = reasonTooShort
		return check
	}
	if check.Hits < minHits {
		check.Reason = fmt.Sprintf(reasonFewMatches, minHits)
		return check
	}

	check.IsResume = true
	check.Reason = reasonAccepted
	return check
}
