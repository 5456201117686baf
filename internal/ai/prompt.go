package ai

import (
	_ "embed"
	"strings"
)

//go:embed prompt.md
var promptTemplate string

const (
	profilePlaceholder = "{{CANDIDATE_PROFILE}}"
	levelsPlaceholder  = "{{READINESS_LEVELS}}"
)

// BuildPrompt embeds the candidate profile into the assessment prompt. The
// profile is inserted verbatim and is never interpreted as template syntax.
func BuildPrompt(profile string) string {
	levels := make([]string, len(ReadinessLevels))
	for i, level := range ReadinessLevels {
		levels[i] = string(level)
	}

	prompt := strings.ReplaceAll(promptTemplate, levelsPlaceholder, strings.Join(levels, "|"))
	return strings.Replace(prompt, profilePlaceholder, profile, 1)
}
