// Package profile turns questionnaire answers and résumé text into the
// candidate profile consumed by the assessment prompt.
package profile

import (
	"fmt"
	"strings"
)

// MaxResumeRunes caps the résumé text embedded in a profile.
const MaxResumeRunes = 12000

const notProvided = "(not provided)"

// Build renders the candidate profile. The résumé section is appended only in
// resume mode and only when text is present. Answers are copied verbatim.
func Build(mode Mode, q *Questionnaire, resumeText string) string {
	if q == nil {
		q = &Questionnaire{}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "MODE: %s\n", mode)
	fmt.Fprintf(&b, "ROLE APPLYING FOR: %s\n", orNotProvided(q.RoleApplyingFor))
	fmt.Fprintf(&b, "TIMELINE: %s\n", orNotProvided(string(q.Timeline)))
	b.WriteString("\nANSWERS:\n")

	for _, answer := range q.Answers() {
		fmt.Fprintf(&b, "Q%d %s: %s\n", answer.Number, answer.Caption, answer.Text)
	}

	if mode == ModeResume && resumeText != "" {
		b.WriteString("\nRESUME TEXT:\n")
		b.WriteString(truncateRunes(resumeText, MaxResumeRunes))
	}

	return b.String()
}

func orNotProvided(value string) string {
	if value == "" {
		return notProvided
	}
	return value
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
