package profile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQuestionsMode(t *testing.T) {
	q := &Questionnaire{
		RoleApplyingFor: "Data Analyst",
		Timeline:        TimelineOneToThree,
		Intro:           "a",
		Proudest:        "c",
		Challenge:       "d",
		FutureVision:    "i",
	}

	got := Build(ModeQuestions, q, "ignored résumé text")

	want := strings.Join([]string{
		"MODE: questions",
		"ROLE APPLYING FOR: Data Analyst",
		"TIMELINE: 1-3 months",
		"",
		"ANSWERS:",
		"Q1 Intro: a",
		"Q2 Strengths: ",
		"Q3 Proudest accomplishment: c",
		"Q4 Challenge overcame: d",
		"Q5 Teamwork: ",
		"Q6 Learned fast: ",
		"Q7 Mistake/setback: ",
		"Q8 Motivation: ",
		"Q9 3-5 years: i",
		"Q10 Self-awareness: ",
		"",
	}, "\n")

	assert.Equal(t, want, got)
	assert.NotContains(t, got, "RESUME TEXT:")
}

func TestBuildMissingRoleAndTimeline(t *testing.T) {
	got := Build(ModeQuestions, &Questionnaire{}, "")

	assert.Contains(t, got, "ROLE APPLYING FOR: (not provided)\n")
	assert.Contains(t, got, "TIMELINE: (not provided)\n")
}

func TestBuildResumeMode(t *testing.T) {
	q := &Questionnaire{RoleApplyingFor: "Backend Engineer"}

	got := Build(ModeResume, q, "Experience\nGo services")
	assert.True(t, strings.HasSuffix(got, "Q10 Self-awareness: \n\nRESUME TEXT:\nExperience\nGo services"), got)

	withoutText := Build(ModeResume, q, "")
	assert.NotContains(t, withoutText, "RESUME TEXT:")
}

func TestBuildTruncatesResumeByRunes(t *testing.T) {
	text := strings.Repeat("é", MaxResumeRunes+50)

	got := Build(ModeResume, &Questionnaire{RoleApplyingFor: "QA"}, text)

	_, resumeSection, found := strings.Cut(got, "RESUME TEXT:\n")
	require.True(t, found)
	assert.Equal(t, MaxResumeRunes, len([]rune(resumeSection)))
}

func TestBuildKeepsAnswersVerbatim(t *testing.T) {
	q := &Questionnaire{RoleApplyingFor: "SRE", Intro: "  line one\nline two  "}

	got := Build(ModeQuestions, q, "")

	assert.Contains(t, got, "Q1 Intro:   line one\nline two  \n")
}
