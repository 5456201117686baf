package profile

// Question describes one questionnaire entry.
type Question struct {
	// Key is the JSON key of the answer.
	Key string
	// Caption labels the answer inside the candidate profile.
	Caption string
	// Prompt is the question as asked to the candidate.
	Prompt string
	// Required answers must be non-blank in questions mode.
	Required bool

	answer func(*Questionnaire) string
}

// Answer pairs a question with the candidate's text.
type Answer struct {
	Question
	Number int
	Text   string
}

// Questions is the fixed questionnaire in profile order.
var Questions = []Question{
	{
		Key:      "q1_intro",
		Caption:  "Intro",
		Prompt:   "Introduce yourself professionally (education/current role).",
		Required: true,
		answer:   func(q *Questionnaire) string { return q.Intro },
	},
	{
		Key:     "q2_strengths",
		Caption: "Strengths",
		Prompt:  "Top 3 strengths, with an example.",
		answer:  func(q *Questionnaire) string { return q.Strengths },
	},
	{
		Key:      "q3_proudest",
		Caption:  "Proudest accomplishment",
		Prompt:   "Proudest accomplishment + results.",
		Required: true,
		answer:   func(q *Questionnaire) string { return q.Proudest },
	},
	{
		Key:      "q4_challenge",
		Caption:  "Challenge overcame",
		Prompt:   "Challenge faced + how you overcame it.",
		Required: true,
		answer:   func(q *Questionnaire) string { return q.Challenge },
	},
	{
		Key:     "q5_teamwork",
		Caption: "Teamwork",
		Prompt:  "Team example + your contribution.",
		answer:  func(q *Questionnaire) string { return q.Teamwork },
	},
	{
		Key:     "q6_learned_fast",
		Caption: "Learned fast",
		Prompt:  "Learned something new quickly (skill/tool/concept).",
		answer:  func(q *Questionnaire) string { return q.LearnedFast },
	},
	{
		Key:     "q7_mistake",
		Caption: "Mistake/setback",
		Prompt:  "Mistake/setback + what you learned.",
		answer:  func(q *Questionnaire) string { return q.Mistake },
	},
	{
		Key:     "q8_motivation",
		Caption: "Motivation",
		Prompt:  "What motivates you most?",
		answer:  func(q *Questionnaire) string { return q.Motivation },
	},
	{
		Key:      "q9_3to5years",
		Caption:  "3-5 years",
		Prompt:   "Where do you see yourself in 3-5 years?",
		Required: true,
		answer:   func(q *Questionnaire) string { return q.FutureVision },
	},
	{
		Key:     "q10_self_awareness",
		Caption: "Self-awareness",
		Prompt:  "Feedback you received + what you changed (self-awareness).",
		answer:  func(q *Questionnaire) string { return q.SelfAwareness },
	},
}
