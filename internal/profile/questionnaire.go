package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// Mode selects which evidence the assessment is based on.
type Mode string

const (
	ModeResume    Mode = "resume"
	ModeQuestions Mode = "questions"
)

// ParseMode accepts exactly "resume" or "questions".
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeResume, ModeQuestions:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("invalid mode %q: expected %q or %q", s, ModeResume, ModeQuestions)
	}
}

// Timeline is the candidate's next interview horizon.
type Timeline string

const (
	TimelineUnderMonth Timeline = "< 1 month"
	TimelineOneToThree Timeline = "1-3 months"
	TimelineThreePlus  Timeline = "3+ months"
)

// Timelines lists the accepted timeline values in ascending order.
var Timelines = []Timeline{TimelineUnderMonth, TimelineOneToThree, TimelineThreePlus}

// Valid reports whether t is one of the known timelines. Empty is not valid.
func (t Timeline) Valid() bool {
	for _, known := range Timelines {
		if t == known {
			return true
		}
	}
	return false
}

// Questionnaire holds the self-reported answers of a candidate.
type Questionnaire struct {
	RoleApplyingFor string   `mapstructure:"roleApplyingFor" json:"roleApplyingFor" validate:"required"`
	Timeline        Timeline `mapstructure:"timeline" json:"timeline,omitempty" validate:"omitempty,timeline"`

	Intro         string `mapstructure:"q1_intro" json:"q1_intro"`
	Strengths     string `mapstructure:"q2_strengths" json:"q2_strengths"`
	Proudest      string `mapstructure:"q3_proudest" json:"q3_proudest"`
	Challenge     string `mapstructure:"q4_challenge" json:"q4_challenge"`
	Teamwork      string `mapstructure:"q5_teamwork" json:"q5_teamwork"`
	LearnedFast   string `mapstructure:"q6_learned_fast" json:"q6_learned_fast"`
	Mistake       string `mapstructure:"q7_mistake" json:"q7_mistake"`
	Motivation    string `mapstructure:"q8_motivation" json:"q8_motivation"`
	FutureVision  string `mapstructure:"q9_3to5years" json:"q9_3to5years"`
	SelfAwareness string `mapstructure:"q10_self_awareness" json:"q10_self_awareness"`

	// Legacy keys sent by older clients.
	Role      string `mapstructure:"role" json:"role,omitempty"`
	SelfIntro string `mapstructure:"selfIntro" json:"selfIntro,omitempty"`
}

// ValidationError lists questionnaire fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing or invalid: " + strings.Join(e.Fields, ", ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("timeline", func(fl validator.FieldLevel) bool {
		return Timeline(fl.Field().String()).Valid()
	})
	return v
}

// nullableKeys may be sent as JSON null and then count as absent. Every other
// questionnaire key holds text and rejects null.
var nullableKeys = map[string]bool{"timeline": true, "role": true, "selfIntro": true}

// textKeys are the questionnaire keys that reject null.
var textKeys = func() map[string]bool {
	keys := make(map[string]bool)
	t := reflect.TypeOf(Questionnaire{})
	for i := 0; i < t.NumField(); i++ {
		key := t.Field(i).Tag.Get("mapstructure")
		if key != "" && !nullableKeys[key] {
			keys[key] = true
		}
	}
	return keys
}()

// Decode parses questionnaire JSON. Unknown keys are ignored, values of the
// wrong type, null answers and unknown timelines are rejected. A blank
// roleApplyingFor falls back to the legacy role key. Required fields are
// checked by Validate.
func Decode(raw []byte) (*Questionnaire, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode questionnaire: %w", err)
	}
	if fields == nil {
		return nil, errors.New("decode questionnaire: expected a JSON object")
	}
	for key, value := range fields {
		if value == nil && textKeys[key] {
			return nil, fmt.Errorf("decode questionnaire: %s must not be null", key)
		}
	}

	var q Questionnaire
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &q,
		TagName: "mapstructure",
	})
	if err != nil {
		return nil, fmt.Errorf("create questionnaire decoder: %w", err)
	}
	if err := decoder.Decode(fields); err != nil {
		return nil, fmt.Errorf("decode questionnaire: %w", err)
	}

	q.RoleApplyingFor = strings.TrimSpace(q.RoleApplyingFor)
	if q.RoleApplyingFor == "" {
		q.RoleApplyingFor = strings.TrimSpace(q.Role)
	}

	if err := validate.Var(q.Timeline, "omitempty,timeline"); err != nil {
		return nil, fmt.Errorf("decode questionnaire: unknown timeline %q", q.Timeline)
	}

	return &q, nil
}

// Validate checks the fields every assessment needs.
func (q *Questionnaire) Validate() error {
	err := validate.Struct(q)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return &ValidationError{Fields: fields}
}

// MissingRequired returns the keys of required answers left blank, in
// question order. Only questions mode requires answers.
func (q *Questionnaire) MissingRequired() []string {
	var missing []string
	for _, question := range Questions {
		if question.Required && strings.TrimSpace(question.answer(q)) == "" {
			missing = append(missing, question.Key)
		}
	}
	return missing
}

// Answers returns the ten answers in question order.
func (q *Questionnaire) Answers() []Answer {
	answers := make([]Answer, 0, len(Questions))
	for i, question := range Questions {
		answers = append(answers, Answer{
			Number:   i + 1,
			Question: question,
			Text:     question.answer(q),
		})
	}
	return answers
}
