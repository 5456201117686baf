package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spigell/interview-readiness/internal/pipeline"
	"github.com/spigell/interview-readiness/internal/profile"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const promptSkipTimeline = "skip"

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Run one assessment and print the result as JSON",
	Long: `Run one assessment and print the result as JSON.

Answers are read from --questionnaire or asked interactively.
Passing --resume switches to resume mode.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return assess(cmd)
	},
}

func init() {
	rootCmd.AddCommand(assessCmd)

	assessCmd.Flags().StringP("questionnaire", "q", "", "questionnaire JSON file; asked interactively when unset")
	assessCmd.Flags().StringP("resume", "r", "", "resume PDF; enables resume mode")
}

func assess(cmd *cobra.Command) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.log.Sync() //nolint:errcheck

	questionnaireFile, _ := cmd.Flags().GetString("questionnaire")
	resumeFile, _ := cmd.Flags().GetString("resume")

	mode := profile.ModeQuestions
	req := pipeline.Request{}
	if resumeFile != "" {
		mode = profile.ModeResume
		upload, err := readResume(resumeFile)
		if err != nil {
			return err
		}
		req.Resume = upload
	}
	req.Mode = string(mode)

	if questionnaireFile != "" {
		req.Questionnaire, err = os.ReadFile(questionnaireFile)
		if err != nil {
			return fmt.Errorf("reading questionnaire: %w", err)
		}
	} else {
		req.Questionnaire, err = askQuestionnaire(mode)
		if err != nil {
			return err
		}
	}

	e.log.Info("assessing candidate",
		zap.String("mode", req.Mode),
		zap.String("model", e.generator.Model()),
	)

	outcome, err := e.pipeline.Run(cmd.Context(), req)
	if err != nil {
		pe := pipeline.AsError(err)
		if len(pe.Details) > 0 {
			details, _ := json.MarshalIndent(pe.Details, "", "  ")
			e.log.Debug(fmt.Sprintf("failure details: \n %s", details))
		}
		return fmt.Errorf("%s: %s", pe.Kind, pe.Message)
	}

	if outcome.ResumeCheck != nil {
		e.log.Info("resume accepted", zap.Int("hits", outcome.ResumeCheck.Hits), zap.Strings("matched", outcome.ResumeCheck.Matched))
	}

	pretty, err := json.MarshalIndent(outcome.Result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
	return nil
}

func readResume(path string) (*pipeline.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading resume: %w", err)
	}

	return &pipeline.Upload{
		Filename:    filepath.Base(path),
		ContentType: http.DetectContentType(data),
		Data:        data,
	}, nil
}

// askQuestionnaire collects the answers interactively and returns them as
// questionnaire JSON.
func askQuestionnaire(mode profile.Mode) ([]byte, error) {
	answers := map[string]string{}

	role, err := (&promptui.Prompt{
		Label:    "Role applying for",
		Validate: notBlank,
	}).Run()
	if err != nil {
		return nil, fmt.Errorf("asking role: %w", err)
	}
	answers["roleApplyingFor"] = strings.TrimSpace(role)

	timelines := []string{promptSkipTimeline}
	for _, t := range profile.Timelines {
		timelines = append(timelines, string(t))
	}
	_, timeline, err := (&promptui.Select{
		Label: "Next interview expected in",
		Items: timelines,
	}).Run()
	if err != nil {
		return nil, fmt.Errorf("asking timeline: %w", err)
	}
	if timeline != promptSkipTimeline {
		answers["timeline"] = timeline
	}

	for i, q := range profile.Questions {
		prompt := promptui.Prompt{Label: fmt.Sprintf("Q%d %s", i+1, q.Prompt)}
		if q.Required && mode == profile.ModeQuestions {
			prompt.Validate = notBlank
		}

		answer, err := prompt.Run()
		if err != nil {
			return nil, fmt.Errorf("asking %s: %w", q.Key, err)
		}
		answers[q.Key] = strings.TrimSpace(answer)
	}

	return json.Marshal(answers)
}

func notBlank(input string) error {
	if strings.TrimSpace(input) == "" {
		return errors.New("an answer is required")
	}
	return nil
}
