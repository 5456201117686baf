package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spigell/interview-readiness/internal/resume"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var checkResumeCmd = &cobra.Command{
	Use:   "check-resume <file.pdf>",
	Short: "Extract text from a PDF and print the resume gate verdict",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return checkResume(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(checkResumeCmd)

	checkResumeCmd.Flags().Bool("show-text", false, "include the extracted text in the output")
	checkResumeCmd.Flags().Int("min-hits", resume.DefaultMinHits, "keyword matches required to pass")
	viper.BindPFlag("resume.min-hits", checkResumeCmd.Flags().Lookup("min-hits"))
}

type checkResult struct {
	resume.Check
	Text string `json:"text,omitempty"`
}

func checkResume(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading resume: %w", err)
	}

	text, err := resume.ExtractText(data)
	if err != nil {
		return fmt.Errorf("extracting text from %s: %w", path, err)
	}

	out := checkResult{Check: resume.Inspect(text, viper.GetInt("resume.min-hits"))}
	if showText, _ := cmd.Flags().GetBool("show-text"); showText {
		out.Text = text
	}

	pretty, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding verdict: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
	return nil
}
