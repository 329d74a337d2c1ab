package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

type practiceSettings struct {
	Role      string
	Mode      string
	Questions string
}

func newPracticeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "practice",
		Short: "Run a full interview interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := promptForSettings()
			if err != nil {
				return err
			}

			n, _ := strconv.Atoi(settings.Questions)
			client := opts.client()
			out := cmd.OutOrStdout()

			started, err := client.Start(cmd.Context(), startRequest{
				Role:         settings.Role,
				Mode:         settings.Mode,
				NumQuestions: n,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, renderStart(started))

			for {
				answer, err := promptForAnswer()
				if err != nil {
					return err
				}

				resp, err := client.Submit(cmd.Context(), started.SessionID, answer)
				if err != nil {
					// Validation failures keep the session open, so ask again.
					fmt.Fprintln(out, labelStyle.Render(err.Error()))
					continue
				}
				fmt.Fprintln(out, renderFeedback(resp))
				if resp.Completed {
					break
				}
			}

			report, err := client.Summary(cmd.Context(), started.SessionID)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, renderSummary(report))
			return nil
		},
	}
}

func promptForSettings() (practiceSettings, error) {
	questions := []*survey.Question{
		{
			Name:   "role",
			Prompt: &survey.Input{Message: "Target role:", Default: "Software Engineer"},
		},
		{
			Name: "mode",
			Prompt: &survey.Select{
				Message: "Interview type:",
				Options: []string{"technical", "behavioral"},
				Default: "technical",
			},
		},
		{
			Name:     "questions",
			Prompt:   &survey.Input{Message: "Number of questions (1-10):", Default: "3"},
			Validate: validateQuestionCount,
		},
	}

	var settings practiceSettings
	if err := survey.Ask(questions, &settings); err != nil {
		return practiceSettings{}, err
	}
	return settings, nil
}

func validateQuestionCount(val interface{}) error {
	str, ok := val.(string)
	if !ok {
		return errors.New("invalid input")
	}
	n, err := strconv.Atoi(strings.TrimSpace(str))
	if err != nil {
		return errors.New("enter a whole number")
	}
	if n < 1 || n > 10 {
		return errors.New("choose between 1 and 10 questions")
	}
	return nil
}

func promptForAnswer() (string, error) {
	var answer string
	prompt := &survey.Multiline{
		Message: "Your answer:",
		Help:    "Finish with an empty line; answers cannot be blank",
	}
	err := survey.AskOne(prompt, &answer, survey.WithValidator(survey.Required))
	return strings.TrimSpace(answer), err
}
