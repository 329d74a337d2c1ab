package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] 无法加载 .env，改用系统环境变量: %v", err)
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	server  string
	timeout time.Duration
}

func (o *rootOptions) client() *apiClient {
	return newAPIClient(o.server, o.timeout)
}

// newRootCmd 构建 interviewctl 根命令
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "interviewctl",
		Short:         "Terminal client for the interview practice backend",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	defaultServer := os.Getenv("INTERVIEW_API_URL")
	if defaultServer == "" {
		defaultServer = "http://localhost:5001"
	}
	root.PersistentFlags().StringVar(&opts.server, "server", defaultServer, "backend base URL")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 60*time.Second, "per-request timeout")

	root.AddCommand(
		newStartCmd(opts),
		newAnswerCmd(opts),
		newSummaryCmd(opts),
		newStatusCmd(opts),
		newClearCacheCmd(opts),
		newPracticeCmd(opts),
	)
	return root
}

func newStartCmd(opts *rootOptions) *cobra.Command {
	var req startRequest
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a new interview session",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client().Start(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStart(resp))
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Role, "role", "", "target role (default Software Engineer)")
	cmd.Flags().StringVar(&req.Mode, "mode", "", "technical or behavioral")
	cmd.Flags().IntVarP(&req.NumQuestions, "questions", "n", 0, "number of questions (1-10)")
	return cmd
}

func newAnswerCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "answer SESSION_ID ANSWER",
		Short: "Submit an answer to the current question",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client().Submit(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderFeedback(resp))
			return nil
		},
	}
}

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary SESSION_ID",
		Short: "Show the summary report of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := opts.client().Summary(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(report))
			return nil
		},
	}
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	var health bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show API usage, cache and fallback status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := opts.client()
			if health {
				payload, err := client.Health(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderStatus("Health", payload))
				return nil
			}
			payload, err := client.Status(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStatus("API status", payload))
			return nil
		},
	}
	cmd.Flags().BoolVar(&health, "health", false, "show the health endpoint instead")
	return cmd
}

func newClearCacheCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-cache",
		Short: "Clear the question and evaluation caches",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client().ClearCache(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (questions=%d evaluations=%d)\n", resp.Message, resp.Cleared.Questions, resp.Cleared.Evaluations)
			return nil
		},
	}
}
