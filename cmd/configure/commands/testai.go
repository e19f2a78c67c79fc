package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/smart-todo/smart-todo-list/internal/config"
	"github.com/smart-todo/smart-todo-list/internal/models"
	"github.com/smart-todo/smart-todo-list/internal/services/ai"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// suggester is the part of ai.Service exercised by test-ai
type suggester interface {
	SuggestTask(ctx context.Context, req *models.AITaskSuggestionRequest) *models.AITaskSuggestion
	Status() ai.Status
}

// NewTestAICmd creates the test-ai command
func NewTestAICmd() *cobra.Command {
	var title string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "test-ai",
		Short: "Send a sample suggestion request to the configured AI provider",
		Long:  "Check the AI provider configuration end to end. Fails when the reply falls back to the local heuristics.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			logger := zap.NewNop()
			if verbose {
				if logger, err = zap.NewDevelopment(); err != nil {
					return fmt.Errorf("failed to create logger: %w", err)
				}
			}

			service, err := ai.NewServiceFromConfig(cfg, ai.NewDefaultRegistry(), logger)
			if err != nil {
				return fmt.Errorf("failed to create AI service: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.AITimeout+5*time.Second)
			defer cancel()
			return runAITest(ctx, cmd.OutOrStdout(), service, title)
		},
	}

	cmd.Flags().StringVar(&title, "title", "Prepare slides for Monday's client meeting", "Task title to send")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Log provider calls to stderr")
	return cmd
}

func runAITest(ctx context.Context, w io.Writer, s suggester, title string) error {
	status := s.Status()
	if !status.Enabled {
		return fmt.Errorf("no AI provider configured: set AI_API_KEY")
	}
	fmt.Fprintf(w, "Provider: %s\n", status.Provider)

	suggestion := s.SuggestTask(ctx, &models.AITaskSuggestionRequest{Title: title})

	out, err := json.MarshalIndent(suggestion, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode suggestion: %w", err)
	}
	fmt.Fprintln(w, string(out))

	if suggestion.Fallback {
		return fmt.Errorf("provider call failed, fallback used: %s", suggestion.Reasoning)
	}
	fmt.Fprintln(w, "✓ AI provider is responding")
	return nil
}
