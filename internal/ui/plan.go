package ui

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/stint/internal/dwplanner"
	"github.com/javiermolinar/stint/internal/llm"
)

func (a *App) planCmd() *cobra.Command {
	var (
		modelFlag string
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "plan [description]",
		Short: "Plan tasks from natural language input",
		Long: `Use an LLM to extract tasks from a description, then schedule them.

The LLM estimates durations and importance and understands dates like:
  - "today", "tomorrow", "next Monday"
  - "in 2 days", "next week"
  - "2026-01-15" (explicit YYYY-MM-DD)

When something is unclear it asks questions; answer them with [m]odify.

Examples:
  stint plan "Write the quarterly report, call the bank tomorrow, gym 1h"
  stint plan "Review PRs on Friday" --dry-run

Interactive mode:
  After the schedule is proposed, you can:
  - [a]ccept: Save the tasks to your schedule
  - [m]odify: Add details and extract again
  - [c]ancel: Exit without saving`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}
			ctx := context.Background()
			input := strings.Join(args, " ")

			model := modelFlag
			if model == "" {
				model = a.config.LLM.Model
			}

			client, err := llm.NewClient(ctx, a.config.LLM.Provider, model, a.config.LLM.BaseURL)
			if err != nil {
				return fmt.Errorf("creating LLM client: %w", err)
			}

			p := dwplanner.New(client, a.config, a.store, dwplanner.WithClock(a.now))

			reader := bufio.NewReader(cmd.InOrStdin())
			for {
				fmt.Println("Planning tasks...")
				extracted, err := p.Extract(ctx, input, a.config.LLM.MaxRetries)
				if err != nil {
					return fmt.Errorf("planning: %w", err)
				}

				// Tasks still invalid after the retries are reported, never scheduled.
				result, err := p.Schedule(ctx, extracted.ValidTasks(), a.now())
				if err != nil {
					return fmt.Errorf("scheduling: %w", err)
				}

				fmt.Println()
				displaySchedule(result)
				PrintQuestions(extracted.Questions)

				if extracted.HasValidationErrors() {
					fmt.Println("\nValidation errors (LLM retry limit reached):")
					for _, ve := range extracted.ValidationErrors {
						fmt.Printf("  - %s\n", formatWarning(ve.String()))
					}
				}

				if dryRun {
					fmt.Println("\n(Dry run - tasks not saved)")
					return nil
				}

				done, next, err := promptPlanAction(reader, p, result, extracted, input)
				if err != nil {
					return err
				}
				if done {
					return nil
				}
				input = next
			}
		},
	}

	cmd.Flags().StringVar(&modelFlag, "model", "", "LLM model to use (from config if not set)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show planned tasks without saving")

	return cmd
}

// promptPlanAction asks what to do with a proposal. It returns done when
// the command should exit, or the new input to extract again.
func promptPlanAction(reader *bufio.Reader, p *dwplanner.Planner, result *dwplanner.PlanResult, extracted *dwplanner.ExtractResult, input string) (bool, string, error) {
	for {
		fmt.Print("\n[a]ccept / [m]odify / [c]ancel: ")
		choice, err := reader.ReadString('\n')
		if err != nil {
			return false, "", fmt.Errorf("reading input: %w", err)
		}

		switch strings.TrimSpace(strings.ToLower(choice)) {
		case "a", "accept":
			if extracted.HasValidationErrors() {
				fmt.Println("Cannot save: there are unresolved validation errors.")
				fmt.Println("Please [m]odify the plan or [c]ancel.")
				continue
			}
			if len(result.Scheduled) == 0 {
				fmt.Println("Nothing to save.")
				return true, "", nil
			}
			if err := p.Save(context.Background(), result); err != nil {
				return false, "", fmt.Errorf("saving tasks: %w", err)
			}
			fmt.Printf("\n%d tasks saved to database\n", len(result.Scheduled))
			return true, "", nil

		case "m", "modify":
			fmt.Print("What would you like to change or add? ")
			modification, err := reader.ReadString('\n')
			if err != nil {
				return false, "", fmt.Errorf("reading input: %w", err)
			}
			modification = strings.TrimSpace(modification)
			if modification == "" {
				fmt.Println("No modification provided.")
				continue
			}
			return false, input + "\n" + modification, nil

		case "c", "cancel":
			fmt.Println("Planning cancelled.")
			return true, "", nil

		default:
			fmt.Println("Invalid choice. Please enter 'a', 'm', or 'c'.")
		}
	}
}
