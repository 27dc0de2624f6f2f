package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/stint/internal/config"
	"github.com/javiermolinar/stint/internal/llm"
)

func (a *App) configCmd() *cobra.Command {
	var (
		path string
		edit bool
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Show the configuration file, creating it with defaults when missing.

In a terminal you are offered to edit each setting; press enter to keep
the current value. --edit skips the question and always prompts.

Example:
  stint config
  stint config --edit`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			p := &prompter{in: bufio.NewReader(cmd.InOrStdin()), out: out}

			cfg, err := openConfigFile(out, path)
			if err != nil {
				return err
			}
			if err := writeConfig(out, cfg); err != nil {
				return err
			}

			if !edit && (!isTerminal() || !p.confirm("Edit the configuration?")) {
				return nil
			}
			if err := editConfig(p, cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			if err := cfg.SaveTo(path); err != nil {
				return fmt.Errorf("saving config: %w", err)
			}
			fmt.Fprintf(out, "Saved %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "file", config.DefaultConfigPath(), "Config file to show or edit")
	cmd.Flags().BoolVar(&edit, "edit", false, "Prompt for every setting without asking first")
	return cmd
}

// openConfigFile loads path, writing the defaults there first if it does not exist.
func openConfigFile(out io.Writer, path string) (*config.Config, error) {
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := cfg.SaveTo(path); err != nil {
			return nil, fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(out, "Created %s with default values\n", path)
	} else {
		fmt.Fprintf(out, "Config file: %s\n", path)
	}
	return cfg, nil
}

func writeConfig(out io.Writer, cfg *config.Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	fmt.Fprintf(out, "\n%s\n", data)
	return nil
}

func editConfig(p *prompter, cfg *config.Config) error {
	providers := llm.Providers()

	cfg.Schedule.WorkStart = p.text("Work start", cfg.Schedule.WorkStart)
	cfg.Schedule.WorkEnd = p.text("Work end", cfg.Schedule.WorkEnd)
	cfg.Schedule.DaysToSchedule = p.number("Days to schedule", cfg.Schedule.DaysToSchedule)
	cfg.LLM.Provider = p.choice("LLM provider", cfg.LLM.Provider, providers, llm.NormalizeProvider)
	cfg.LLM.Model = p.text("LLM model", cfg.LLM.Model)
	cfg.LLM.BaseURL = p.text("LLM base URL (empty for provider default)", cfg.LLM.BaseURL)
	cfg.LLM.MaxRetries = p.number("LLM validation retries", cfg.LLM.MaxRetries)
	cfg.Storage.DBPath = p.text("Database path", cfg.Storage.DBPath)
	cfg.Calendar.Source = p.text("Calendar .ics file or URL (- to disable)", cfg.Calendar.Source)
	if cfg.Calendar.Source == "-" {
		cfg.Calendar.Source = ""
	}
	cfg.Log.Level = p.text("Log level", cfg.Log.Level)

	return p.err
}

// prompter reads line answers. An empty answer keeps the current value,
// and so does every prompt once input is exhausted.
type prompter struct {
	in   *bufio.Reader
	out  io.Writer
	done bool
	err  error
}

func (p *prompter) ask(label, current string) string {
	if current == "" {
		fmt.Fprintf(p.out, "  %s: ", label)
	} else {
		fmt.Fprintf(p.out, "  %s [%s]: ", label, current)
	}
	if p.done {
		fmt.Fprintln(p.out)
		return ""
	}

	line, err := p.in.ReadString('\n')
	if err != nil {
		p.done = true
		if !errors.Is(err, io.EOF) {
			p.err = fmt.Errorf("reading input: %w", err)
		}
	}
	return strings.TrimSpace(line)
}

func (p *prompter) confirm(question string) bool {
	answer := strings.ToLower(p.ask(question+" [y/N]", ""))
	return answer == "y" || answer == "yes"
}

func (p *prompter) text(label, current string) string {
	if answer := p.ask(label, current); answer != "" {
		return answer
	}
	return current
}

func (p *prompter) number(label string, current int) int {
	for {
		answer := p.ask(label, strconv.Itoa(current))
		if answer == "" {
			return current
		}
		if n, err := strconv.Atoi(answer); err == nil {
			return n
		}
		fmt.Fprintf(p.out, "  %q is not a number\n", answer)
	}
}

func (p *prompter) choice(label, current string, options []string, normalize func(string) string) string {
	label = fmt.Sprintf("%s (%s)", label, strings.Join(options, ", "))
	for {
		answer := p.ask(label, current)
		if answer == "" {
			return current
		}
		if value := normalize(answer); slices.Contains(options, value) {
			return value
		}
		fmt.Fprintf(p.out, "  unknown option %q\n", answer)
	}
}
