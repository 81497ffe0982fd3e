package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	formdraft "github.com/goliatone/go-formdraft"
	"github.com/goliatone/go-formdraft/internal/config"
	"github.com/goliatone/go-formdraft/internal/prompt"
)

// NewRootCommand assembles the formdraft command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "formdraft",
		Short:         "Build, save and submit form drafts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "init" {
				return nil
			}
			return app.loadConfig()
		},
	}
	root.SetOut(app.out())
	root.SetErr(app.errOut())

	flags := root.PersistentFlags()
	flags.StringVar(&app.configFile, "config", "", "YAML config file")
	flags.StringVar(&app.envFile, "env-file", ".env", "dotenv file with FORMDRAFT_* settings")
	flags.BoolVarP(&app.verbose, "verbose", "v", false, "log every draft operation to stderr")

	root.AddCommand(
		newInitCommand(app),
		newEditCommand(app),
		newShowCommand(app),
		newAddQuestionCommand(app),
		newAddOptionCommand(app),
		newSetCommand(app),
		newDeleteQuestionCommand(app),
		newDeleteOptionCommand(app),
		newDuplicateQuestionCommand(app),
		newMoveQuestionCommand(app),
		newPayloadCommand(app),
		newSubmitCommand(app),
		newClearCommand(app),
	)
	return root
}

// Execute runs the command tree with args.
func Execute(ctx context.Context, app *App, args []string) error {
	root := NewRootCommand(app)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newInitCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Write a config file with default settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "formdraft.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
			return nil
		},
	}
}

func newEditCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit the draft interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := app.openManager(cmd.Context())
			if err != nil {
				return err
			}
			session := &Session{Manager: manager, Driver: app.driver()}
			err = session.Run(cmd.Context())
			if errors.Is(err, prompt.ErrAborted) {
				return nil
			}
			return err
		},
	}
}

func newShowCommand(app *App) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the saved draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := app.openManager(cmd.Context())
			if err != nil {
				return err
			}
			return writeDraft(cmd.OutOrStdout(), manager.State(), manager.Status(), format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json or yaml")
	return cmd
}

func newAddQuestionCommand(app *App) *cobra.Command {
	var (
		text, kind, parent string
		optional           bool
	)
	cmd := &cobra.Command{
		Use:   "add-question",
		Short: "Append a question to the draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.mutate(cmd, func(m *formdraft.Manager) error {
				question, err := m.AddQuestion()
				if err != nil {
					return err
				}
				index := question.Order - 1
				updates := [][2]string{
					{"questionText", text},
					{"type", kind},
					{"isOptional", strconv.FormatBool(optional)},
					{"parentId", parent},
				}
				for _, u := range updates {
					if err := m.UpdateQuestion(index, u[0], u[1]); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added question %d (%s)\n", question.Order, question.QuestionID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "question text")
	cmd.Flags().StringVar(&kind, "type", "", "question type, e.g. radio or text")
	cmd.Flags().BoolVar(&optional, "optional", false, "mark the question optional")
	cmd.Flags().StringVar(&parent, "parent", "", "id of the question this one depends on")
	return cmd
}

func newAddOptionCommand(app *App) *cobra.Command {
	var value, text, jumpTo string
	cmd := &cobra.Command{
		Use:   "add-option <question>",
		Short: "Append an option to a question (questions are numbered from 1)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			qi, err := position(args[0])
			if err != nil {
				return err
			}
			return app.mutate(cmd, func(m *formdraft.Manager) error {
				option, err := m.AddOption(qi)
				if err != nil {
					return err
				}
				oi := len(m.State().Questions[qi].Options) - 1
				updates := [][2]string{{"value", value}, {"text", text}}
				if jumpTo != "" {
					updates = append(updates, [2]string{"jump", "true"}, [2]string{"jumpTo", jumpTo})
				}
				for _, u := range updates {
					if err := m.UpdateOption(qi, oi, u[0], u[1]); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added option %d to question %d (%s)\n", oi+1, qi+1, option.OptionID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&value, "value", "", "option value")
	cmd.Flags().StringVar(&text, "text", "", "option label")
	cmd.Flags().StringVar(&jumpTo, "jump-to", "", "question number to jump to when chosen")
	return cmd
}

func newSetCommand(app *App) *cobra.Command {
	var question, option int
	cmd := &cobra.Command{
		Use:   "set <field> <value>",
		Short: "Set a form, question or option field",
		Long: "Without flags sets a form field (formName, formOrder, title, description, tier, mandatory).\n" +
			"With --question sets a question field (questionText, type, isOptional, parentId).\n" +
			"With --question and --option sets an option field (value, text, jump, jumpTo).",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, value := args[0], args[1]
			return app.mutate(cmd, func(m *formdraft.Manager) error {
				switch {
				case question > 0 && option > 0:
					return m.UpdateOption(question-1, option-1, name, value)
				case question > 0:
					return m.UpdateQuestion(question-1, name, value)
				case option > 0:
					return fmt.Errorf("--option requires --question")
				default:
					return m.UpdateField(name, value)
				}
			})
		},
	}
	cmd.Flags().IntVarP(&question, "question", "q", 0, "question number, from 1")
	cmd.Flags().IntVarP(&option, "option", "o", 0, "option number within the question, from 1")
	return cmd
}

func newDeleteQuestionCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-question <question>",
		Short: "Remove a question and renumber the rest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			qi, err := position(args[0])
			if err != nil {
				return err
			}
			return app.mutate(cmd, func(m *formdraft.Manager) error {
				return m.DeleteQuestion(qi)
			})
		},
	}
}

func newDeleteOptionCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-option <question> <option>",
		Short: "Remove one option from a question",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qi, err := position(args[0])
			if err != nil {
				return err
			}
			oi, err := position(args[1])
			if err != nil {
				return err
			}
			return app.mutate(cmd, func(m *formdraft.Manager) error {
				return m.DeleteOption(qi, oi)
			})
		},
	}
}

func newDuplicateQuestionCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate-question <question>",
		Short: "Copy a question and insert the copy after it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			qi, err := position(args[0])
			if err != nil {
				return err
			}
			return app.mutate(cmd, func(m *formdraft.Manager) error {
				copied, err := m.DuplicateQuestion(qi)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Duplicated question %d as %d (%s)\n", qi+1, copied.Order, copied.QuestionID)
				return nil
			})
		},
	}
}

func newMoveQuestionCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move-question <from> <to>",
		Short: "Move a question to another position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := position(args[0])
			if err != nil {
				return err
			}
			to, err := position(args[1])
			if err != nil {
				return err
			}
			return app.mutate(cmd, func(m *formdraft.Manager) error {
				return m.MoveQuestion(from, to)
			})
		},
	}
}

func newPayloadCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "payload",
		Short: "Print the JSON body submit would send",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := app.openManager(cmd.Context())
			if err != nil {
				return err
			}
			body, err := manager.Payload()
			if err != nil {
				return err
			}
			return writePayload(cmd.OutOrStdout(), body)
		},
	}
}

func newSubmitCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "submit",
		Short: "Validate the draft and send it to the forms endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := app.openManager(cmd.Context())
			if err != nil {
				return err
			}
			result, err := manager.SubmitDraft(cmd.Context())
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Form submitted to %s\n", result.Endpoint)
			return nil
		},
	}
}

func newClearCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the saved draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := app.openManager(cmd.Context())
			if err != nil {
				return err
			}
			if err := manager.ClearSavedDraftAndReset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Saved draft cleared")
			return nil
		},
	}
}

// mutate opens the draft, applies fn and saves the result.
func (a *App) mutate(cmd *cobra.Command, fn func(*formdraft.Manager) error) error {
	manager, err := a.openManager(cmd.Context())
	if err != nil {
		return err
	}
	if err := fn(manager); err != nil {
		return describe(err)
	}
	return manager.PersistDraft(cmd.Context())
}

// position converts a 1-based CLI number into an index.
func position(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("expected a number from 1, got %q", arg)
	}
	return n - 1, nil
}
