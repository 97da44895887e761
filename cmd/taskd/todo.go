package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"task-tracker/internal/client"
	"task-tracker/internal/todolist"
)

type todoFlags struct {
	api   string
	token string
}

func newTodoCmd() *cobra.Command {
	flags := &todoFlags{}

	cmd := &cobra.Command{
		Use:   "todo",
		Short: "Work with the task list of a running server",
	}
	cmd.PersistentFlags().StringVar(&flags.api, "api", envOr("TASKS_API_URL", "http://localhost:3000"), "Base URL of the API server")
	cmd.PersistentFlags().StringVar(&flags.token, "token", os.Getenv("TASKS_TOKEN"), "Bearer token attached to requests")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all tasks, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				list := flags.list(cmd)
				if err := list.Load(cmd.Context()); err != nil {
					return err
				}
				printTasks(cmd.OutOrStdout(), list.State())
				return nil
			},
		},
		&cobra.Command{
			Use:   "add [title...]",
			Short: "Add a task; without a title, every line read from stdin becomes a task",
			RunE: func(cmd *cobra.Command, args []string) error {
				list := flags.list(cmd)
				if len(args) > 0 {
					return submit(cmd.Context(), cmd.OutOrStdout(), list, strings.Join(args, " "))
				}
				return addLines(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), list)
			},
		},
		&cobra.Command{
			Use:   "toggle <id>",
			Short: "Flip the completed flag of a task",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				list := flags.list(cmd)
				if err := list.Load(cmd.Context()); err != nil {
					return err
				}
				if err := list.Toggle(cmd.Context(), id); err != nil {
					return err
				}
				for _, t := range list.State().Tasks {
					if t.ID == id {
						fmt.Fprintln(cmd.OutOrStdout(), formatTask(t))
					}
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a task",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				list := flags.list(cmd)
				if err := list.Load(cmd.Context()); err != nil {
					return err
				}
				if err := list.Delete(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %d\n", id)
				return nil
			},
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Show task counts",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				stats, err := flags.client().Stats(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Total: %d  Completed: %d  Pending: %d\n",
					stats.Total, stats.Completed, stats.Pending)
				return nil
			},
		},
	)
	return cmd
}

func (f *todoFlags) client() *client.Client {
	return client.New(f.api, client.WithToken(f.token))
}

func (f *todoFlags) list(cmd *cobra.Command) *todolist.List {
	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return todolist.New(f.client(), logger)
}

func addLines(ctx context.Context, in io.Reader, out io.Writer, list *todolist.List) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := submit(ctx, out, list, scanner.Text()); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// submit mirrors typing a line and pressing Enter.
func submit(ctx context.Context, out io.Writer, list *todolist.List, text string) error {
	before := len(list.State().Tasks)
	list.SetInput(text)
	if err := list.Submit(ctx); err != nil {
		return err
	}
	st := list.State()
	if len(st.Tasks) > before {
		fmt.Fprintf(out, "Added %s\n", formatTask(st.Tasks[0]))
	}
	return nil
}

func printTasks(out io.Writer, st todolist.State) {
	if len(st.Tasks) == 0 {
		fmt.Fprintln(out, "No tasks yet.")
		return
	}
	for _, t := range st.Tasks {
		fmt.Fprintln(out, formatTask(t))
	}
	fmt.Fprintf(out, "%d of %d remaining\n", st.Remaining(), len(st.Tasks))
}

func formatTask(t client.Task) string {
	mark := " "
	if t.Completed {
		mark = "x"
	}
	line := fmt.Sprintf("[%s] #%d %s", mark, t.ID, t.Title)
	if t.Description != nil && *t.Description != "" {
		line += " - " + *t.Description
	}
	return line
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
