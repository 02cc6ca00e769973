package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskdeck/taskdeck/pkg/types"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks on the board",
}

func init() {
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskCreateCmd)
	taskCmd.AddCommand(taskUpdateCmd)
	taskCmd.AddCommand(taskDeleteCmd)

	for _, c := range []*cobra.Command{taskCreateCmd, taskUpdateCmd} {
		c.Flags().String("title", "", "Task title")
		c.Flags().String("description", "", "Task description")
		c.Flags().String("priority", string(types.DefaultPriority), "Priority (low, medium, high)")
		c.Flags().String("due", "", "Due date (YYYY-MM-DD)")
		c.Flags().String("assignee", "", "User id to assign the task to")
	}
	_ = taskCreateCmd.MarkFlagRequired("title")
	_ = taskUpdateCmd.MarkFlagRequired("title")

	taskDeleteCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
	watchCmd.Flags().Duration("interval", 10*time.Second, "Refresh interval")
}

// taskInputFromFlags builds the shared create/update payload.
func taskInputFromFlags(cmd *cobra.Command) (types.TaskInput, error) {
	title, _ := cmd.Flags().GetString("title")
	description, _ := cmd.Flags().GetString("description")
	priorityFlag, _ := cmd.Flags().GetString("priority")
	due, _ := cmd.Flags().GetString("due")
	assignee, _ := cmd.Flags().GetString("assignee")

	if strings.TrimSpace(title) == "" {
		return types.TaskInput{}, fmt.Errorf("title must not be empty")
	}
	priority := types.Priority(priorityFlag)
	if !priority.Valid() {
		return types.TaskInput{}, fmt.Errorf("invalid priority %q (want low, medium or high)", priorityFlag)
	}

	input := types.TaskInput{
		Title:       title,
		Description: description,
		Priority:    priority,
		DueDate:     due,
	}
	if assignee != "" {
		input.AssignedToID = &assignee
	}
	return input, nil
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the task board",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.requireSession(cmd.Context(), ""); err != nil {
			return err
		}
		if err := a.store.Load(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load tasks: %v", err)
		}

		printTasks(a.store.Tasks())
		return nil
	},
}

var taskCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a task",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.requireSession(cmd.Context(), types.RoleAdmin); err != nil {
			return err
		}

		input, err := taskInputFromFlags(cmd)
		if err != nil {
			return err
		}

		// Warm the directory cache so the created task's assignee can
		// be resolved without a full reconciliation.
		if input.AssignedToID != nil {
			a.resolver.Fetch(cmd.Context())
		}

		task, err := a.store.CreateOptimistic(cmd.Context(), input)
		if err != nil {
			return fmt.Errorf("failed to create task: %v", err)
		}

		fmt.Printf("✓ Task created: %s (ID: %s)\n", task.Title, task.ID)
		return nil
	},
}

var taskUpdateCmd = &cobra.Command{
	Use:   "update [task-id]",
	Short: "Update a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.requireSession(cmd.Context(), types.RoleAdmin); err != nil {
			return err
		}

		input, err := taskInputFromFlags(cmd)
		if err != nil {
			return err
		}
		if input.AssignedToID != nil {
			a.resolver.Fetch(cmd.Context())
		}

		task, err := a.store.UpdateOptimistic(cmd.Context(), args[0], input)
		if err != nil {
			return fmt.Errorf("failed to update task: %v", err)
		}

		fmt.Printf("✓ Task updated: %s\n", task.ID)
		return nil
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete [task-id]",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.requireSession(cmd.Context(), types.RoleAdmin); err != nil {
			return err
		}

		// Confirmation is the caller's job, not the store's.
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			answer := prompt(fmt.Sprintf("Delete task %s? (y/N) ", args[0]))
			if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
				fmt.Println("Aborted")
				return nil
			}
		}

		if err := a.store.Delete(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete task: %v", err)
		}

		fmt.Printf("✓ Task deleted: %s\n", args[0])
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow board changes until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.requireSession(cmd.Context(), ""); err != nil {
			return err
		}

		interval, _ := cmd.Flags().GetDuration("interval")
		sub := a.broker.Subscribe()
		defer a.broker.Unsubscribe(sub)

		a.resolver.Fetch(cmd.Context())
		if err := a.store.Load(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load tasks: %v", err)
		}
		printTasks(a.store.Tasks())
		fmt.Println("Watching for changes. Press Ctrl+C to stop.")

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		for {
			select {
			case <-ticker.C:
				refresh(cmd.Context(), a)
			case ev := <-sub:
				if ev == nil {
					return nil
				}
				fmt.Printf("[%s] %s %s\n", ev.Timestamp.Format(time.TimeOnly), ev.Type, ev.Message)
			case <-sigCh:
				fmt.Println("\nStopped")
				return nil
			}
		}
	},
}

func refresh(ctx context.Context, a *app) {
	a.resolver.Fetch(ctx)
	if err := a.store.Load(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "refresh failed: %v\n", err)
	}
}

func printTasks(tasks []types.Task) {
	if len(tasks) == 0 {
		fmt.Println("No tasks available")
		return
	}

	fmt.Printf("%-38s %-8s %-12s %-24s %s\n", "ID", "PRIORITY", "DUE", "ASSIGNED TO", "TITLE")
	for _, t := range tasks {
		due := t.DueDate
		if due == "" {
			due = "-"
		}
		assigned := "unassigned"
		if t.AssignedTo != nil {
			assigned = t.AssignedTo.Name
		} else if t.Assigned() {
			assigned = t.AssignedToID + " (unresolved)"
		}
		fmt.Printf("%-38s %-8s %-12s %-24s %s\n", t.ID, t.Priority, due, assigned, t.Title)
	}
}
