package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/taskdeck/taskdeck/pkg/types"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Create tasks from a YAML manifest",
	Long: `Create tasks in bulk from a YAML manifest.

Examples:
  # Apply a task manifest
  taskdeck apply -f sprint.yaml

Manifest format:
  tasks:
    - title: Write spec
      description: First draft
      priority: high
      dueDate: 2026-09-15
      assignedToId: 4ab3acf9-5acf-4ef3-a3e7-6aa2701a7411
    - title: Review spec
      priority: medium`,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringP("file", "f", "", "YAML manifest to apply (required)")
	_ = applyCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(applyCmd)
}

// taskManifest is the on-disk bulk-create format.
type taskManifest struct {
	Tasks []manifestTask `yaml:"tasks"`
}

type manifestTask struct {
	Title        string `yaml:"title"`
	Description  string `yaml:"description,omitempty"`
	Priority     string `yaml:"priority,omitempty"`
	DueDate      string `yaml:"dueDate,omitempty"`
	AssignedToID string `yaml:"assignedToId,omitempty"`
}

func runApply(cmd *cobra.Command, args []string) error {
	filename, _ := cmd.Flags().GetString("file")

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %v", err)
	}

	var manifest taskManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return fmt.Errorf("failed to parse YAML: %v", err)
	}
	if len(manifest.Tasks) == 0 {
		return fmt.Errorf("manifest contains no tasks")
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.requireSession(cmd.Context(), types.RoleAdmin); err != nil {
		return err
	}

	// One directory fetch up front covers assignee resolution for the
	// whole batch.
	a.resolver.Fetch(cmd.Context())

	created := 0
	for _, mt := range manifest.Tasks {
		input, err := manifestInput(mt)
		if err != nil {
			return fmt.Errorf("task %q: %v", mt.Title, err)
		}

		task, err := a.store.CreateOptimistic(cmd.Context(), input)
		if err != nil {
			return fmt.Errorf("failed to create task %q: %v", mt.Title, err)
		}
		created++
		fmt.Printf("✓ Task created: %s (ID: %s)\n", task.Title, task.ID)
	}

	fmt.Printf("Applied %d task(s) from %s\n", created, filename)
	return nil
}

func manifestInput(mt manifestTask) (types.TaskInput, error) {
	if mt.Title == "" {
		return types.TaskInput{}, fmt.Errorf("title is required")
	}

	priority := types.DefaultPriority
	if mt.Priority != "" {
		priority = types.Priority(mt.Priority)
		if !priority.Valid() {
			return types.TaskInput{}, fmt.Errorf("invalid priority %q", mt.Priority)
		}
	}

	input := types.TaskInput{
		Title:       mt.Title,
		Description: mt.Description,
		Priority:    priority,
		DueDate:     mt.DueDate,
	}
	if mt.AssignedToID != "" {
		id := mt.AssignedToID
		input.AssignedToID = &id
	}
	return input, nil
}
