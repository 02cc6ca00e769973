package api

import (
	"context"
	"net/http"

	"github.com/taskdeck/taskdeck/pkg/types"
)

// ListTasks returns the backend's current task list in server order.
func (c *Client) ListTasks(ctx context.Context) ([]types.Task, error) {
	var tasks []types.Task
	if err := c.do(ctx, "list_tasks", http.MethodGet, "/tasks/get-task", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask creates a task and returns the server's version of it.
// The returned task may carry assignedToId without an inline assignee.
func (c *Client) CreateTask(ctx context.Context, input types.TaskInput) (*types.Task, error) {
	var task types.Task
	if err := c.do(ctx, "create_task", http.MethodPost, "/tasks/create", input, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask replaces the mutable fields of the task with the given id.
func (c *Client) UpdateTask(ctx context.Context, id string, input types.TaskInput) (*types.Task, error) {
	var task types.Task
	if err := c.do(ctx, "update_task", http.MethodPut, "/tasks/"+id, input, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes the task with the given id.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, "delete_task", http.MethodDelete, "/tasks/"+id, nil, nil)
}
