package task

import (
	"context"
	"fmt"
	"strings"

	"github.com/clockops/clockctl/internal/api"
	"github.com/clockops/clockctl/internal/resolve"
	"github.com/clockops/clockctl/internal/services/project"
)

// TaskService reads project task collections and mutates task access edges.
type TaskService struct {
	client *api.Client
}

// NewTaskService constructs a new TaskService
func NewTaskService(client *api.Client) *TaskService {
	return &TaskService{client: client}
}

// ListByProject returns all tasks of a project.
func (s *TaskService) ListByProject(ctx context.Context, projectID string) ([]Task, error) {
	path := s.client.WorkspacePath("/projects/" + projectID + "/tasks")
	tasks, err := api.GetPaginated[Task](ctx, s.client, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks for project %s: %w", projectID, err)
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, projectID, taskID string) (*Task, error) {
	var t Task
	path := s.client.WorkspacePath("/projects/" + projectID + "/tasks/" + taskID)
	if err := s.client.Get(ctx, path, nil, &t); err != nil {
		return nil, fmt.Errorf("failed to get task %s: %w", taskID, err)
	}
	return &t, nil
}

// GetByName resolves a task name within a single project.
func (s *TaskService) GetByName(ctx context.Context, projectID, name string) (*Task, error) {
	tasks, err := s.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	t, err := resolve.ByName("task", name, tasks, func(t Task) string { return t.Name })
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FindByName scans the given projects for tasks whose name contains the query
// (case-insensitive), for discovery and reporting.
func (s *TaskService) FindByName(ctx context.Context, projects []project.Project, query string) ([]Task, error) {
	want := strings.ToLower(query)
	var matches []Task
	for _, p := range projects {
		tasks, err := s.ListByProject(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		for _, t := range tasks {
			if strings.Contains(strings.ToLower(t.Name), want) {
				matches = append(matches, t)
			}
		}
	}
	return matches, nil
}

type assigneeRequest struct {
	AssigneeID string `json:"assigneeId"`
}

// AddAssignee grants a user or group access to a task. Granting an existing
// assignee is a vendor no-op, so the call is idempotent.
func (s *TaskService) AddAssignee(ctx context.Context, projectID, taskID, assigneeID string) error {
	path := s.client.WorkspacePath("/projects/" + projectID + "/tasks/" + taskID + "/assignees")
	if err := s.client.Post(ctx, path, assigneeRequest{AssigneeID: assigneeID}, nil); err != nil {
		return fmt.Errorf("failed to add assignee %s to task %s: %w", assigneeID, taskID, err)
	}
	return nil
}

// RemoveAssignee revokes a user's or group's access to a task.
func (s *TaskService) RemoveAssignee(ctx context.Context, projectID, taskID, assigneeID string) error {
	path := s.client.WorkspacePath("/projects/" + projectID + "/tasks/" + taskID + "/assignees/" + assigneeID)
	if err := s.client.Delete(ctx, path); err != nil {
		return fmt.Errorf("failed to remove assignee %s from task %s: %w", assigneeID, taskID, err)
	}
	return nil
}
