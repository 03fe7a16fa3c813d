package project

import (
	"context"
	"fmt"
	"net/url"

	"github.com/clockops/clockctl/internal/api"
	"github.com/clockops/clockctl/internal/resolve"
)

// ProjectService reads the workspace project collection.
type ProjectService struct {
	client *api.Client

	// in-run memo of the full project list
	cached []Project
}

// NewProjectService constructs a new ProjectService
func NewProjectService(client *api.Client) *ProjectService {
	return &ProjectService{client: client}
}

// List returns all projects in the workspace, fetching once per run.
func (s *ProjectService) List(ctx context.Context) ([]Project, error) {
	if s.cached != nil {
		return s.cached, nil
	}
	projects, err := api.GetPaginated[Project](ctx, s.client, s.client.WorkspacePath("/projects"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	s.cached = projects
	return projects, nil
}

func (s *ProjectService) GetByID(ctx context.Context, id string) (*Project, error) {
	var p Project
	if err := s.client.Get(ctx, s.client.WorkspacePath("/projects/"+id), nil, &p); err != nil {
		return nil, fmt.Errorf("failed to get project %s: %w", id, err)
	}
	return &p, nil
}

func (s *ProjectService) GetByName(ctx context.Context, name string) (*Project, error) {
	projects, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	p, err := resolve.ByName("project", name, projects, func(p Project) string { return p.Name })
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FilterByClientID narrows an already-fetched project list by client id.
func FilterByClientID(projects []Project, clientID string) []Project {
	var filtered []Project
	for _, p := range projects {
		if p.ClientID == clientID {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// ListByClientAPI uses the server-side clients filter instead of filtering
// locally.
func (s *ProjectService) ListByClientAPI(ctx context.Context, clientID string) ([]Project, error) {
	params := url.Values{}
	params.Set("clients", clientID)
	projects, err := api.GetPaginated[Project](ctx, s.client, s.client.WorkspacePath("/projects"), params)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects for client %s: %w", clientID, err)
	}
	return projects, nil
}

// InvalidateCache drops the in-run memo.
func (s *ProjectService) InvalidateCache() { s.cached = nil }
