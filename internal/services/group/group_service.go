package group

import (
	"context"
	"fmt"

	"github.com/clockops/clockctl/internal/api"
	"github.com/clockops/clockctl/internal/resolve"
)

// GroupService reads the workspace user-group list.
type GroupService struct {
	client *api.Client

	cached []Group
}

// NewGroupService constructs a new GroupService
func NewGroupService(client *api.Client) *GroupService {
	return &GroupService{client: client}
}

func (s *GroupService) List(ctx context.Context) ([]Group, error) {
	if s.cached != nil {
		return s.cached, nil
	}
	groups, err := api.GetPaginated[Group](ctx, s.client, s.client.WorkspacePath("/user-groups"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list user groups: %w", err)
	}
	s.cached = groups
	return groups, nil
}

func (s *GroupService) GetByName(ctx context.Context, name string) (*Group, error) {
	groups, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	g, err := resolve.ByName("group", name, groups, func(g Group) string { return g.Name })
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// FindByNames resolves a batch of names, keeping per-name errors instead of
// failing the batch.
func (s *GroupService) FindByNames(ctx context.Context, names []string) (map[string]Group, []error) {
	found := make(map[string]Group, len(names))
	var errs []error
	for _, name := range names {
		g, err := s.GetByName(ctx, name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		found[name] = *g
	}
	return found, errs
}
