package client

import (
	"context"
	"fmt"

	"github.com/clockops/clockctl/internal/api"
	"github.com/clockops/clockctl/internal/resolve"
	"github.com/clockops/clockctl/internal/services/project"
)

// ClientService reads the workspace client (category) collection.
type ClientService struct {
	client *api.Client

	cached []Client
}

// NewClientService constructs a new ClientService
func NewClientService(client *api.Client) *ClientService {
	return &ClientService{client: client}
}

func (s *ClientService) List(ctx context.Context) ([]Client, error) {
	if s.cached != nil {
		return s.cached, nil
	}
	clients, err := api.GetPaginated[Client](ctx, s.client, s.client.WorkspacePath("/clients"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	s.cached = clients
	return clients, nil
}

func (s *ClientService) GetByID(ctx context.Context, id string) (*Client, error) {
	var c Client
	if err := s.client.Get(ctx, s.client.WorkspacePath("/clients/"+id), nil, &c); err != nil {
		return nil, fmt.Errorf("failed to get client %s: %w", id, err)
	}
	return &c, nil
}

func (s *ClientService) GetByName(ctx context.Context, name string) (*Client, error) {
	clients, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	c, err := resolve.ByName("client", name, clients, func(c Client) string { return c.Name })
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ExtractFromProjects collects the distinct client ids referenced by a project
// list, for discovery exports.
func ExtractFromProjects(projects []project.Project) []Client {
	seen := map[string]struct{}{}
	var clients []Client
	for _, p := range projects {
		if p.ClientID == "" {
			continue
		}
		if _, ok := seen[p.ClientID]; ok {
			continue
		}
		seen[p.ClientID] = struct{}{}
		clients = append(clients, Client{ID: p.ClientID, Name: p.ClientName})
	}
	return clients
}
