package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/clockops/clockctl/internal/api"
	"github.com/clockops/clockctl/internal/resolve"
)

// UserService reads the workspace member list.
type UserService struct {
	client *api.Client

	cached []User
}

// NewUserService constructs a new UserService
func NewUserService(client *api.Client) *UserService {
	return &UserService{client: client}
}

func (s *UserService) List(ctx context.Context) ([]User, error) {
	if s.cached != nil {
		return s.cached, nil
	}
	users, err := api.GetPaginated[User](ctx, s.client, s.client.WorkspacePath("/users"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	s.cached = users
	return users, nil
}

// GetByEmail matches exactly, case-insensitively. Emails are unique in a
// workspace so there is no substring fallback.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*User, error) {
	users, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	want := strings.ToLower(strings.TrimSpace(email))
	for _, u := range users {
		if strings.ToLower(u.Email) == want {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", email, resolve.ErrNotFound)
}

func (s *UserService) GetByName(ctx context.Context, name string) (*User, error) {
	users, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	u, err := resolve.ByName("user", name, users, func(u User) string { return u.Name })
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByNames resolves a batch of names, keeping per-name errors instead of
// failing the batch.
func (s *UserService) FindByNames(ctx context.Context, names []string) (map[string]User, []error) {
	found := make(map[string]User, len(names))
	var errs []error
	for _, name := range names {
		u, err := s.GetByName(ctx, name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		found[name] = *u
	}
	return found, errs
}
