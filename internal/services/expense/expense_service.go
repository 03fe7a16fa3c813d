package expense

import (
	"context"
	"fmt"

	"github.com/clockops/clockctl/internal/api"
	"github.com/clockops/clockctl/internal/resolve"
)

// ExpenseService creates expense records and reads expense categories.
type ExpenseService struct {
	client *api.Client

	cachedCategories []Category
}

// NewExpenseService constructs a new ExpenseService
func NewExpenseService(client *api.Client) *ExpenseService {
	return &ExpenseService{client: client}
}

func (s *ExpenseService) Create(ctx context.Context, req CreateExpenseRequest) (*Expense, error) {
	var created Expense
	if err := s.client.Post(ctx, s.client.WorkspacePath("/expenses"), req, &created); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}
	return &created, nil
}

// BulkCreate issues sequential creates, recording per-item success and failure
// instead of aborting on the first error.
func (s *ExpenseService) BulkCreate(ctx context.Context, reqs []CreateExpenseRequest) BulkResult {
	var result BulkResult
	for _, req := range reqs {
		created, err := s.Create(ctx, req)
		if err != nil {
			result.Failed = append(result.Failed, FailedCreate{Request: req, Error: err.Error()})
			continue
		}
		result.Created = append(result.Created, *created)
	}
	return result
}

func (s *ExpenseService) ListCategories(ctx context.Context) ([]Category, error) {
	if s.cachedCategories != nil {
		return s.cachedCategories, nil
	}
	path := s.client.WorkspacePath("/expenses/categories")
	categories, err := api.GetPaginated[Category](ctx, s.client, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list expense categories: %w", err)
	}
	s.cachedCategories = categories
	return categories, nil
}

func (s *ExpenseService) GetCategoryByName(ctx context.Context, name string) (*Category, error) {
	categories, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	c, err := resolve.ByName("category", name, categories, func(c Category) string { return c.Name })
	if err != nil {
		return nil, err
	}
	return &c, nil
}
