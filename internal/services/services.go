package services

import (
	"github.com/clockops/clockctl/internal/api"
	client2 "github.com/clockops/clockctl/internal/services/client"
	expense2 "github.com/clockops/clockctl/internal/services/expense"
	group2 "github.com/clockops/clockctl/internal/services/group"
	project2 "github.com/clockops/clockctl/internal/services/project"
	task2 "github.com/clockops/clockctl/internal/services/task"
	user2 "github.com/clockops/clockctl/internal/services/user"
)

// Services bundles one instance of every entity service, all sharing the same
// API client.
type Services struct {
	Projects *project2.ProjectService
	Clients  *client2.ClientService
	Tasks    *task2.TaskService
	Users    *user2.UserService
	Groups   *group2.GroupService
	Expenses *expense2.ExpenseService
}

func NewServices(apiClient *api.Client) *Services {
	return &Services{
		Projects: project2.NewProjectService(apiClient),
		Clients:  client2.NewClientService(apiClient),
		Tasks:    task2.NewTaskService(apiClient),
		Users:    user2.NewUserService(apiClient),
		Groups:   group2.NewGroupService(apiClient),
		Expenses: expense2.NewExpenseService(apiClient),
	}
}
