package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/clockops/clockctl/internal/export"
	clientsvc "github.com/clockops/clockctl/internal/services/client"
)

// discover only reads: it snapshots every workspace dataset to the export
// directory so an operator can inspect ids and names before writing rules.
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Export a read-only snapshot of the workspace structure",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		a, err := newApp(ctx, "discover", "")
		if err != nil {
			fail(err)
		}
		defer a.close()

		projects, err := a.svc.Projects.List(ctx)
		if err != nil {
			fail(err)
		}
		snapshot(a, "projects", projects)

		clients, err := a.svc.Clients.List(ctx)
		if err != nil {
			a.logger.Warn("could not list clients, deriving from projects", slog.Any("error", err))
			clients = clientsvc.ExtractFromProjects(projects)
		}
		snapshot(a, "clients", clients)

		users, err := a.svc.Users.List(ctx)
		if err != nil {
			fail(err)
		}
		snapshot(a, "users", users)

		groups, err := a.svc.Groups.List(ctx)
		if err != nil {
			fail(err)
		}
		snapshot(a, "groups", groups)

		if categories, err := a.svc.Expenses.ListCategories(ctx); err != nil {
			a.logger.Warn("could not list expense categories", slog.Any("error", err))
		} else {
			snapshot(a, "expense_categories", categories)
		}

		fmt.Printf("projects: %d, clients: %d, users: %d, groups: %d\n",
			len(projects), len(clients), len(users), len(groups))
		fmt.Println("snapshots written to", a.exporter.Dir())
	},
}

func snapshot[T any](a *app, name string, data []T) {
	rows, err := export.Rows(data)
	if err != nil {
		a.logger.Warn("could not convert dataset", slog.String("dataset", name), slog.Any("error", err))
		return
	}
	if err := a.exporter.Snapshot(name, rows); err != nil {
		a.logger.Warn("could not export dataset", slog.String("dataset", name), slog.Any("error", err))
	}
}

// Register the "discover" command
func init() {
	rootCmd.AddCommand(discoverCmd)
}
