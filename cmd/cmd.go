package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/clockops/clockctl/internal/api"
	"github.com/clockops/clockctl/internal/config"
	"github.com/clockops/clockctl/internal/export"
	"github.com/clockops/clockctl/internal/logging"
	"github.com/clockops/clockctl/internal/services"
)

var rootCmd = &cobra.Command{
	Use:   "clockctl",
	Short: "Clockify workspace administration: task access and expense imports",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		err := godotenv.Overload()
		if err != nil {
			log.Println("Error loading .env file, skipping")
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalln(err.Error())
	}
}

// app bundles everything a subcommand needs after startup validation.
type app struct {
	conf     *config.Config
	session  *logging.Session
	logger   *slog.Logger
	exporter *export.Exporter
	client   *api.Client
	svc      *services.Services
}

// newApp validates configuration, opens the session log, and checks API
// connectivity. Configuration errors are fatal here, before any work starts.
func newApp(ctx context.Context, name, workspaceOverride string) (*app, error) {
	conf := config.ReadConfig()
	if workspaceOverride != "" {
		conf.CLOCKIFY_WORKSPACE_ID = workspaceOverride
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	session := logging.NewSession(conf.EXPORT_DIR, name, conf.VERBOSE)
	logger := session.Logger
	slog.SetDefault(logger)

	client := api.NewClient(&api.ClientOptions{
		BaseURL:     conf.CLOCKIFY_BASE_URL,
		APIKey:      conf.CLOCKIFY_API_KEY,
		WorkspaceID: conf.CLOCKIFY_WORKSPACE_ID,
		Logger:      logger,
	})

	ws, err := client.ValidateConnection(ctx)
	if err != nil {
		session.Close()
		return nil, err
	}
	logger.Info("connected to workspace",
		slog.String("workspace", ws.Name), slog.String("id", ws.ID),
		slog.Bool("approve_changes", conf.APPROVE_CHANGES))

	return &app{
		conf:     conf,
		session:  session,
		logger:   logger,
		exporter: export.New(conf.EXPORT_DIR, logger),
		client:   client,
		svc:      services.NewServices(client),
	}, nil
}

func (a *app) close() {
	a.session.Close()
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
