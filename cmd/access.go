package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clockops/clockctl/internal/access"
)

var accessCmd = &cobra.Command{
	Use:   "access",
	Short: "Bulk task access management",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func accessScope(cmd *cobra.Command) access.Scope {
	clientID, _ := cmd.Flags().GetString("client-id")
	clientName, _ := cmd.Flags().GetString("client-name")
	projectID, _ := cmd.Flags().GetString("project-id")
	projectName, _ := cmd.Flags().GetString("project-name")
	return access.Scope{
		ClientID:    clientID,
		ClientName:  clientName,
		ProjectID:   projectID,
		ProjectName: projectName,
	}
}

func runAccess(cmd *cobra.Command, forceDryRun bool) {
	rulesPath, _ := cmd.Flags().GetString("rules")
	rules, err := access.LoadRules(rulesPath)
	if err != nil {
		fail(err)
	}

	a, err := newApp(cmd.Context(), "access", "")
	if err != nil {
		fail(err)
	}
	defer a.close()

	apply := a.conf.APPROVE_CHANGES && !forceDryRun
	manager := access.NewManager(a.svc, a.exporter, a.logger, rules, apply)

	result, err := manager.Run(cmd.Context(), accessScope(cmd))
	if err != nil {
		fail(err)
	}

	fmt.Printf("projects: %d, tasks scanned: %d, planned operations: %d\n",
		result.Plan.Projects, result.Plan.TasksScanned, len(result.Plan.Operations))
	for _, msg := range result.Plan.ResolutionErrors {
		fmt.Println("unresolved:", msg)
	}
	if result.DryRun {
		fmt.Println("dry run: no changes applied (set APPROVE_CHANGES=true and use `access run`)")
		return
	}
	fmt.Printf("applied: %d, failed: %d\n", len(result.Applied), len(result.Failed))
}

var accessRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Plan and apply the grant/revoke procedure",
	Run: func(cmd *cobra.Command, args []string) {
		runAccess(cmd, false)
	},
}

var accessPlanCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan only, regardless of APPROVE_CHANGES",
	Run: func(cmd *cobra.Command, args []string) {
		runAccess(cmd, true)
	},
}

// Register the "access" command
func init() {
	for _, cmd := range []*cobra.Command{accessRunCmd, accessPlanCmd} {
		cmd.Flags().String("rules", "", "Path to the TOML access rule set (required)")
		cmd.MarkFlagRequired("rules")
		cmd.Flags().String("client-id", "", "Limit to projects of this client id")
		cmd.Flags().String("client-name", "", "Limit to projects of this client name")
		cmd.Flags().String("project-id", "", "Limit to a single project id")
		cmd.Flags().String("project-name", "", "Limit to a single project name")
		accessCmd.AddCommand(cmd)
	}
	rootCmd.AddCommand(accessCmd)
}
