package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clockops/clockctl/internal/uploader"
)

var expensesCmd = &cobra.Command{
	Use:   "expenses",
	Short: "Bulk expense import from CSV",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func runUpload(cmd *cobra.Command, csvPath string, forceDryRun bool) {
	workspace, _ := cmd.Flags().GetString("workspace")
	a, err := newApp(cmd.Context(), "expenses", workspace)
	if err != nil {
		fail(err)
	}
	defer a.close()

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	defaultEmail, _ := cmd.Flags().GetString("default-email")
	chunkSize, _ := cmd.Flags().GetInt("chunk-size")
	if defaultEmail == "" {
		defaultEmail = a.conf.DEFAULT_USER_EMAIL
	}

	// Uploading is a mutation like any other: without approval we only
	// validate and report.
	if !a.conf.APPROVE_CHANGES {
		dryRun = true
	}

	u := uploader.New(a.svc, a.exporter, a.logger, uploader.Options{
		DefaultEmail: defaultEmail,
		ChunkSize:    chunkSize,
		DryRun:       dryRun || forceDryRun,
	})

	report, err := u.Run(cmd.Context(), csvPath)
	if err != nil {
		fail(err)
	}

	fmt.Printf("rows: %d, valid: %d, invalid: %d\n", report.TotalRows, report.ValidRows, report.InvalidRows)
	for _, re := range report.RowErrors {
		for _, msg := range re.Errors {
			fmt.Printf("row %d: %s\n", re.Row, msg)
		}
	}
	if report.DryRun {
		fmt.Println("dry run: nothing uploaded")
		return
	}
	fmt.Printf("uploaded: %d, failed: %d (batch %s)\n", report.Created, report.Failed, report.BatchID)
}

var expensesUploadCmd = &cobra.Command{
	Use:   "upload <csv-file>",
	Short: "Validate and upload expenses from a CSV file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runUpload(cmd, args[0], false)
	},
}

var expensesValidateCmd = &cobra.Command{
	Use:   "validate <csv-file>",
	Short: "Validate a CSV file without uploading anything",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runUpload(cmd, args[0], true)
	},
}

var expensesTemplateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write a sample CSV template",
	Run: func(cmd *cobra.Command, args []string) {
		out, _ := cmd.Flags().GetString("out")
		if err := uploader.WriteTemplate(out); err != nil {
			fail(err)
		}
		fmt.Println("template written to", out)
	},
}

// Register the "expenses" command
func init() {
	for _, cmd := range []*cobra.Command{expensesUploadCmd, expensesValidateCmd} {
		cmd.Flags().Bool("dry-run", false, "Validate only, upload nothing")
		cmd.Flags().String("workspace", "", "Override the configured workspace id")
		cmd.Flags().String("default-email", "", "User email for rows without one")
		cmd.Flags().Int("chunk-size", uploader.DefaultChunkSize, "Expenses per upload chunk")
		expensesCmd.AddCommand(cmd)
	}
	expensesTemplateCmd.Flags().String("out", "expense_template.csv", "Output path")
	expensesCmd.AddCommand(expensesTemplateCmd)
	rootCmd.AddCommand(expensesCmd)
}
