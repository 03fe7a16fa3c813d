// Package uploader imports expense records from CSV, resolving human-readable
// project/task/category/user names to vendor ids before upload.
package uploader

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clockops/clockctl/internal/export"
	"github.com/clockops/clockctl/internal/services"
	"github.com/clockops/clockctl/internal/services/expense"
)

const DefaultChunkSize = 50

type Options struct {
	// DefaultEmail substitutes for rows without a user column.
	DefaultEmail string
	ChunkSize    int
	DryRun       bool
}

// RowError is one invalid CSV row. Row numbers are 1-based data rows (the
// header is row 0).
type RowError struct {
	Row    int               `json:"row"`
	Raw    map[string]string `json:"raw"`
	Errors []string          `json:"errors"`
}

// ChunkResult records one upload chunk; chunks fail independently.
type ChunkResult struct {
	Chunk   int `json:"chunk"`
	Size    int `json:"size"`
	Created int `json:"created"`
	Failed  int `json:"failed"`
}

// Report is the outcome of one upload run.
type Report struct {
	BatchID     string        `json:"batchId"`
	File        string        `json:"file"`
	TotalRows   int           `json:"totalRows"`
	ValidRows   int           `json:"validRows"`
	InvalidRows int           `json:"invalidRows"`
	RowErrors   []RowError    `json:"rowErrors,omitempty"`
	DryRun      bool          `json:"dryRun"`
	Chunks      []ChunkResult `json:"chunks,omitempty"`
	Created     int           `json:"created"`
	Failed      int           `json:"failed"`
}

type Uploader struct {
	svc      *services.Services
	exporter *export.Exporter
	logger   *slog.Logger
	opts     Options
}

func New(svc *services.Services, exporter *export.Exporter, logger *slog.Logger, opts Options) *Uploader {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	return &Uploader{svc: svc, exporter: exporter, logger: logger, opts: opts}
}

// columnAliases maps alternate header names onto canonical columns.
var columnAliases = map[string]string{
	"project_name":  "project",
	"task_name":     "task",
	"category_name": "category",
	"user":          "email",
	"user_email":    "email",
	"notes":         "description",
}

func canonicalColumn(name string) string {
	col := strings.ToLower(strings.TrimSpace(name))
	col = strings.ReplaceAll(col, " ", "_")
	col = strings.ReplaceAll(col, "-", "_")
	if alias, ok := columnAliases[col]; ok {
		return alias
	}
	return col
}

// Run parses, validates, and (unless dry-run) uploads the CSV. Row-level
// problems go into the report; only file-level problems (unreadable file,
// unusable header) return an error.
func (u *Uploader) Run(ctx context.Context, csvPath string) (*Report, error) {
	rows, err := parseFile(csvPath)
	if err != nil {
		return nil, err
	}

	report := &Report{
		BatchID:   uuid.NewString(),
		File:      csvPath,
		TotalRows: len(rows),
		DryRun:    u.opts.DryRun,
	}
	u.logger.Info("parsed expense CSV",
		slog.String("file", csvPath), slog.Int("rows", len(rows)), slog.String("batch", report.BatchID))

	var valid []expense.CreateExpenseRequest
	for i, row := range rows {
		req, problems := u.validateRow(ctx, row)
		if len(problems) > 0 {
			report.RowErrors = append(report.RowErrors, RowError{Row: i + 1, Raw: row, Errors: problems})
			continue
		}
		valid = append(valid, req)
	}
	report.ValidRows = len(valid)
	report.InvalidRows = len(report.RowErrors)

	u.logger.Info("validation complete",
		slog.Int("valid", report.ValidRows), slog.Int("invalid", report.InvalidRows))
	u.exportRowErrors(report)

	if u.opts.DryRun {
		u.logger.Warn("dry run, skipping upload", slog.Int("would_upload", len(valid)))
		u.exportReport(report)
		return report, nil
	}

	u.uploadChunks(ctx, valid, report)
	u.exportReport(report)
	return report, nil
}

func parseFile(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv %s is empty", path)
	}

	header := make([]string, len(records[0]))
	for i, col := range records[0] {
		header[i] = canonicalColumn(col)
	}
	if err := checkHeader(header); err != nil {
		return nil, fmt.Errorf("csv %s: %w", path, err)
	}

	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := map[string]string{}
		for i, value := range record {
			if i < len(header) {
				row[header[i]] = strings.TrimSpace(value)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// checkHeader enforces the two accepted column sets: amount+description, or
// amount+project+task+category.
func checkHeader(header []string) error {
	has := map[string]bool{}
	for _, col := range header {
		has[col] = true
	}
	if !has["amount"] {
		return fmt.Errorf("missing required column: amount")
	}
	if has["description"] {
		return nil
	}
	if has["project"] && has["task"] && has["category"] {
		return nil
	}
	return fmt.Errorf("need either a description column or project+task+category columns")
}

var dateLayouts = []string{"2006-01-02", "01/02/2006", "2006-01-02 15:04:05"}

func (u *Uploader) validateRow(ctx context.Context, row map[string]string) (expense.CreateExpenseRequest, []string) {
	var req expense.CreateExpenseRequest
	var problems []string

	amountRaw := strings.NewReplacer("$", "", ",", "").Replace(row["amount"])
	amount, err := strconv.ParseFloat(strings.TrimSpace(amountRaw), 64)
	switch {
	case row["amount"] == "":
		problems = append(problems, "amount is required")
	case err != nil:
		problems = append(problems, fmt.Sprintf("invalid amount %q", row["amount"]))
	case amount <= 0:
		problems = append(problems, "amount must be greater than 0")
	default:
		req.Amount = amount
	}

	req.Date = time.Now().UTC().Truncate(24 * time.Hour)
	if raw := row["date"]; raw != "" {
		parsed, ok := parseDate(raw)
		if !ok {
			problems = append(problems, fmt.Sprintf("invalid date %q", raw))
		} else {
			req.Date = parsed
		}
	}

	req.Notes = row["description"]
	if req.Notes == "" && (row["project"] == "" || row["task"] == "" || row["category"] == "") {
		problems = append(problems, "row needs a description or project+task+category values")
	}

	if name := row["project"]; name != "" {
		proj, err := u.svc.Projects.GetByName(ctx, name)
		if err != nil {
			problems = append(problems, err.Error())
		} else {
			req.ProjectID = proj.ID
			if taskName := row["task"]; taskName != "" {
				t, err := u.svc.Tasks.GetByName(ctx, proj.ID, taskName)
				if err != nil {
					problems = append(problems, err.Error())
				} else {
					req.TaskID = t.ID
				}
			}
		}
	} else if row["task"] != "" {
		problems = append(problems, "task given without a project")
	}

	if name := row["category"]; name != "" {
		cat, err := u.svc.Expenses.GetCategoryByName(ctx, name)
		if err != nil {
			problems = append(problems, err.Error())
		} else {
			req.CategoryID = cat.ID
		}
	}

	email := row["email"]
	if email == "" {
		email = u.opts.DefaultEmail
	}
	if email == "" {
		problems = append(problems, "no user email in row and no default email configured")
	} else {
		usr, err := u.svc.Users.GetByEmail(ctx, email)
		if err != nil {
			problems = append(problems, err.Error())
		} else {
			req.UserID = usr.ID
		}
	}

	if raw := row["billable"]; raw != "" {
		billable, ok := parseBillable(raw)
		if !ok {
			problems = append(problems, fmt.Sprintf("invalid billable value %q", raw))
		}
		req.Billable = billable
	}

	return req, problems
}

func parseDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}

func parseBillable(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "y", "billable":
		return true, true
	case "false", "0", "no", "n", "non-billable":
		return false, true
	}
	return false, false
}

func (u *Uploader) uploadChunks(ctx context.Context, valid []expense.CreateExpenseRequest, report *Report) {
	for start := 0; start < len(valid); start += u.opts.ChunkSize {
		end := start + u.opts.ChunkSize
		if end > len(valid) {
			end = len(valid)
		}
		chunkNum := start/u.opts.ChunkSize + 1

		result := u.svc.Expenses.BulkCreate(ctx, valid[start:end])
		chunk := ChunkResult{
			Chunk:   chunkNum,
			Size:    end - start,
			Created: len(result.Created),
			Failed:  len(result.Failed),
		}
		report.Chunks = append(report.Chunks, chunk)
		report.Created += chunk.Created
		report.Failed += chunk.Failed

		u.logger.Info("chunk uploaded",
			slog.Int("chunk", chunkNum), slog.Int("created", chunk.Created), slog.Int("failed", chunk.Failed))
	}
}

func (u *Uploader) exportRowErrors(report *Report) {
	if u.exporter == nil || len(report.RowErrors) == 0 {
		return
	}
	rows := make([]map[string]any, len(report.RowErrors))
	for i, re := range report.RowErrors {
		rows[i] = map[string]any{
			"row":    re.Row,
			"errors": strings.Join(re.Errors, "; "),
			"raw":    re.Raw,
		}
	}
	if err := u.exporter.Snapshot("expense_validation_errors", rows); err != nil {
		u.logger.Warn("failed to export validation errors", slog.Any("error", err))
	}
}

func (u *Uploader) exportReport(report *Report) {
	if u.exporter == nil {
		return
	}
	if _, err := u.exporter.JSON("expense_upload_report", report); err != nil {
		u.logger.Warn("failed to export upload report", slog.Any("error", err))
	}
}
