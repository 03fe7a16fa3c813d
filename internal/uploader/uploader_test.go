package uploader

import (
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clockops/clockctl/internal/api"
	"github.com/clockops/clockctl/internal/services"
	"github.com/clockops/clockctl/internal/services/expense"
	"github.com/clockops/clockctl/internal/services/project"
	"github.com/clockops/clockctl/internal/services/task"
	"github.com/clockops/clockctl/internal/services/user"
)

type fakeExpenseAPI struct {
	expensePosts int
	failAmounts  map[float64]bool
}

var taskListRe = regexp.MustCompile(`^/workspaces/ws1/projects/([^/]+)/tasks$`)

func (f *fakeExpenseAPI) handler() http.Handler {
	writeJSON := func(w http.ResponseWriter, v any) {
		payload, _ := sonic.Marshal(v)
		w.Write(payload)
	}

	projects := []project.Project{{ID: "p1", Name: "Alpha"}, {ID: "p2", Name: "Beta"}}
	tasks := map[string][]task.Task{
		"p1": {{ID: "t1", Name: "NGS Reagents and Lab Operations Cost", ProjectID: "p1"}},
	}
	users := []user.User{{ID: "u1", Name: "Jane Doe", Email: "jane@acme.test"}}
	categories := []expense.Category{{ID: "cat1", Name: "Reagents"}, {ID: "cat2", Name: "Transportation"}}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/workspaces/ws1/projects":
			writeJSON(w, projects)
		case taskListRe.MatchString(r.URL.Path):
			writeJSON(w, tasks[taskListRe.FindStringSubmatch(r.URL.Path)[1]])
		case r.URL.Path == "/workspaces/ws1/users":
			writeJSON(w, users)
		case r.URL.Path == "/workspaces/ws1/expenses/categories":
			writeJSON(w, categories)
		case r.URL.Path == "/workspaces/ws1/expenses" && r.Method == http.MethodPost:
			var req expense.CreateExpenseRequest
			sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
			if f.failAmounts[req.Amount] {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"message":"rejected"}`))
				return
			}
			f.expensePosts++
			created := expense.Expense{ID: "e1", Amount: req.Amount, ProjectID: req.ProjectID}
			w.WriteHeader(http.StatusCreated)
			writeJSON(w, created)
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"not found"}`))
		}
	})
}

func newUploader(t *testing.T, fake *fakeExpenseAPI, opts Options) *Uploader {
	t.Helper()
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	client := api.NewClient(&api.ClientOptions{
		BaseURL:     server.URL,
		APIKey:      "k",
		WorkspaceID: "ws1",
		RetryDelay:  time.Millisecond,
	})
	return New(services.NewServices(client), nil, nil, opts)
}

func writeCSV(t *testing.T, header []string, rows [][]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "expenses.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := csv.NewWriter(f)
	require.NoError(t, w.Write(header))
	for _, row := range rows {
		require.NoError(t, w.Write(row))
	}
	w.Flush()
	require.NoError(t, w.Error())
	return path
}

func TestMixedValidityUpload(t *testing.T) {
	fake := &fakeExpenseAPI{}
	u := newUploader(t, fake, Options{DefaultEmail: "jane@acme.test"})

	path := writeCSV(t,
		[]string{"amount", "project", "task", "category"},
		[][]string{
			{"100", "Alpha", "NGS Reagents and Lab Operations Cost", "Reagents"},
			{"50", "Unknown", "X", "Y"},
		})

	report, err := u.Run(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 2, report.TotalRows)
	assert.Equal(t, 1, report.ValidRows)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, fake.expensePosts, "valid row uploaded despite invalid sibling")

	require.Len(t, report.RowErrors, 1)
	assert.Equal(t, 2, report.RowErrors[0].Row)
	assert.Contains(t, report.RowErrors[0].Errors[0], `project "Unknown"`)
}

func TestDryRunPerformsZeroUploads(t *testing.T) {
	fake := &fakeExpenseAPI{}
	u := newUploader(t, fake, Options{DefaultEmail: "jane@acme.test", DryRun: true})

	path := writeCSV(t,
		[]string{"amount", "description"},
		[][]string{{"10", "lunch"}, {"20", "taxi"}})

	report, err := u.Run(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, 2, report.ValidRows)
	assert.Zero(t, fake.expensePosts)
	assert.Empty(t, report.Chunks)
}

func TestChunksFailIndependently(t *testing.T) {
	fake := &fakeExpenseAPI{failAmounts: map[float64]bool{20: true}}
	u := newUploader(t, fake, Options{DefaultEmail: "jane@acme.test", ChunkSize: 2})

	path := writeCSV(t,
		[]string{"amount", "description"},
		[][]string{{"10", "a"}, {"20", "b"}, {"30", "c"}})

	report, err := u.Run(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, report.Chunks, 2)
	assert.Equal(t, 1, report.Chunks[0].Created)
	assert.Equal(t, 1, report.Chunks[0].Failed)
	assert.Equal(t, 1, report.Chunks[1].Created, "later chunk still uploads")
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 1, report.Failed)
}

func TestHeaderNormalizationAndAliases(t *testing.T) {
	fake := &fakeExpenseAPI{}
	u := newUploader(t, fake, Options{})

	path := writeCSV(t,
		[]string{"Amount", "Project Name", "Task-Name", "Category", "User Email"},
		[][]string{{"$1,200.50", "alpha", "ngs reagents", "reagents", "JANE@ACME.TEST"}})

	report, err := u.Run(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, report.ValidRows)
	assert.Equal(t, 1, report.Created)
}

func TestMissingRequiredColumnsIsFileLevel(t *testing.T) {
	fake := &fakeExpenseAPI{}
	u := newUploader(t, fake, Options{})

	path := writeCSV(t, []string{"amount", "project"}, [][]string{{"10", "Alpha"}})

	_, err := u.Run(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "description")
}

func TestRowValidationMessages(t *testing.T) {
	fake := &fakeExpenseAPI{}
	u := newUploader(t, fake, Options{})

	path := writeCSV(t,
		[]string{"amount", "description", "date", "email"},
		[][]string{{"-5", "bad amount", "15-01-2024", "nobody@acme.test"}})

	report, err := u.Run(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, report.RowErrors, 1)
	problems := report.RowErrors[0].Errors
	assert.Contains(t, problems[0], "greater than 0")
	assert.Contains(t, problems[1], "invalid date")
	assert.Contains(t, problems[2], `"nobody@acme.test"`)
}

func TestWriteTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.csv")
	require.NoError(t, WriteTemplate(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, templateHeader, records[0])
}
