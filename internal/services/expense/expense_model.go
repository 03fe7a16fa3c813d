package expense

import "time"

// CreateExpenseRequest is the payload for creating one expense record.
// Expenses are created once and never updated by this tool.
type CreateExpenseRequest struct {
	Amount     float64   `json:"amount"`
	Date       time.Time `json:"date"`
	ProjectID  string    `json:"projectId"`
	TaskID     string    `json:"taskId,omitempty"`
	CategoryID string    `json:"categoryId"`
	UserID     string    `json:"userId"`
	Notes      string    `json:"notes,omitempty"`
	Billable   bool      `json:"billable"`
}

// Expense is a created expense as returned by the vendor.
type Expense struct {
	ID         string    `json:"id"`
	Amount     float64   `json:"amount"`
	Date       time.Time `json:"date"`
	ProjectID  string    `json:"projectId"`
	TaskID     string    `json:"taskId,omitempty"`
	CategoryID string    `json:"categoryId"`
	UserID     string    `json:"userId"`
	Notes      string    `json:"notes,omitempty"`
	Billable   bool      `json:"billable"`
}

// Category is an expense category, reference data for name resolution.
type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Archived bool   `json:"archived,omitempty"`
}

// FailedCreate pairs a rejected request with the API error.
type FailedCreate struct {
	Request CreateExpenseRequest `json:"request"`
	Error   string               `json:"error"`
}

// BulkResult tallies one batch of sequential creates.
type BulkResult struct {
	Created []Expense      `json:"created"`
	Failed  []FailedCreate `json:"failed"`
}
