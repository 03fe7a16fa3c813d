package project

// Project is a vendor-owned project. Read-only to this tool except for nested
// task edits.
type Project struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ClientID   string `json:"clientId,omitempty"`
	ClientName string `json:"clientName,omitempty"`
	Archived   bool   `json:"archived"`
	Billable   bool   `json:"billable,omitempty"`
}
