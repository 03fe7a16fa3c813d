package task

// Task is the finest-grained permission unit within a project. Identity is
// (ProjectID, ID). AssigneeIDs holds both user and group ids with access.
type Task struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	ProjectID   string   `json:"projectId"`
	AssigneeIDs []string `json:"assigneeIds"`
	Status      string   `json:"status,omitempty"`
}

// HasAssignee reports whether the principal currently has access.
func (t Task) HasAssignee(id string) bool {
	for _, existing := range t.AssigneeIDs {
		if existing == id {
			return true
		}
	}
	return false
}
