package group

// Group is a workspace user group, used as an access-grant unit. Read-only
// reference data.
type Group struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	UserIDs []string `json:"userIds"`
}
