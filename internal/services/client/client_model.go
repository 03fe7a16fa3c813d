package client

// Client is the vendor grouping entity ("client" or category) used to filter
// projects. Never mutated by this tool.
type Client struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Archived bool   `json:"archived,omitempty"`
}
