package uploader

import (
	"encoding/csv"
	"fmt"
	"os"
)

var templateHeader = []string{
	"amount", "description", "date", "project", "task", "category", "email", "billable",
}

var templateRows = [][]string{
	{"120.50", "NGS reagent restock", "2024-01-15", "Project Alpha", "NGS Reagents and Lab Operations Cost", "Reagents", "jane@example.com", "true"},
	{"45.00", "Courier to lab", "2024-01-16", "Project Alpha", "", "Transportation", "", "false"},
}

// WriteTemplate writes a sample CSV showing the accepted columns.
func WriteTemplate(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create template %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(templateHeader); err != nil {
		return err
	}
	for _, row := range templateRows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
