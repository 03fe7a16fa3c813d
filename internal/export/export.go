// Package export writes timestamped JSON and CSV snapshots of every fetched or
// derived dataset so each run leaves an auditable trail on disk.
package export

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bytedance/sonic"
)

type Exporter struct {
	dir    string
	logger *slog.Logger

	// overridable in tests
	now func() time.Time
}

func New(dir string, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{dir: dir, logger: logger, now: time.Now}
}

func (e *Exporter) Dir() string { return e.dir }

func (e *Exporter) timestamp() string {
	return e.now().Format("20060102_150405")
}

func (e *Exporter) path(prefix, ext string) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	return filepath.Join(e.dir, fmt.Sprintf("%s_%s.%s", prefix, e.timestamp(), ext)), nil
}

// JSON writes data as indented JSON and returns the file path.
func (e *Exporter) JSON(prefix string, data any) (string, error) {
	path, err := e.path(prefix, "json")
	if err != nil {
		return "", err
	}

	payload, err := sonic.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", prefix, err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	e.logger.Info("exported JSON", slog.String("file", path))
	return path, nil
}

// CSV writes rows as CSV, deriving the header from the sorted union of all row
// keys. Non-scalar values are JSON-encoded in place.
func (e *Exporter) CSV(prefix string, rows []map[string]any) (string, error) {
	path, err := e.path(prefix, "csv")
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	header := headerFor(rows)
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		record := make([]string, len(header))
		for i, key := range header {
			record[i] = formatCell(row[key])
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}

	e.logger.Info("exported CSV", slog.String("file", path), slog.Int("rows", len(rows)))
	return path, nil
}

// Snapshot writes the same rows in both formats.
func (e *Exporter) Snapshot(prefix string, rows []map[string]any) error {
	if _, err := e.JSON(prefix, rows); err != nil {
		return err
	}
	_, err := e.CSV(prefix, rows)
	return err
}

// Rows converts any slice of structs into generic rows via a JSON round trip,
// so entity models can be exported without per-type code.
func Rows(data any) ([]map[string]any, error) {
	payload, err := sonic.Marshal(data)
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	if err := sonic.Unmarshal(payload, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func headerFor(rows []map[string]any) []string {
	seen := map[string]struct{}{}
	for _, row := range rows {
		for key := range row {
			seen[key] = struct{}{}
		}
	}
	header := make([]string, 0, len(seen))
	for key := range seen {
		header = append(header, key)
	}
	sort.Strings(header)
	return header
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64, int, int64, bool:
		return fmt.Sprint(val)
	default:
		payload, err := sonic.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(payload)
	}
}
