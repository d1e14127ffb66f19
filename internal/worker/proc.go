package worker

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"expense_tracker/internal/report"

	"github.com/sirupsen/logrus"
)

// exportSummary aggregates the user's expenses per category and writes the
// result as a CSV file. Returns the written file path.
func exportSummary(db *sql.DB, repo report.ReportRepositoryInterface, payload *report.ReportPayload, exportDir string, workerID int) (string, error) {
	totals, err := repo.Summarize(db, payload.UserID)
	if err != nil {
		return "", fmt.Errorf("summarize expenses: %w", err)
	}

	if err := os.MkdirAll(exportDir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	path := filepath.Join(exportDir, fmt.Sprintf("report-%s.csv", payload.ID))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"category", "total", "count"}); err != nil {
		return "", err
	}
	for _, t := range totals {
		record := []string{
			t.Category,
			strconv.FormatFloat(t.Total, 'f', 2, 64),
			strconv.Itoa(t.Count),
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	logrus.Infof("Worker %d wrote summary for user=%s to %s", workerID, payload.UserID, path)
	return path, nil
}
