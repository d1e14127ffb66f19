//go:build integration

package integration

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"expense_tracker/internal/report"
	"expense_tracker/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestReport_ExportPipeline queues a report over HTTP, lets a worker drain
// the queue and checks the exported CSV.
func TestReport_ExportPipeline(t *testing.T) {
	env := SetupTestEnv(t)
	defer env.Cleanup(t)

	exportDir := t.TempDir()
	env.Config.Reports.ExportDir = exportDir

	router := setupRouter(env)

	_, token := signupAndToken(t, router, fmt.Sprintf("report_%d@x.com", time.Now().UnixNano()))

	seeds := []map[string]interface{}{
		{"title": "Groceries", "category": "Food", "amount": 52.3, "date": "2024-01-02"},
		{"title": "Dinner", "category": "Food", "amount": 31.2, "date": "2024-01-10"},
		{"title": "Bus pass", "category": "Transport", "amount": 20.0, "date": "2024-01-03"},
	}
	for _, s := range seeds {
		w := doJSON(t, router, "POST", "/api/v1/expenses", token, s)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, router, "POST", "/api/v1/reports", token, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	queued := decode(t, w)["data"].(map[string]interface{})
	reportID := queued["id"].(string)
	assert.Equal(t, report.StatusPending, queued["status"])

	go worker.StartWorker(env.RabbitConn, env.DB, report.NewReportRepository(), exportDir, 1)

	var finished map[string]interface{}
	require.Eventually(t, func() bool {
		w := doJSON(t, router, "GET", "/api/v1/reports/"+reportID, token, nil)
		if w.Code != http.StatusOK {
			return false
		}
		finished = decode(t, w)["data"].(map[string]interface{})
		status := finished["status"].(string)
		return status == report.StatusSuccess || status == report.StatusFailed
	}, 15*time.Second, 200*time.Millisecond)

	require.Equal(t, report.StatusSuccess, finished["status"])

	resultFile := finished["result_file"].(string)
	assert.Equal(t, filepath.Join(exportDir, "report-"+reportID+".csv"), resultFile)

	f, err := os.Open(resultFile)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"category", "total", "count"}, rows[0])

	// Categories come out ordered by total spent, largest first
	assert.Equal(t, []string{"Food", "83.50", "2"}, rows[1])
	assert.Equal(t, []string{"Transport", "20.00", "1"}, rows[2])
}

// TestReport_OwnershipIsolation verifies another user cannot read the report.
func TestReport_OwnershipIsolation(t *testing.T) {
	env := SetupTestEnv(t)
	defer env.Cleanup(t)

	router := setupRouter(env)

	now := time.Now().UnixNano()
	_, tokenA := signupAndToken(t, router, fmt.Sprintf("rep_owner_%d@x.com", now))
	_, tokenB := signupAndToken(t, router, fmt.Sprintf("rep_other_%d@x.com", now))

	w := doJSON(t, router, "POST", "/api/v1/reports", tokenA, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	reportID := decode(t, w)["data"].(map[string]interface{})["id"].(string)

	w = doJSON(t, router, "GET", "/api/v1/reports/"+reportID, tokenB, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, "GET", "/api/v1/reports/"+reportID, tokenA, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
