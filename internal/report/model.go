package report

import "time"

const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusSuccess    = "SUCCESS"
	StatusFailed     = "FAILED"
)

type Report struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Status       string    `json:"status"`
	ResultFile   *string   `json:"result_file"`
	ErrorMessage *string   `json:"error_message"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ReportPayload is the queue message handed to the export worker.
type ReportPayload struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
}

// CategoryTotal is one aggregated row of the exported summary.
type CategoryTotal struct {
	Category string
	Total    float64
	Count    int
}
