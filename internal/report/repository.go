package report

import (
	"database/sql"
	"errors"

	"github.com/sirupsen/logrus"
)

var ErrNotFound = errors.New("report not found")

type ReportRepository struct{}

type ReportRepositoryInterface interface {
	Create(tx *sql.Tx, r *Report) error
	GetByID(db *sql.DB, id, userID string) (*Report, error)
	MarkProcessing(tx *sql.Tx, id string) error
	MarkSuccess(tx *sql.Tx, id string, resultFile string) error
	MarkFailed(tx *sql.Tx, id string, errorMessage string) error
	Summarize(db *sql.DB, userID string) ([]CategoryTotal, error)
}

func NewReportRepository() ReportRepositoryInterface {
	return &ReportRepository{}
}

func (r *ReportRepository) Create(tx *sql.Tx, rep *Report) error {
	query := `
		INSERT INTO reports (
			id, user_id, status, created_at, updated_at
		)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := tx.QueryRow(
		query,
		rep.ID,
		rep.UserID,
		rep.Status,
	).Scan(&rep.CreatedAt, &rep.UpdatedAt)

	if err != nil {
		logrus.WithError(err).Error("Failed to create report")
		return err
	}

	return nil
}

// GetByID fetches a report only if both id and owning user id match.
func (r *ReportRepository) GetByID(db *sql.DB, id, userID string) (*Report, error) {
	query := `
		SELECT id, user_id, status, result_file, error_message, created_at, updated_at
		FROM reports
		WHERE id = $1 AND user_id = $2
	`

	var rep Report
	err := db.QueryRow(query, id, userID).Scan(
		&rep.ID,
		&rep.UserID,
		&rep.Status,
		&rep.ResultFile,
		&rep.ErrorMessage,
		&rep.CreatedAt,
		&rep.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		logrus.WithError(err).Error("Failed to get report by ID")
		return nil, err
	}

	return &rep, nil
}

func (r *ReportRepository) MarkProcessing(tx *sql.Tx, id string) error {
	query := `
		UPDATE reports
		SET status = 'PROCESSING', updated_at = NOW()
		WHERE id = $1
	`
	_, err := tx.Exec(query, id)
	return err
}

func (r *ReportRepository) MarkSuccess(tx *sql.Tx, id string, resultFile string) error {
	query := `
		UPDATE reports
		SET status = 'SUCCESS',
		    result_file = $1,
		    updated_at = NOW()
		WHERE id = $2
	`
	_, err := tx.Exec(query, resultFile, id)
	return err
}

func (r *ReportRepository) MarkFailed(tx *sql.Tx, id string, errorMessage string) error {
	query := `
		UPDATE reports
		SET status = 'FAILED',
		    error_message = $1,
		    updated_at = NOW()
		WHERE id = $2
	`
	_, err := tx.Exec(query, errorMessage, id)
	return err
}

// Summarize aggregates the user's spend per category for the export.
func (r *ReportRepository) Summarize(db *sql.DB, userID string) ([]CategoryTotal, error) {
	query := `
		SELECT category, SUM(amount), COUNT(*)
		FROM expenses
		WHERE user_id = $1
		GROUP BY category
		ORDER BY SUM(amount) DESC
	`

	rows, err := db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []CategoryTotal
	for rows.Next() {
		var t CategoryTotal
		if err := rows.Scan(&t.Category, &t.Total, &t.Count); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return totals, nil
}
