package expense

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// ErrNotFound covers both an unknown id and a record owned by another user.
// The two cases must not be distinguishable.
var ErrNotFound = errors.New("expense not found")

type ExpenseRepository struct{}

type ExpenseRepositoryInterface interface {
	Create(tx *sql.Tx, e *Expense) error
	GetByID(db *sql.DB, id, userID string) (*Expense, error)
	List(db *sql.DB, userID string, filter ListFilter) ([]*Expense, error)
	Update(db *sql.DB, e *Expense) error
	Delete(db *sql.DB, id, userID string) error
}

func NewExpenseRepository() ExpenseRepositoryInterface {
	return &ExpenseRepository{}
}

func (r *ExpenseRepository) Create(tx *sql.Tx, e *Expense) error {
	query := `
		INSERT INTO expenses (
			id, user_id, title, category, amount, date, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := tx.QueryRow(
		query,
		e.ID,
		e.UserID,
		e.Title,
		e.Category,
		e.Amount,
		e.Date,
	).Scan(&e.CreatedAt, &e.UpdatedAt)

	if err != nil {
		logrus.WithError(err).Error("Failed to create expense")
		return err
	}

	return nil
}

// GetByID fetches a record only if both id and owning user id match.
func (r *ExpenseRepository) GetByID(db *sql.DB, id, userID string) (*Expense, error) {
	query := `
		SELECT id, user_id, title, category, amount, date, created_at, updated_at
		FROM expenses
		WHERE id = $1 AND user_id = $2
	`

	var e Expense
	err := db.QueryRow(query, id, userID).Scan(
		&e.ID,
		&e.UserID,
		&e.Title,
		&e.Category,
		&e.Amount,
		&e.Date,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		logrus.WithError(err).Error("Failed to get expense by ID")
		return nil, err
	}

	return &e, nil
}

// List returns the caller's expenses ordered by date desc, creation time
// desc as a stable tie-break for same-day entries.
func (r *ExpenseRepository) List(db *sql.DB, userID string, filter ListFilter) ([]*Expense, error) {
	query := `
		SELECT id, user_id, title, category, amount, date, created_at, updated_at
		FROM expenses
		WHERE user_id = $1
	`
	args := []interface{}{userID}

	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}

	query += " ORDER BY date DESC, created_at DESC"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := []*Expense{}
	for rows.Next() {
		var e Expense
		err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.Title,
			&e.Category,
			&e.Amount,
			&e.Date,
			&e.CreatedAt,
			&e.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, &e)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return expenses, nil
}

// Update persists the full field set in a single statement, scoped by owner.
func (r *ExpenseRepository) Update(db *sql.DB, e *Expense) error {
	query := `
		UPDATE expenses
		SET title = $1,
		    category = $2,
		    amount = $3,
		    date = $4,
		    updated_at = NOW()
		WHERE id = $5 AND user_id = $6
		RETURNING updated_at
	`

	err := db.QueryRow(
		query,
		e.Title,
		e.Category,
		e.Amount,
		e.Date,
		e.ID,
		e.UserID,
	).Scan(&e.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		logrus.WithError(err).Error("Failed to update expense")
		return err
	}

	return nil
}

// Delete removes the record, scoped by owner.
func (r *ExpenseRepository) Delete(db *sql.DB, id, userID string) error {
	query := `
		DELETE FROM expenses
		WHERE id = $1 AND user_id = $2
	`

	result, err := db.Exec(query, id, userID)
	if err != nil {
		logrus.WithError(err).Error("Failed to delete expense")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
