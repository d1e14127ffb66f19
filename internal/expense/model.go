package expense

import "time"

type Expense struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Amount    float64   `json:"amount"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListFilter narrows a user's expense listing. Zero values mean "no filter";
// the owning user id is never part of the filter, it is always imposed.
type ListFilter struct {
	Category  string
	StartDate *time.Time
	EndDate   *time.Time
}

// UpdateFields carries the validated subset of fields supplied to a partial
// update. Nil pointers leave the stored value untouched.
type UpdateFields struct {
	Title    *string
	Category *string
	Amount   *float64
	Date     *time.Time
}
