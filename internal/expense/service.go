package expense

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"expense_tracker/internal/cache"
	"expense_tracker/internal/observability"
	"expense_tracker/internal/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ExpenseServiceInterface interface {
	CreateExpense(e *Expense) error
	GetExpense(id, userID string) (*Expense, error)
	ListExpenses(userID string, filter ListFilter) ([]*Expense, error)
	UpdateExpense(id, userID string, fields UpdateFields) (*Expense, error)
	DeleteExpense(id, userID string) error
}

type ExpenseService struct {
	repo  ExpenseRepositoryInterface
	DB    *sql.DB
	cache *cache.ExpenseCache
}

func NewExpenseService(repo ExpenseRepositoryInterface, db *sql.DB, redisClient *redis.Client) ExpenseServiceInterface {
	return &ExpenseService{
		repo:  repo,
		DB:    db,
		cache: cache.NewExpenseCache(redisClient),
	}
}

// CreateExpense persists a validated expense for its owner and drops the
// owner's cached reads.
func (s *ExpenseService) CreateExpense(e *Expense) error {
	e.ID = uuid.NewString()

	if err := utils.WithTransaction(s.DB, func(tx *sql.Tx) error {
		return s.repo.Create(tx, e)
	}); err != nil {
		return err
	}

	observability.GlobalMetrics.ExpensesCreatedTotal.WithLabelValues(e.Category).Inc()

	s.invalidate(e.UserID)
	return nil
}

func (s *ExpenseService) GetExpense(id, userID string) (*Expense, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cacheKey := cache.ExpenseKey(userID, id)
	cachedData, err := s.cache.Get(ctx, cacheKey)
	if err == nil && cachedData != nil {
		var e Expense
		if json.Unmarshal(cachedData, &e) == nil {
			observability.GlobalMetrics.CacheHitsTotal.WithLabelValues("expense").Inc()
			return &e, nil
		}
	}
	observability.GlobalMetrics.CacheMissesTotal.WithLabelValues("expense").Inc()

	e, err := s.repo.GetByID(s.DB, id, userID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, e); err != nil {
		logrus.WithError(err).Warn("Failed to set cache for expense")
	}

	return e, nil
}

// ListExpenses serves the unfiltered listing through the cache; filtered
// queries always hit the store.
func (s *ExpenseService) ListExpenses(userID string, filter ListFilter) ([]*Expense, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	unfiltered := filter.Category == "" && filter.StartDate == nil && filter.EndDate == nil

	cacheKey := cache.UserExpensesKey(userID)
	if unfiltered {
		cachedData, err := s.cache.Get(ctx, cacheKey)
		if err == nil && cachedData != nil {
			var expenses []*Expense
			if json.Unmarshal(cachedData, &expenses) == nil {
				observability.GlobalMetrics.CacheHitsTotal.WithLabelValues("expense_list").Inc()
				return expenses, nil
			}
		}
		observability.GlobalMetrics.CacheMissesTotal.WithLabelValues("expense_list").Inc()
	}

	expenses, err := s.repo.List(s.DB, userID, filter)
	if err != nil {
		return nil, err
	}

	if unfiltered {
		if err := s.cache.Set(ctx, cacheKey, expenses); err != nil {
			logrus.WithError(err).Warn("Failed to set cache for expense list")
		}
	}

	return expenses, nil
}

// UpdateExpense applies the supplied fields to an owned record. Fields were
// validated by the caller; application is all-or-nothing because nothing is
// written until every supplied field has been applied to the fetched copy
// and the single UPDATE runs.
func (s *ExpenseService) UpdateExpense(id, userID string, fields UpdateFields) (*Expense, error) {
	e, err := s.repo.GetByID(s.DB, id, userID)
	if err != nil {
		return nil, err
	}

	if fields.Title != nil {
		e.Title = *fields.Title
	}
	if fields.Category != nil {
		e.Category = *fields.Category
	}
	if fields.Amount != nil {
		e.Amount = *fields.Amount
	}
	if fields.Date != nil {
		e.Date = *fields.Date
	}

	if err := s.repo.Update(s.DB, e); err != nil {
		return nil, err
	}

	observability.GlobalMetrics.ExpensesUpdatedTotal.Inc()

	s.invalidate(userID)
	return e, nil
}

func (s *ExpenseService) DeleteExpense(id, userID string) error {
	if err := s.repo.Delete(s.DB, id, userID); err != nil {
		return err
	}

	observability.GlobalMetrics.ExpensesDeletedTotal.Inc()

	s.invalidate(userID)
	return nil
}

func (s *ExpenseService) invalidate(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		logrus.WithError(err).Warn("Failed to invalidate expense cache")
	}
}
