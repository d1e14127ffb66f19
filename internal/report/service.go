package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"expense_tracker/internal/observability"
	"expense_tracker/internal/queue"
	"expense_tracker/internal/utils"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

type ReportServiceInterface interface {
	QueueReport(userID string) (*Report, error)
	GetReport(id, userID string) (*Report, error)
}

type ReportService struct {
	repo ReportRepositoryInterface
	DB   *sql.DB
	conn *amqp.Connection
}

func NewReportService(repo ReportRepositoryInterface, db *sql.DB, conn *amqp.Connection) ReportServiceInterface {
	return &ReportService{
		repo: repo,
		DB:   db,
		conn: conn,
	}
}

// QueueReport records a pending export and publishes the job. The row is
// committed before the publish so the worker always finds it.
func (s *ReportService) QueueReport(userID string) (*Report, error) {
	rep := &Report{
		ID:     uuid.NewString(),
		UserID: userID,
		Status: StatusPending,
	}

	if err := utils.WithTransaction(s.DB, func(tx *sql.Tx) error {
		return s.repo.Create(tx, rep)
	}); err != nil {
		return nil, err
	}

	ch, err := queue.CreateChannel(s.conn)
	if err != nil {
		return nil, err
	}
	defer ch.Close()

	body, err := json.Marshal(ReportPayload{ID: rep.ID, UserID: rep.UserID})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := ch.PublishWithContext(
		ctx,
		"",
		queue.ReportQueue,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	); err != nil {
		return nil, err
	}

	observability.GlobalMetrics.ReportsQueuedTotal.Inc()
	observability.GlobalMetrics.QueueMessagesPublished.WithLabelValues(queue.ReportQueue).Inc()

	return rep, nil
}

func (s *ReportService) GetReport(id, userID string) (*Report, error) {
	return s.repo.GetByID(s.DB, id, userID)
}
