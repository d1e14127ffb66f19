package worker

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"expense_tracker/internal/observability"
	"expense_tracker/internal/queue"
	"expense_tracker/internal/report"
	"expense_tracker/internal/utils"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

func republishWithRetry(ch *amqp.Channel, msg *amqp.Delivery, retryCount int32) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	headers := amqp.Table{}
	if msg.Headers != nil {
		headers = msg.Headers
	}
	headers["x-retry-count"] = retryCount

	return ch.PublishWithContext(
		ctx,
		"",             // exchange
		msg.RoutingKey, // routing key (queue name)
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType: msg.ContentType,
			Body:        msg.Body,
			Headers:     headers,
		},
	)
}

func StartWorker(conn *amqp.Connection, db *sql.DB, repo report.ReportRepositoryInterface, exportDir string, id int) {
	ch, err := conn.Channel()
	if err != nil {
		logrus.Fatalf("Worker %d failed to open channel: %v", id, err)
	}
	defer ch.Close()

	if err := ch.Qos(1, 0, false); err != nil {
		logrus.Fatalf("Worker %d failed to set QoS: %v", id, err)
	}

	msgs, err := ch.Consume(
		queue.ReportQueue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logrus.Fatalf("Worker %d failed to start consuming messages: %v", id, err)
		return
	}

	logrus.Infof("Worker %d started", id)

	for msg := range msgs {
		observability.GlobalMetrics.QueueMessagesConsumed.WithLabelValues(queue.ReportQueue).Inc()

		var payload report.ReportPayload
		if err := json.Unmarshal(msg.Body, &payload); err != nil {
			logrus.Error("invalid payload")
			msg.Nack(false, false)
			continue
		}

		retryCount := int32(0)
		if msg.Headers != nil {
			if count, ok := msg.Headers["x-retry-count"].(int32); ok {
				retryCount = count
			}
		}

		logrus.Infof(
			"Worker %d processing report=%s for user=%s (retry: %d)",
			id,
			payload.ID,
			payload.UserID,
			retryCount,
		)

		startTime := time.Now()

		// Transaction 1: mark PROCESSING (commit immediately)
		if err := utils.WithTransaction(db, func(tx *sql.Tx) error {
			return repo.MarkProcessing(tx, payload.ID)
		}); err != nil {
			logrus.WithError(err).Error("Failed to mark report as processing")
			msg.Nack(false, true)
			continue
		}

		// Build the export (outside any transaction)
		resultFile, exportErr := exportSummary(db, repo, &payload, exportDir, id)

		duration := time.Since(startTime).Seconds()
		observability.GlobalMetrics.ReportProcessingDuration.Observe(duration)

		// Transaction 2: mark SUCCESS or FAILED
		if err := utils.WithTransaction(db, func(tx *sql.Tx) error {
			if exportErr != nil {
				logrus.WithError(exportErr).Error("report export failed")
				observability.GlobalMetrics.ReportsProcessedTotal.WithLabelValues("failed").Inc()
				return repo.MarkFailed(tx, payload.ID, exportErr.Error())
			}
			observability.GlobalMetrics.ReportsProcessedTotal.WithLabelValues("success").Inc()
			return repo.MarkSuccess(tx, payload.ID, resultFile)
		}); err != nil {
			logrus.WithError(err).Error("Failed to update report status")

			if retryCount >= 3 {
				if err := utils.WithTransaction(db, func(tx *sql.Tx) error {
					return repo.MarkFailed(tx, payload.ID, "max retries reached")
				}); err != nil {
					logrus.WithError(err).Error("Failed to mark report as failed after max retries")
				}
				msg.Nack(false, false)
				continue
			}

			logrus.Infof("Worker %d: report failed, requeuing (retry %d/3)", id, retryCount+1)

			if err := republishWithRetry(ch, &msg, retryCount+1); err != nil {
				logrus.WithError(err).Error("Failed to republish message")
				msg.Nack(false, false)
				continue
			}

			observability.GlobalMetrics.QueueMessagesPublished.WithLabelValues(queue.ReportQueue).Inc()
			msg.Ack(false)
			continue
		}

		msg.Ack(false)
	}
}
