package main

import (
	"net/http"

	"expense_tracker/internal/config"
	"expense_tracker/internal/db"
	"expense_tracker/internal/observability"
	"expense_tracker/internal/queue"
	"expense_tracker/internal/report"
	"expense_tracker/internal/worker"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	_ = godotenv.Load()

	cfg := config.Load()

	database := db.Init(&cfg.DB)
	defer func() {
		if err := database.Close(); err != nil {
			logrus.WithError(err).Fatal("Failed to close database connection")
		}
	}()

	conn := queue.SetupRabbitMQ(&cfg.RabbitMQ)
	defer func() {
		if err := conn.Close(); err != nil {
			logrus.Fatalf("Failed to close RabbitMQ connection")
		}
	}()

	repo := report.NewReportRepository()

	consumerChannel, err := queue.CreateChannel(conn)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create RabbitMQ channel")
	}

	if _, err := queue.DeclareQueue(consumerChannel, queue.ReportQueue); err != nil {
		logrus.WithError(err).Fatal("Failed to declare RabbitMQ queue")
	}

	if err := consumerChannel.Close(); err != nil {
		logrus.WithError(err).Fatal("Failed to close RabbitMQ channel")
	}

	observability.InitMetrics()
	logrus.Info("Metrics initialized")

	exportDir := cfg.Reports.ExportDir
	if exportDir == "" {
		exportDir = "exports"
	}

	// Metrics HTTP server for Prometheus scraping
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		logrus.Info("Worker metrics server started on :8088")
		if err := http.ListenAndServe(":8088", nil); err != nil {
			logrus.WithError(err).Fatal("Failed to start metrics server")
		}
	}()

	for i := 1; i <= 3; i++ {
		go worker.StartWorker(conn, database, repo, exportDir, i)
	}

	select {}
}
