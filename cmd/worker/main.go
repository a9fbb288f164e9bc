package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nwsirlp/skillgraph/internal/queue"
	"github.com/nwsirlp/skillgraph/internal/server"
	"github.com/nwsirlp/skillgraph/internal/util"
	"github.com/nwsirlp/skillgraph/pkg/leaselock"
	"github.com/nwsirlp/skillgraph/pkg/logger"
	"github.com/nwsirlp/skillgraph/pkg/logger/console"
	"github.com/nwsirlp/skillgraph/pkg/store"
	pgstore "github.com/nwsirlp/skillgraph/pkg/store/pgx"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

// backfillLeaseKey serializes embedding backfills across workers. A busy
// lease means another worker is already on it; the message is requeued and
// picked up once the lease frees.
const backfillLeaseKey = "embed_backfill"

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	aiClient := server.NewAIClient()

	// The lease lock needs the raw pool, so the Postgres backend is built
	// here instead of through server.NewStore.
	var st store.Storage
	var leaseClient *leaselock.Client
	if util.GetEnvString("STORE_BACKEND", "memory") == "postgres" {
		cfg, err := pgxpool.ParseConfig(util.GetEnv("DATABASE_URL"))
		if err != nil {
			logger.Fatal("Failed to parse database url", "err", err)
		}
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			return pgxvec.RegisterTypes(ctx, conn)
		}
		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			logger.Fatal("Unable to connect to database", "err", err)
		}
		defer pool.Close()

		pgStore := pgstore.NewStore(pool)
		if err := pgStore.EnsureSchema(ctx, aiClient.EmbeddingDimensions()); err != nil {
			logger.Fatal("Failed to ensure database schema", "err", err)
		}
		st = pgStore
		leaseClient = leaselock.New(pool)
	} else {
		st = server.NewStore(ctx, aiClient.EmbeddingDimensions())
	}
	defer st.Close()

	// Init rabbitmq
	conn := queue.Init()
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := queue.SetupQueues(ch, []string{queue.EmbedQueue}); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	logger.Info("Listening for messages")

	// Single consumer channel with prefetch=1: one backfill at a time.
	consumerCh, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open consumer channel", "err", err)
	}
	defer consumerCh.Close()

	err = consumerCh.Qos(1, 0, true)
	if err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	msgs, err := consumerCh.Consume(
		queue.EmbedQueue,
		queue.EmbedQueue+"_consumer",
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		logger.Fatal("Failed to start consuming", "queue", queue.EmbedQueue, "err", err)
	}

	process := func(ctx context.Context, body string) error {
		if leaseClient == nil {
			return queue.ProcessEmbedJob(ctx, st, aiClient, body)
		}
		return leaseClient.WithLease(ctx, backfillLeaseKey, leaselock.Options{
			TTL:        time.Minute,
			RenewEvery: 20 * time.Second,
		}, func(ctx context.Context) error {
			return queue.ProcessEmbedJob(ctx, st, aiClient, body)
		})
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Info("Stopping message processor")
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Info("Message channel closed", "queue", queue.EmbedQueue)
					return
				}

				startTime := time.Now()
				logger.Info("Received message", "queue", queue.EmbedQueue)

				processingErr := process(ctx, string(msg.Body))

				switch {
				case errors.Is(processingErr, leaselock.ErrBusy):
					logger.Info("Backfill lease busy, requeueing message")
					time.Sleep(2 * time.Second)
					if err := msg.Nack(false, true); err != nil {
						logger.Error("Failed to nack message", "err", err)
					}
					continue
				case processingErr != nil:
					logger.Error("Error processing message", "queue", queue.EmbedQueue, "err", processingErr)
					handleProcessingError(consumerCh, msg, queue.EmbedQueue)
				default:
					if err := msg.Ack(false); err != nil {
						logger.Error("Failed to ack message", "err", err)
					}
					logger.Info("Message processed successfully", "queue", queue.EmbedQueue)
				}

				metrics := aiClient.GetMetrics()
				aiDuration := time.Duration(metrics.DurationMs) * time.Millisecond
				aiHours := int(aiDuration.Hours())
				aiMinutes := int(aiDuration.Minutes()) % 60
				aiSeconds := int(aiDuration.Seconds()) % 60
				logger.Info(
					"AI Metrics",
					"input_tokens", metrics.InputTokens,
					"output_tokens", metrics.OutputTokens,
					"total_tokens", metrics.TotalTokens,
					"duration", fmt.Sprintf("%02d:%02d:%02d", aiHours, aiMinutes, aiSeconds),
				)

				processingDuration := time.Since(startTime)
				hours := int(processingDuration.Hours())
				minutes := int(processingDuration.Minutes()) % 60
				seconds := int(processingDuration.Seconds()) % 60
				logger.Info(
					"Processing time",
					"duration", fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds),
				)
				logger.Info("Waiting for next message")
				aiClient.ResetMetrics()
			}
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received, exiting...")
}

func handleProcessingError(ch *amqp.Channel, msg amqp.Delivery, queueName string) {
	retries := 0
	if val, ok := msg.Headers["x-retries"]; ok {
		if v, ok := val.(int32); ok {
			retries = int(v)
		}
	}

	// If message has been retried 10 times, send to dead-letter
	if retries >= 10 {
		dlqName := queueName + "_dlq"
		logger.Info("Sending message to DLQ", "dlq", dlqName)
		pubErr := ch.Publish(
			"",
			dlqName,
			false,
			false,
			amqp.Publishing{
				ContentType: "text/plain",
				Body:        msg.Body,
				Headers:     msg.Headers,
			},
		)
		if pubErr != nil {
			logger.Error("Failed to publish to DLQ", "dlq", dlqName, "err", pubErr)
			msg.Nack(false, true)
			return
		}
		msg.Ack(false)
		return
	}

	retryName := queueName + "_retry"
	headers := msg.Headers
	if headers == nil {
		headers = amqp.Table{}
	}
	headers["x-retries"] = retries + 1

	pubErr := ch.Publish(
		"",
		retryName,
		false,
		false,
		amqp.Publishing{
			ContentType: "text/plain",
			Body:        msg.Body,
			Headers:     headers,
		},
	)
	if pubErr != nil {
		logger.Error("Failed to publish to retry queue", "queue", retryName, "err", pubErr)
		msg.Nack(false, true)
		return
	}
	msg.Ack(false)
}
