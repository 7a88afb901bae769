package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"blog/app/events"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume post.published events",
	Long:  `Connects to RabbitMQ, binds the post.published queue and logs every event it receives.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := NewLogger(os.Stdout, cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return err
		}
		if cfg.RabbitMQ.URL == "" {
			return errors.New("rabbitmq.url is required")
		}

		conn, err := amqp.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		defer conn.Close()

		ch, err := conn.Channel()
		if err != nil {
			return fmt.Errorf("failed to open channel: %w", err)
		}
		defer ch.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		err = events.Consume(ctx, ch, "blog-worker", logger)
		logger.Info("worker shutting down")
		return err
	},
}
