package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blog/app/config"
	"blog/app/events"
	"blog/app/repositories"
	"blog/app/routes"
	"blog/app/services"
	"blog/app/views"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := NewLogger(os.Stdout, cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg, logger)
	},
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store, err := repositories.Open(ctx, repositories.Options{
		Driver: cfg.DB.Driver,
		Path:   cfg.DB.Path,
		DSN:    cfg.DB.DSN,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close store", "error", err)
		}
	}()

	publisher := newPublisher(cfg.RabbitMQ.URL, logger)
	if closer, ok := publisher.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	templates, err := views.Load(cfg.Templates.Dir)
	if err != nil {
		return err
	}

	handler := routes.Setup(routes.Config{
		Posts:              services.NewPostService(store, publisher, logger),
		Store:              store,
		Templates:          templates,
		Logger:             logger,
		IndexLimit:         cfg.Index.Limit,
		GenerateRequestIDs: cfg.RequestID.Generate,
		RabbitMQURL:        cfg.RabbitMQ.URL,
		AdminUsername:      cfg.Admin.Username,
		AdminPasswordHash:  cfg.Admin.PasswordHash,
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", "addr", cfg.Addr, "db_driver", cfg.DB.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newPublisher connects to RabbitMQ when a URL is configured. A broker that
// is down at startup only disables events; posts can still be written.
func newPublisher(url string, logger *slog.Logger) events.Publisher {
	if url == "" {
		return events.NoopPublisher{}
	}
	publisher, err := events.NewRabbitMQPublisher(url)
	if err != nil {
		logger.Warn("rabbitmq unavailable, post.published events disabled", "error", err)
		return events.NoopPublisher{}
	}
	return publisher
}
