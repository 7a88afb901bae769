package controllers

import (
	"context"
	"net/http"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Pinger is implemented by stores that can report their availability
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthController reports the state of the store and the message broker
type HealthController struct {
	store       Pinger
	rabbitMQURL string
	timeout     time.Duration
}

// NewHealthController creates a HealthController. An empty rabbitMQURL skips
// the broker check.
func NewHealthController(store Pinger, rabbitMQURL string) *HealthController {
	return &HealthController{store: store, rabbitMQURL: rabbitMQURL, timeout: 5 * time.Second}
}

// Check answers 200 when the store is reachable and 503 otherwise. An
// unreachable broker only degrades the status.
func (hc *HealthController) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), hc.timeout)
	defer cancel()

	checks := map[string]string{}
	status := "healthy"

	if err := hc.store.Ping(ctx); err != nil {
		checks["store"] = "unhealthy"
		status = "unhealthy"
	} else {
		checks["store"] = "ok"
	}

	if hc.rabbitMQURL != "" {
		conn, err := amqp.DialConfig(hc.rabbitMQURL, amqp.Config{Dial: amqp.DefaultDial(hc.timeout)})
		if err != nil {
			checks["rabbitmq"] = "unhealthy"
			if status == "healthy" {
				status = "degraded"
			}
		} else {
			_ = conn.Close()
			checks["rabbitmq"] = "ok"
		}
	} else {
		checks["rabbitmq"] = "skipped"
	}

	code := http.StatusOK
	if status == "unhealthy" {
		code = http.StatusServiceUnavailable
	}
	sendJSON(w, code, healthResponse{Status: status, Checks: checks})
}
