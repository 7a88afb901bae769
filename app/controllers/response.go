package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// Renderer renders a named page.
type Renderer interface {
	Render(w io.Writer, page string, data any) error
}

// wantsJSON reports whether the client asked for JSON. The check is a plain
// substring match over every Accept header line.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(strings.Join(r.Header.Values("Accept"), ","), "application/json")
}

type errorBody struct {
	Code    string `json:"code"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func sendJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func sendError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	if wantsJSON(r) {
		sendJSON(w, status, errorBody{Code: code, Status: status, Message: message})
		return
	}
	http.Error(w, message, status)
}

// serverError logs err and answers 500 without leaking its text
func serverError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	logger.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	sendError(w, r, http.StatusInternalServerError, "internal_error", "Internal Server Error")
}

func render(w http.ResponseWriter, r *http.Request, logger *slog.Logger, templates Renderer, status int, page string, data any) {
	var buf bytes.Buffer
	if err := templates.Render(&buf, page, data); err != nil {
		serverError(w, r, logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
