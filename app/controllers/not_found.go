package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"net"
	"net/http"
	"strings"

	"blog/app/middleware"
	"blog/app/views"
)

// InfoLogger is the only logging capability the not-found handler needs.
// *slog.Logger satisfies it.
type InfoLogger interface {
	Info(msg string, args ...any)
}

// NotFoundPage is the data handed to the 404 template. RequestID may be empty.
type NotFoundPage struct {
	RequestPath string
	RequestID   string
}

// notFoundBody field order is part of the wire format.
type notFoundBody struct {
	Code      string `json:"code"`
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Path      string `json:"path"`
	RequestID string `json:"request_id,omitempty"`
}

// Response is a complete HTTP response ready to be sent.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Send copies the response onto w.
func (resp Response) Send(w http.ResponseWriter) {
	for k, vs := range resp.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}

// NotFoundHandler answers every unmatched request with a 404, as JSON for
// clients whose Accept header mentions application/json and as an HTML page
// otherwise. Each call logs exactly one diagnostic record.
type NotFoundHandler struct {
	logger    InfoLogger
	templates Renderer
}

// NewNotFoundHandler creates a NotFoundHandler. Both arguments may be nil: a
// nil logger skips the diagnostic record and a nil renderer always uses the
// built-in page.
func NewNotFoundHandler(logger InfoLogger, templates Renderer) *NotFoundHandler {
	return &NotFoundHandler{logger: logger, templates: templates}
}

func (h *NotFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.Respond(r).Send(w)
}

// Respond builds the 404 response for r.
func (h *NotFoundHandler) Respond(r *http.Request) Response {
	path := r.URL.Path
	requestID := middleware.ExtractRequestID(r.Header)
	if requestID == "" {
		requestID = middleware.GetRequestID(r.Context())
	}

	h.logDiagnostics(r, path, requestID)

	if wantsJSON(r) {
		return jsonNotFound(path, requestID)
	}
	return h.htmlNotFound(path, requestID)
}

func (h *NotFoundHandler) logDiagnostics(r *http.Request, path, requestID string) {
	if h.logger == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	id := requestID
	if id == "" {
		id = "-"
	}
	h.logger.Info("not found",
		"path", path,
		"remote_addr", remoteHost(r.RemoteAddr),
		"user_agent", r.UserAgent(),
		"request_id", id,
	)
}

func jsonNotFound(path, requestID string) Response {
	body, err := json.Marshal(notFoundBody{
		Code:      "not_found",
		Status:    http.StatusNotFound,
		Message:   "Resource not found",
		Path:      path,
		RequestID: requestID,
	})
	if err != nil {
		// Only strings and an int are marshalled, so this cannot happen.
		body = []byte(`{"code":"not_found","status":404,"message":"Resource not found"}`)
	}
	return Response{
		Status: http.StatusNotFound,
		Header: http.Header{"Content-Type": {"application/json"}},
		Body:   body,
	}
}

func (h *NotFoundHandler) htmlNotFound(path, requestID string) Response {
	resp := Response{
		Status: http.StatusNotFound,
		Header: http.Header{"Content-Type": {"text/html; charset=utf-8"}},
	}
	if h.templates != nil {
		var buf bytes.Buffer
		err := h.templates.Render(&buf, views.PageNotFound, NotFoundPage{
			RequestPath: path,
			RequestID:   requestID,
		})
		if err == nil {
			resp.Body = buf.Bytes()
			return resp
		}
	}
	resp.Body = []byte(fallbackNotFoundPage(path, requestID))
	return resp
}

func fallbackNotFoundPage(path, requestID string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><title>Page not found</title></head><body>\n")
	b.WriteString("<h1>Page not found</h1>\n")
	fmt.Fprintf(&b, "<p>The page <code>%s</code> does not exist.</p>\n", html.EscapeString(path))
	if requestID != "" {
		fmt.Fprintf(&b, "<p>Request ID: <code>%s</code></p>\n", html.EscapeString(requestID))
	}
	b.WriteString("</body></html>\n")
	return b.String()
}

func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
