package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"blog/app/middleware"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicRoutes(t *testing.T) {
	app := setupTestApp(t, false)
	seedTestPosts(t, app.store, 12)

	t.Run("index shows five newest published", func(t *testing.T) {
		w := httptest.NewRecorder()
		app.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		for _, title := range []string{"Entry K", "Entry I", "Entry G", "Entry E", "Entry C"} {
			assert.Contains(t, body, title)
		}
		assert.NotContains(t, body, "Entry A<")
		assert.NotContains(t, body, "Entry L")
		assert.Less(t, strings.Index(body, "Entry K"), strings.Index(body, "Entry C"))
	})

	t.Run("post page", func(t *testing.T) {
		w := httptest.NewRecorder()
		app.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/posts/entry-a", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("draft is hidden", func(t *testing.T) {
		w := httptest.NewRecorder()
		app.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/posts/entry-b", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("health", func(t *testing.T) {
		w := httptest.NewRecorder()
		app.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"store":"ok"`)
	})

	t.Run("wrong method lists allowed ones", func(t *testing.T) {
		w := httptest.NewRecorder()
		app.handler.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.Equal(t, "GET, HEAD", w.Header().Get("Allow"))
	})

	t.Run("admin is not mounted without a password hash", func(t *testing.T) {
		w := httptest.NewRecorder()
		app.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/posts", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUnmatchedRoutes(t *testing.T) {
	app := setupTestApp(t, false)

	t.Run("json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/missing", nil)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-ID", "abc123")
		w := httptest.NewRecorder()

		app.handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t,
			`{"code":"not_found","status":404,"message":"Resource not found","path":"/missing","request_id":"abc123"}`,
			w.Body.String())
		assert.Equal(t, "abc123", w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("html", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/gone", nil)
		req.Header.Set("Accept", "text/html")
		w := httptest.NewRecorder()

		app.handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "<code>/gone</code>")
		assert.NotContains(t, w.Body.String(), "Request ID")
	})

	t.Run("logs one not-found record and one access record", func(t *testing.T) {
		app.logs.Reset()
		app.handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nothing-here", nil))

		var notFound, access int
		for _, line := range strings.Split(strings.TrimSpace(app.logs.String()), "\n") {
			var rec map[string]any
			require.NoError(t, json.Unmarshal([]byte(line), &rec))
			switch rec["msg"] {
			case "not found":
				notFound++
				assert.Equal(t, "/nothing-here", rec["path"])
			case "http request":
				access++
				assert.Equal(t, float64(http.StatusNotFound), rec["status"])
			}
		}
		assert.Equal(t, 1, notFound)
		assert.Equal(t, 1, access)
	})
}

func TestGeneratedRequestID(t *testing.T) {
	store := setupTestStore(t)
	handler := Setup(Config{Store: store, GenerateRequestIDs: true})

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	id := w.Header().Get(middleware.RequestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, id, body["request_id"])
}

func TestAdminRoutes(t *testing.T) {
	app := setupTestApp(t, true)

	do := func(method, target string, form url.Values, auth bool) *httptest.ResponseRecorder {
		var req *http.Request
		if form != nil {
			req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		} else {
			req = httptest.NewRequest(method, target, nil)
		}
		if auth {
			req.SetBasicAuth(testAdminUser, testAdminPassword)
		}
		w := httptest.NewRecorder()
		app.handler.ServeHTTP(w, req)
		return w
	}

	t.Run("requires credentials", func(t *testing.T) {
		w := do(http.MethodGet, "/admin/posts", nil, false)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("admin root redirects", func(t *testing.T) {
		w := do(http.MethodGet, "/admin", nil, true)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/admin/posts", w.Header().Get("Location"))
	})

	t.Run("create then publish appears on index", func(t *testing.T) {
		w := do(http.MethodPost, "/admin/posts", url.Values{
			"title":     {"Launch day"},
			"author":    {"ann"},
			"content":   {"We are live."},
			"published": {"on"},
		}, true)
		require.Equal(t, http.StatusSeeOther, w.Code)

		w = do(http.MethodGet, "/", nil, false)
		assert.Contains(t, w.Body.String(), `href="/posts/launch-day"`)

		w = do(http.MethodGet, "/admin/posts", nil, true)
		assert.Contains(t, w.Body.String(), "Launch day")
	})

	t.Run("edit and delete", func(t *testing.T) {
		w := do(http.MethodGet, "/admin/posts/1/edit", nil, true)
		require.Equal(t, http.StatusOK, w.Code)

		w = do(http.MethodPost, "/admin/posts/1/delete", nil, true)
		assert.Equal(t, http.StatusSeeOther, w.Code)

		w = do(http.MethodGet, "/posts/launch-day", nil, false)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("wrong method on admin path", func(t *testing.T) {
		w := do(http.MethodGet, "/admin/posts/1/delete", nil, true)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.Equal(t, "POST", w.Header().Get("Allow"))
	})
}
