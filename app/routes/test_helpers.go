package routes

import (
	"bytes"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"blog/app/models"
	"blog/app/repositories"
	"blog/app/services"
	"blog/app/views"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testAdminUser     = "editor"
	testAdminPassword = "correct horse"
)

type testApp struct {
	handler http.Handler
	store   repositories.PostRepository
	logs    *bytes.Buffer
}

func setupTestStore(t *testing.T) repositories.PostRepository {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	repo := repositories.NewBadgerPostRepository(db)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func setupTestApp(t *testing.T, withAdmin bool) *testApp {
	t.Helper()
	store := setupTestStore(t)
	tmpl, err := views.Load("")
	require.NoError(t, err)

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	cfg := Config{
		Posts:         services.NewPostService(store, nil, logger),
		Store:         store,
		Templates:     tmpl,
		Logger:        logger,
		AdminUsername: testAdminUser,
	}
	if withAdmin {
		hash, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.MinCost)
		require.NoError(t, err)
		cfg.AdminPasswordHash = string(hash)
	}

	return &testApp{handler: Setup(cfg), store: store, logs: &logs}
}

// seedTestPosts stores n posts one hour apart; every second one is a draft.
func seedTestPosts(t *testing.T, store repositories.PostRepository, n int) {
	t.Helper()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i := 1; i <= n; i++ {
		post := &models.Post{
			Title:     "Entry " + string(rune('A'+i-1)),
			Slug:      "entry-" + string(rune('a'+i-1)),
			Author:    "ann",
			Content:   "body of entry",
			Published: i%2 == 1,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
			UpdatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, store.Create(t.Context(), post))
	}
}
