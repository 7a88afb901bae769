package repositories

import (
	"bytes"
	"context"
	"testing"
	"time"

	"blog/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgerBackupRestore(t *testing.T) {
	ctx := context.Background()
	src := newBadgerRepo(t)

	post := &models.Post{
		Title:     "Backed up",
		Slug:      "backed-up",
		Author:    "ann",
		Content:   "safe",
		Published: true,
		CreatedAt: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, src.Create(ctx, post))

	var buf bytes.Buffer
	require.NoError(t, BackupTo(src, &buf))
	require.NotZero(t, buf.Len())

	dst := newBadgerRepo(t)
	require.NoError(t, RestoreFrom(dst, &buf))

	got, err := dst.GetBySlug(ctx, "backed-up")
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)
	assert.Equal(t, "Backed up", got.Title)

	// the id sequence travels with the backup
	next := &models.Post{Title: "Next", Slug: "next", Author: "ann", Content: "x", CreatedAt: post.CreatedAt}
	require.NoError(t, dst.Create(ctx, next))
	assert.Equal(t, post.ID+1, next.ID)
}

func TestBackupUnsupported(t *testing.T) {
	repo := newSQLiteRepo(t)

	assert.ErrorIs(t, BackupTo(repo, &bytes.Buffer{}), ErrBackupUnsupported)
	assert.ErrorIs(t, RestoreFrom(repo, &bytes.Buffer{}), ErrBackupUnsupported)
}
