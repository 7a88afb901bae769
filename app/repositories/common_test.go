package repositories

import (
	"testing"
	"time"

	"blog/app/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetNextID(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	defer db.Close()

	t.Run("first ID", func(t *testing.T) {
		err := db.Update(func(txn *badger.Txn) error {
			id, err := getNextID(txn, PostSeqKey)
			assert.NoError(t, err)
			assert.Equal(t, 1, id)
			return nil
		})
		assert.NoError(t, err)
	})

	t.Run("sequential IDs", func(t *testing.T) {
		err := db.Update(func(txn *badger.Txn) error {
			for i := 2; i <= 5; i++ {
				id, err := getNextID(txn, PostSeqKey)
				assert.NoError(t, err)
				assert.Equal(t, i, id)
			}
			return nil
		})
		assert.NoError(t, err)
	})

	t.Run("ids past one byte", func(t *testing.T) {
		err := db.Update(func(txn *badger.Txn) error {
			return txn.Set([]byte(PostSeqKey), encodeID(300))
		})
		require.NoError(t, err)
		err = db.Update(func(txn *badger.Txn) error {
			id, err := getNextID(txn, PostSeqKey)
			assert.NoError(t, err)
			assert.Equal(t, 301, id)
			return nil
		})
		assert.NoError(t, err)
	})
}

func TestMarshalEntity(t *testing.T) {
	post := &models.Post{ID: 1, Title: "Test Post", Slug: "test-post", CreatedAt: time.Now().UTC()}

	data, err := marshalEntity(post)
	require.NoError(t, err)

	var decoded models.Post
	require.NoError(t, unmarshalEntity(data, &decoded))
	assert.Equal(t, post.Title, decoded.Title)
	assert.True(t, post.CreatedAt.Equal(decoded.CreatedAt))

	assert.Error(t, unmarshalEntity([]byte("{bad json"), &decoded))
}

func TestCreatedRange(t *testing.T) {
	tests := []struct {
		name     string
		params   ListParams
		from, to string
		ok       bool
	}{
		{name: "no year", params: ListParams{Month: 3}},
		{name: "year", params: ListParams{Year: 2024}, from: "2024-01-01", to: "2025-01-01", ok: true},
		{name: "month", params: ListParams{Year: 2024, Month: 12}, from: "2024-12-01", to: "2025-01-01", ok: true},
		{name: "day", params: ListParams{Year: 2024, Month: 2, Day: 29}, from: "2024-02-29", to: "2024-03-01", ok: true},
		{name: "day without month", params: ListParams{Year: 2024, Day: 5}, from: "2024-01-01", to: "2025-01-01", ok: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to, ok := tt.params.CreatedRange()
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.from, from.Format(time.DateOnly))
				assert.Equal(t, tt.to, to.Format(time.DateOnly))
			}
		})
	}
}

func TestSortNewestFirst(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	posts := []*models.Post{
		{ID: 1, CreatedAt: at},
		{ID: 3, CreatedAt: at},
		{ID: 2, CreatedAt: at.Add(time.Minute)},
	}
	SortNewestFirst(posts)
	assert.Equal(t, []int{2, 3, 1}, []int{posts[0].ID, posts[1].ID, posts[2].ID})
}

func TestRebind(t *testing.T) {
	pg := &SQLPostRepository{dialect: dialectPostgres}
	lite := &SQLPostRepository{dialect: dialectSQLite}
	q := "SELECT * FROM posts WHERE a = ? AND b = ? LIMIT ?"

	assert.Equal(t, "SELECT * FROM posts WHERE a = $1 AND b = $2 LIMIT $3", pg.rebind(q))
	assert.Equal(t, q, lite.rebind(q))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\% \_done\\`, escapeLike(`100% _done\`))
}
