package lexical

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestUpsertAndSearch(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, []Posting{
		{CacheKey: "aaa", ChunkIndex: 0, FilePath: "a.go", StartLine: 1, EndLine: 3, Content: "func ParseConfig reads yaml settings"},
		{CacheKey: "bbb", ChunkIndex: 0, FilePath: "b.go", StartLine: 1, EndLine: 3, Content: "func main starts the server"},
	}))

	results, err := idx.Search(ctx, "ParseConfig", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "a.go", results[0].Posting.FilePath)
}

func TestDeleteRemovesPostings(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, []Posting{
		{CacheKey: "aaa", ChunkIndex: 0, FilePath: "a.go", Content: "unique_token_xyz"},
	}))
	results, err := idx.Search(ctx, "unique_token_xyz", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	require.NoError(t, idx.Delete(ctx, "aaa"))
	results, err = idx.Search(ctx, "unique_token_xyz", 10)
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestUpsert_IsIdempotent(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()
	posting := Posting{CacheKey: "aaa", ChunkIndex: 0, FilePath: "a.go", Content: "hello world"}

	require.NoError(t, idx.Upsert(ctx, []Posting{posting}))
	require.NoError(t, idx.Upsert(ctx, []Posting{posting}))

	results, err := idx.Search(ctx, "hello", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestSearch_EmptyQueryErrors(t *testing.T) {
	idx := newTestIndex(t)
	_, err := idx.Search(context.Background(), "  ", 10)
	require.Error(t, err)
}

func TestSearch_RespectsLimit(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	var postings []Posting
	for i := 0; i < 5; i++ {
		postings = append(postings, Posting{CacheKey: "k", ChunkIndex: i, FilePath: "f.go", Content: "shared_keyword text"})
	}
	require.NoError(t, idx.Upsert(ctx, postings))

	results, err := idx.Search(ctx, "shared_keyword", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
}
