// Package lexical implements the Lexical Index (C6): a per-(dir, branch)
// inverted index over chunk content, queried with BM25 ranking. Grounded on
// internal/vectorstore/sqlite/fts5.go's FTS5 query construction and BM25
// ranking conventions, repurposed into a standalone index keyed by
// (cacheKey, chunkIndex) instead of being folded into the vector store's own
// documents table.
package lexical

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// Posting identifies one chunk of content in the lexical index.
type Posting struct {
	CacheKey   string
	ChunkIndex int
	FilePath   string
	StartLine  int
	EndLine    int
	Content    string
}

// Result is a single BM25-ranked hit.
type Result struct {
	Posting Posting
	Score   float32 // normalized to [0, 1], higher is better
}

// Index is a per-(dir, branch) SQLite FTS5 lexical index.
type Index struct {
	db *sql.DB
}

// Open opens (and initializes) the lexical index database at path.
func Open(path string) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open lexical index: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	idx := &Index{db: db}
	if err := idx.init(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init lexical schema: %w", err)
	}
	return idx, nil
}

func (idx *Index) init() error {
	stmts := []string{
		"PRAGMA journal_mode=WAL",
		`CREATE TABLE IF NOT EXISTS postings (
			cache_key   TEXT NOT NULL,
			chunk_index INTEGER NOT NULL,
			file_path   TEXT NOT NULL,
			start_line  INTEGER NOT NULL,
			end_line    INTEGER NOT NULL,
			content     TEXT NOT NULL,
			PRIMARY KEY (cache_key, chunk_index)
		)`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS postings_fts USING fts5(
			content,
			content='postings',
			content_rowid='rowid'
		)`,
		`CREATE TRIGGER IF NOT EXISTS postings_ai AFTER INSERT ON postings BEGIN
			INSERT INTO postings_fts(rowid, content) VALUES (new.rowid, new.content);
		END`,
		`CREATE TRIGGER IF NOT EXISTS postings_ad AFTER DELETE ON postings BEGIN
			INSERT INTO postings_fts(postings_fts, rowid, content) VALUES('delete', old.rowid, old.content);
		END`,
		`CREATE TRIGGER IF NOT EXISTS postings_au AFTER UPDATE ON postings BEGIN
			INSERT INTO postings_fts(postings_fts, rowid, content) VALUES('delete', old.rowid, old.content);
			INSERT INTO postings_fts(rowid, content) VALUES (new.rowid, new.content);
		END`,
	}
	for _, stmt := range stmts {
		if _, err := idx.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt, err)
		}
	}
	return nil
}

// Close releases the underlying database handle.
func (idx *Index) Close() error { return idx.db.Close() }

// Upsert inserts or replaces the postings for a cacheKey (all of a file's
// chunks are written together, matching the per-cacheKey artifact-inventory
// invariant of spec.md §3).
func (idx *Index) Upsert(ctx context.Context, postings []Posting) error {
	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, p := range postings {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO postings (cache_key, chunk_index, file_path, start_line, end_line, content)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(cache_key, chunk_index) DO UPDATE SET
				file_path = excluded.file_path,
				start_line = excluded.start_line,
				end_line = excluded.end_line,
				content = excluded.content`,
			p.CacheKey, p.ChunkIndex, p.FilePath, p.StartLine, p.EndLine, p.Content,
		); err != nil {
			return fmt.Errorf("upsert posting %s#%d: %w", p.CacheKey, p.ChunkIndex, err)
		}
	}
	return tx.Commit()
}

// ChunkIndicesForCacheKey returns every chunkIndex currently stored for
// cacheKey, used by the embedding sub-index to derive the deterministic
// vector-store document IDs (cacheKey#chunkIndex) of content being deleted,
// since the original file content (and thus its chunk boundaries) is no
// longer available once the file itself is gone.
func (idx *Index) ChunkIndicesForCacheKey(ctx context.Context, cacheKey string) ([]int, error) {
	rows, err := idx.db.QueryContext(ctx, `SELECT chunk_index FROM postings WHERE cache_key = ?`, cacheKey)
	if err != nil {
		return nil, fmt.Errorf("query chunk indices for %s: %w", cacheKey, err)
	}
	defer rows.Close()

	var indices []int
	for rows.Next() {
		var i int
		if err := rows.Scan(&i); err != nil {
			return nil, err
		}
		indices = append(indices, i)
	}
	return indices, rows.Err()
}

// Delete removes every posting for cacheKey.
func (idx *Index) Delete(ctx context.Context, cacheKey string) error {
	_, err := idx.db.ExecContext(ctx, `DELETE FROM postings WHERE cache_key = ?`, cacheKey)
	if err != nil {
		return fmt.Errorf("delete postings for %s: %w", cacheKey, err)
	}
	return nil
}

// Search performs a BM25-ranked lexical search, returning up to limit
// results sorted by descending score.
func (idx *Index) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("lexical search query cannot be empty")
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := idx.db.QueryContext(ctx,
		`SELECT p.cache_key, p.chunk_index, p.file_path, p.start_line, p.end_line, p.content, bm25(postings_fts) AS rank
		 FROM postings_fts
		 JOIN postings p ON p.rowid = postings_fts.rowid
		 WHERE postings_fts MATCH ?
		 ORDER BY rank
		 LIMIT ?`,
		escapeFTS5Query(query), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var p Posting
		var rank float32
		if err := rows.Scan(&p.CacheKey, &p.ChunkIndex, &p.FilePath, &p.StartLine, &p.EndLine, &p.Content, &rank); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, Result{Posting: p, Score: normalizeRank(rank)})
	}
	return results, rows.Err()
}

// escapeFTS5Query quotes each term so punctuation in source code (dots,
// underscores, asterisks) doesn't collide with FTS5 query syntax, following
// the escaping convention of the vector store's own FTS5 query builder.
func escapeFTS5Query(query string) string {
	fields := strings.Fields(query)
	quoted := make([]string, 0, len(fields))
	for _, f := range fields {
		escaped := strings.ReplaceAll(f, `"`, `""`)
		quoted = append(quoted, fmt.Sprintf(`"%s"`, escaped))
	}
	return strings.Join(quoted, " ")
}

// normalizeRank maps SQLite FTS5's bm25() output (negative, lower is
// better) onto [0, 1] where higher is better, matching the vector store's
// own normalizeRank convention.
func normalizeRank(rank float32) float32 {
	if rank >= 0 {
		return 0
	}
	score := -rank / (1 - rank)
	if score > 1 {
		score = 1
	}
	return score
}
