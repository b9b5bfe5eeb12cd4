// Package catalog provides the transactional catalog store (C3): the single
// source of truth mapping (tag, path) to content hash, and the planner that
// turns a fresh directory walk into a minimal set of sub-index mutations.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // pure Go SQLite driver
)

// ArtifactKind identifies which sub-index a Tag partitions.
type ArtifactKind string

const (
	ArtifactChunks      ArtifactKind = "chunks"
	ArtifactEmbeddings  ArtifactKind = "embeddings"
	ArtifactLexical     ArtifactKind = "lexical"
	ArtifactGlobalCache ArtifactKind = "globalCache"
)

// Tag identifies an index partition: a (directory, branch, artifactKind) triple.
type Tag struct {
	Directory string
	Branch    string
	Artifact  ArtifactKind
}

// DirEscaped returns Directory with path-hostile characters replaced, suitable
// for use as a filesystem path segment (see persisted state layout).
func (t Tag) DirEscaped() string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", " ", "_")
	return r.Replace(t.Directory)
}

// Item is one (path, cacheKey) pair produced by Plan or consumed by MarkComplete.
type Item struct {
	Path     string
	CacheKey string
}

// Kind enumerates the four-way planner outputs plus the lastUpdated-only refresh.
type Kind string

const (
	KindCompute           Kind = "compute"
	KindAddTag            Kind = "addTag"
	KindRemoveTag         Kind = "removeTag"
	KindDel               Kind = "del"
	KindUpdateLastUpdated Kind = "updateLastUpdated"
)

// Plan is the output of Store.Plan: a pure function of catalog state and the
// current directory listing. Applying MarkComplete for each non-empty field
// (after the corresponding sub-indexer has durably written or removed its
// artifacts) brings the catalog back in sync with the filesystem.
type Plan struct {
	Compute   []Item // new content, never seen under this artifactKind
	Del       []Item // content removed and no longer referenced by any tag
	AddTag    []Item // content already present under another tag; reuse artifacts
	RemoveTag []Item // tag no longer applies, but content is still referenced elsewhere
	Stale     []Item // content unchanged; only lastUpdated needs bumping
}

// ReadFile reads the full contents of a file at path for hashing.
type ReadFile func(path string) ([]byte, error)

// Store is the transactional catalog store backed by SQLite (WAL mode).
type Store struct {
	db *sql.DB
}

// Open opens (and if necessary initializes) the catalog database at path.
// path may be ":memory:" for a purely in-process catalog.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	// :memory: databases must be pinned to a single connection, or the
	// pool hands out separate empty databases to different goroutines.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init catalog schema: %w", err)
	}
	return s, nil
}

func (s *Store) init() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("pragma %q: %w", p, err)
		}
	}

	schema := `
	CREATE TABLE IF NOT EXISTS tag_catalog (
		dir          TEXT NOT NULL,
		branch       TEXT NOT NULL,
		artifact_id  TEXT NOT NULL,
		path         TEXT NOT NULL,
		cache_key    TEXT NOT NULL,
		last_updated INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS global_cache (
		cache_key   TEXT NOT NULL,
		dir         TEXT NOT NULL,
		branch      TEXT NOT NULL,
		artifact_id TEXT NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}

	// Defensive cleanup: earlier corrupt states (crash mid-write, a schema
	// without these constraints) may have left duplicate rows behind.
	// Keep the most recently written row per key before the unique index
	// is (re-)established.
	dedupe := []string{
		`DELETE FROM tag_catalog
		 WHERE rowid NOT IN (
			SELECT MAX(rowid) FROM tag_catalog
			GROUP BY dir, branch, artifact_id, path
		 )`,
		`DELETE FROM global_cache
		 WHERE rowid NOT IN (
			SELECT MAX(rowid) FROM global_cache
			GROUP BY cache_key, dir, branch, artifact_id
		 )`,
	}
	for _, d := range dedupe {
		if _, err := s.db.Exec(d); err != nil {
			return fmt.Errorf("dedupe: %w", err)
		}
	}

	indexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_tag_catalog_key
			ON tag_catalog(dir, branch, artifact_id, path)`,
		`CREATE INDEX IF NOT EXISTS idx_tag_catalog_cachekey
			ON tag_catalog(cache_key)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_global_cache_key
			ON global_cache(cache_key, dir, branch, artifact_id)`,
		`CREATE INDEX IF NOT EXISTS idx_global_cache_cachekey
			ON global_cache(cache_key)`,
	}
	for _, idx := range indexes {
		if _, err := s.db.Exec(idx); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}

	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

type catalogRow struct {
	cacheKey    string
	lastUpdated time.Time
}

// Plan computes the minimal set of mutations needed to reconcile the catalog
// under tag with currentFiles (path -> last-modified). Plan never mutates
// state; readFile is only used to hash files whose mtime moved forward, or
// that are new to the catalog.
func (s *Store) Plan(ctx context.Context, tag Tag, currentFiles map[string]time.Time, readFile ReadFile) (*Plan, error) {
	existing, err := s.loadTagRows(ctx, tag)
	if err != nil {
		return nil, fmt.Errorf("load tag rows: %w", err)
	}

	plan := &Plan{}
	var pendingAddOrUpdateNew []Item
	var pendingRemoveOrUpdateOld []Item

	for path, row := range existing {
		mtime, present := currentFiles[path]
		if !present {
			pendingRemoveOrUpdateOld = append(pendingRemoveOrUpdateOld, Item{Path: path, CacheKey: row.cacheKey})
			continue
		}

		// Equal timestamps are treated as "no change" (open question,
		// resolved in DESIGN.md): only a strictly newer mtime triggers
		// a re-hash.
		if !mtime.After(row.lastUpdated) {
			continue
		}

		content, err := readFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		newHash := sha256Hex(content)
		if newHash != row.cacheKey {
			pendingAddOrUpdateNew = append(pendingAddOrUpdateNew, Item{Path: path, CacheKey: newHash})
			pendingRemoveOrUpdateOld = append(pendingRemoveOrUpdateOld, Item{Path: path, CacheKey: row.cacheKey})
		} else {
			plan.Stale = append(plan.Stale, Item{Path: path, CacheKey: row.cacheKey})
		}
	}

	for path, mtime := range currentFiles {
		_ = mtime
		if _, ok := existing[path]; ok {
			continue
		}
		content, err := readFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		pendingAddOrUpdateNew = append(pendingAddOrUpdateNew, Item{Path: path, CacheKey: sha256Hex(content)})
	}

	for _, item := range pendingAddOrUpdateNew {
		known, err := s.globalCacheHasAny(ctx, item.CacheKey, tag.Artifact)
		if err != nil {
			return nil, err
		}
		if known {
			plan.AddTag = append(plan.AddTag, item)
		} else {
			plan.Compute = append(plan.Compute, item)
		}
	}

	// A cacheKey that this same plan re-adds under another path (a rename
	// without content change) stays referenced once the plan is applied.
	readded := make(map[string]bool, len(pendingAddOrUpdateNew))
	for _, item := range pendingAddOrUpdateNew {
		readded[item.CacheKey] = true
	}

	for _, item := range pendingRemoveOrUpdateOld {
		if readded[item.CacheKey] {
			plan.RemoveTag = append(plan.RemoveTag, item)
			continue
		}
		referencedElsewhere, err := s.globalCacheHasOther(ctx, item.CacheKey, tag)
		if err != nil {
			return nil, err
		}
		if referencedElsewhere {
			plan.RemoveTag = append(plan.RemoveTag, item)
		} else {
			plan.Del = append(plan.Del, item)
		}
	}

	return plan, nil
}

func (s *Store) loadTagRows(ctx context.Context, tag Tag) (map[string]catalogRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, cache_key, last_updated FROM tag_catalog WHERE dir = ? AND branch = ? AND artifact_id = ?`,
		tag.Directory, tag.Branch, string(tag.Artifact),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]catalogRow)
	for rows.Next() {
		var path, cacheKey string
		var lastUpdated int64
		if err := rows.Scan(&path, &cacheKey, &lastUpdated); err != nil {
			return nil, err
		}
		out[path] = catalogRow{cacheKey: cacheKey, lastUpdated: time.Unix(0, lastUpdated)}
	}
	return out, rows.Err()
}

func (s *Store) globalCacheHasAny(ctx context.Context, cacheKey string, artifact ArtifactKind) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM global_cache WHERE cache_key = ? AND artifact_id = ?)`,
		cacheKey, string(artifact),
	).Scan(&exists)
	return exists == 1, err
}

func (s *Store) globalCacheHasOther(ctx context.Context, cacheKey string, tag Tag) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM global_cache
			WHERE cache_key = ? AND artifact_id = ?
			  AND NOT (dir = ? AND branch = ?)
		)`,
		cacheKey, string(tag.Artifact), tag.Directory, tag.Branch,
	).Scan(&exists)
	return exists == 1, err
}

// MarkComplete applies the result of a sub-indexer run to the catalog and the
// global cache, atomically, after the sub-indexer has durably written or
// removed the corresponding artifacts. It is idempotent: replaying the same
// (items, kind) is a no-op on a catalog already reflecting it.
func (s *Store) MarkComplete(ctx context.Context, tag Tag, items []Item, kind Kind) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UnixNano()

	for _, item := range items {
		switch kind {
		case KindCompute, KindAddTag:
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO tag_catalog (dir, branch, artifact_id, path, cache_key, last_updated)
				 VALUES (?, ?, ?, ?, ?, ?)
				 ON CONFLICT(dir, branch, artifact_id, path) DO UPDATE SET
					cache_key = excluded.cache_key,
					last_updated = excluded.last_updated`,
				tag.Directory, tag.Branch, string(tag.Artifact), item.Path, item.CacheKey, now,
			); err != nil {
				return fmt.Errorf("upsert tag_catalog: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO global_cache (cache_key, dir, branch, artifact_id) VALUES (?, ?, ?, ?)`,
				item.CacheKey, tag.Directory, tag.Branch, string(tag.Artifact),
			); err != nil {
				return fmt.Errorf("insert global_cache: %w", err)
			}

		case KindRemoveTag, KindDel:
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM tag_catalog WHERE dir = ? AND branch = ? AND artifact_id = ? AND path = ?`,
				tag.Directory, tag.Branch, string(tag.Artifact), item.Path,
			); err != nil {
				return fmt.Errorf("delete tag_catalog: %w", err)
			}

			var remaining int
			if err := tx.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM tag_catalog WHERE dir = ? AND branch = ? AND artifact_id = ? AND cache_key = ?`,
				tag.Directory, tag.Branch, string(tag.Artifact), item.CacheKey,
			).Scan(&remaining); err != nil {
				return fmt.Errorf("count remaining: %w", err)
			}
			if remaining == 0 {
				if _, err := tx.ExecContext(ctx,
					`DELETE FROM global_cache WHERE cache_key = ? AND dir = ? AND branch = ? AND artifact_id = ?`,
					item.CacheKey, tag.Directory, tag.Branch, string(tag.Artifact),
				); err != nil {
					return fmt.Errorf("delete global_cache: %w", err)
				}
			}

		case KindUpdateLastUpdated:
			if _, err := tx.ExecContext(ctx,
				`UPDATE tag_catalog SET last_updated = ? WHERE dir = ? AND branch = ? AND artifact_id = ? AND path = ? AND cache_key = ?`,
				now, tag.Directory, tag.Branch, string(tag.Artifact), item.Path, item.CacheKey,
			); err != nil {
				return fmt.Errorf("update last_updated: %w", err)
			}

		default:
			return fmt.Errorf("unknown mutation kind %q", kind)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// TagsForCacheKey returns every tag currently referencing cacheKey, used by
// query-time tag filtering in the embedding and lexical indexes.
func (s *Store) TagsForCacheKey(ctx context.Context, cacheKey string) ([]Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT dir, branch, artifact_id FROM global_cache WHERE cache_key = ?`, cacheKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		var artifact string
		if err := rows.Scan(&t.Directory, &t.Branch, &artifact); err != nil {
			return nil, err
		}
		t.Artifact = ArtifactKind(artifact)
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// Entries returns every (path, cacheKey) currently recorded for tag, used by
// the merkle builder and tests to assert catalog/filesystem parity.
func (s *Store) Entries(ctx context.Context, tag Tag) (map[string]string, error) {
	rows, err := s.loadTagRows(ctx, tag)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for path, row := range rows {
		out[path] = row.cacheKey
	}
	return out, nil
}
