package refresh

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ferg-cod3s/conexus-index/internal/catalog"
	"github.com/ferg-cod3s/conexus-index/internal/indexer"
	"github.com/ferg-cod3s/conexus-index/internal/lexical"
	"github.com/ferg-cod3s/conexus-index/internal/vectorstore"
)

func fsReadFile(path string) ([]byte, error) { return os.ReadFile(path) } // #nosec G304 - path built from the walked root, not user input

// applyPlan applies one sub-index's catalog plan, then records the outcome
// back into the catalog with MarkComplete, serialized per (tag, sub-index).
func (o *Orchestrator) applyPlan(ctx context.Context, tag catalog.Tag, plan *catalog.Plan, chunksByCacheKey map[string][]indexer.Chunk, readFile catalog.ReadFile) error {
	lock := o.markCompleteLock(tag)

	var apply func(ctx context.Context, items []catalog.Item) error
	var phase string

	switch tag.Artifact {
	case catalog.ArtifactChunks:
		phase = PhaseChunking
		apply = func(ctx context.Context, items []catalog.Item) error {
			return o.computeChunks(items, chunksByCacheKey, readFile)
		}
	case catalog.ArtifactEmbeddings:
		phase = PhaseEmbedding
		apply = func(ctx context.Context, items []catalog.Item) error {
			return o.computeEmbeddings(ctx, items, chunksByCacheKey, readFile)
		}
	case catalog.ArtifactLexical:
		phase = PhaseLexical
		apply = func(ctx context.Context, items []catalog.Item) error {
			return o.computeLexical(ctx, items, chunksByCacheKey, readFile)
		}
	default:
		return fmt.Errorf("unknown artifact kind %q", tag.Artifact)
	}

	total := len(plan.Compute) + len(plan.AddTag) + len(plan.RemoveTag) + len(plan.Del) + len(plan.Stale)
	o.emit(ProgressEvent{Tag: tag, SubIndex: tag.Artifact, Phase: phase, TotalFiles: total})

	if len(plan.Compute) > 0 {
		if err := apply(ctx, plan.Compute); err != nil {
			return fmt.Errorf("compute: %w", err)
		}
	}

	if err := o.deleteArtifacts(ctx, tag, plan.Del); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	lock.Lock()
	defer lock.Unlock()

	if err := o.Catalog.MarkComplete(ctx, tag, plan.Compute, catalog.KindCompute); err != nil {
		return err
	}
	if err := o.Catalog.MarkComplete(ctx, tag, plan.AddTag, catalog.KindAddTag); err != nil {
		return err
	}
	if err := o.Catalog.MarkComplete(ctx, tag, plan.RemoveTag, catalog.KindRemoveTag); err != nil {
		return err
	}
	if err := o.Catalog.MarkComplete(ctx, tag, plan.Del, catalog.KindDel); err != nil {
		return err
	}
	if err := o.Catalog.MarkComplete(ctx, tag, plan.Stale, catalog.KindUpdateLastUpdated); err != nil {
		return err
	}
	return nil
}

// getChunks returns the chunks for item, chunking the file directly if the
// chunks sub-index hasn't already populated chunksByCacheKey for this
// cacheKey this refresh (e.g. the embeddings plan computes a cacheKey whose
// content was already chunked under a different tag in a prior refresh).
func (o *Orchestrator) getChunks(item catalog.Item, chunksByCacheKey map[string][]indexer.Chunk, readFile catalog.ReadFile) ([]indexer.Chunk, error) {
	if chunks, ok := chunksByCacheKey[item.CacheKey]; ok {
		return chunks, nil
	}
	content, err := readFile(item.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", item.Path, err)
	}
	chunks, err := o.chunkFile(item.Path, content)
	if err != nil {
		return nil, err
	}
	chunksByCacheKey[item.CacheKey] = chunks
	return chunks, nil
}

func (o *Orchestrator) chunkFile(path string, content []byte) ([]indexer.Chunk, error) {
	ext := filepath.Ext(path)
	for _, c := range o.Chunkers {
		if c.Supports(ext) {
			return c.Chunk(context.Background(), string(content), path)
		}
	}
	return nil, nil
}

func (o *Orchestrator) computeChunks(items []catalog.Item, chunksByCacheKey map[string][]indexer.Chunk, readFile catalog.ReadFile) error {
	for _, item := range items {
		content, err := readFile(item.Path)
		if err != nil {
			return fmt.Errorf("read %s: %w", item.Path, err)
		}
		chunks, err := o.chunkFile(item.Path, content)
		if err != nil {
			return fmt.Errorf("chunk %s: %w", item.Path, err)
		}
		chunksByCacheKey[item.CacheKey] = chunks
	}
	return nil
}

func (o *Orchestrator) computeEmbeddings(ctx context.Context, items []catalog.Item, chunksByCacheKey map[string][]indexer.Chunk, readFile catalog.ReadFile) error {
	if o.Batcher == nil || o.Vectors == nil {
		return nil
	}

	if o.Limiter != nil {
		release, err := o.Limiter.Acquire(ctx, "embeddings")
		if err != nil {
			return fmt.Errorf("acquire provider slot: %w", err)
		}
		defer release()
	}

	for _, item := range items {
		chunks, err := o.getChunks(item, chunksByCacheKey, readFile)
		if err != nil {
			return err
		}
		if len(chunks) == 0 {
			continue
		}

		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Content
		}

		embeddings, err := o.Batcher.EmbedAll(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed %s: %w", item.Path, err)
		}

		docs := make([]vectorstore.Document, 0, len(chunks))
		for i, chunk := range chunks {
			var vec []float32
			if i < len(embeddings) && embeddings[i] != nil {
				vec = embeddings[i].Vector
			}
			docs = append(docs, chunkDocument(item.CacheKey, i, chunk, vec))
		}
		if err := o.Vectors.UpsertBatch(ctx, docs); err != nil {
			return fmt.Errorf("store vectors for %s: %w", item.Path, err)
		}
	}
	return nil
}

func (o *Orchestrator) computeLexical(ctx context.Context, items []catalog.Item, chunksByCacheKey map[string][]indexer.Chunk, readFile catalog.ReadFile) error {
	if o.Lexical == nil {
		return nil
	}
	for _, item := range items {
		chunks, err := o.getChunks(item, chunksByCacheKey, readFile)
		if err != nil {
			return err
		}
		if len(chunks) == 0 {
			continue
		}
		postings := make([]lexical.Posting, len(chunks))
		for i, chunk := range chunks {
			postings[i] = lexical.Posting{
				CacheKey:   item.CacheKey,
				ChunkIndex: i,
				FilePath:   chunk.FilePath,
				StartLine:  chunk.StartLine,
				EndLine:    chunk.EndLine,
				Content:    chunk.Content,
			}
		}
		if err := o.Lexical.Upsert(ctx, postings); err != nil {
			return fmt.Errorf("index %s: %w", item.Path, err)
		}
	}
	return nil
}

// deleteArtifacts removes the sub-index artifacts for content the catalog
// plan says is gone entirely (plan.Del, as opposed to plan.RemoveTag, which
// leaves the shared artifacts in place for the tags still referencing them).
func (o *Orchestrator) deleteArtifacts(ctx context.Context, tag catalog.Tag, items []catalog.Item) error {
	for _, item := range items {
		switch tag.Artifact {
		case catalog.ArtifactEmbeddings:
			if o.Vectors == nil || o.Lexical == nil {
				continue
			}
			indices, err := o.Lexical.ChunkIndicesForCacheKey(ctx, item.CacheKey)
			if err != nil {
				return fmt.Errorf("look up chunk indices for %s: %w", item.CacheKey, err)
			}
			for _, i := range indices {
				if err := o.Vectors.Delete(ctx, fmt.Sprintf("%s#%d", item.CacheKey, i)); err != nil {
					return fmt.Errorf("delete vector %s#%d: %w", item.CacheKey, i, err)
				}
			}
		case catalog.ArtifactLexical:
			if o.Lexical == nil {
				continue
			}
			if err := o.Lexical.Delete(ctx, item.CacheKey); err != nil {
				return fmt.Errorf("delete lexical postings for %s: %w", item.CacheKey, err)
			}
		case catalog.ArtifactChunks:
			// Chunks have no standalone physical store beyond the in-memory
			// map for this refresh; nothing to delete.
		}
	}
	return nil
}

// chunkDocument builds the vectorstore.Document for chunk i of cacheKey,
// using a deterministic (cacheKey, chunkIndex) ID rather than the chunker's
// own content-position-derived Chunk.ID, so a later deletion (when the
// source file and its content are already gone) can address the same
// document without having recomputed it.
func chunkDocument(cacheKey string, index int, chunk indexer.Chunk, vector []float32) vectorstore.Document {
	now := time.Now()
	return vectorstore.Document{
		ID:      fmt.Sprintf("%s#%d", cacheKey, index),
		Content: chunk.Content,
		Vector:  vector,
		Metadata: map[string]interface{}{
			"filePath":  chunk.FilePath,
			"language":  chunk.Language,
			"type":      string(chunk.Type),
			"startLine": chunk.StartLine,
			"endLine":   chunk.EndLine,
			"hash":      chunk.Hash,
			"cacheKey":  cacheKey,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
