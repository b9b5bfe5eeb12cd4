package indexer

import (
	"context"
	"fmt"
	"strings"
)

// LineChunkOutcome classifies how a LineChunker run went, so callers can
// react differently to a clean split than to a split that had to bend the
// size target versus one that could not produce usable output at all —
// generalizing the teacher's chunkGenericCode, which chunks unconditionally
// and never signals degraded output.
type LineChunkOutcome string

const (
	// LineChunkOk means every chunk respects maxChunkSize.
	LineChunkOk LineChunkOutcome = "ok"
	// LineChunkFallback means at least one chunk exceeds maxChunkSize
	// because a single line (or an unsplittable run) was already over
	// budget; the chunk is still returned rather than truncated.
	LineChunkFallback LineChunkOutcome = "fallback"
	// LineChunkFatal means no chunk could be produced at all.
	LineChunkFatal LineChunkOutcome = "fatal"
)

// LineChunkResult is the output of a LineChunker run.
type LineChunkResult struct {
	Outcome LineChunkOutcome
	Chunks  []Chunk
	Err     error
}

// LineChunker performs greedy line-accumulation chunking: lines are
// appended to the current chunk until the tokenizer reports the chunk is
// within margin of maxChunkSize, then a new chunk starts overlapBy lines
// back. It is the fallback tier for any file type without a structural or
// markdown chunker, and the tier markdown delegates to below header depth 6.
type LineChunker struct {
	tokenizer    Tokenizer
	maxChunkSize int
	overlapLines int
	marginRatio  float64 // fraction of maxChunkSize treated as the stop-early margin
}

// NewLineChunker builds a LineChunker. The stop-early margin is fixed at 0.1
// of maxChunkSize.
func NewLineChunker(tokenizer Tokenizer, maxChunkSize, overlapLines int) *LineChunker {
	if tokenizer == nil {
		tokenizer = WhitespaceTokenizer{}
	}
	return &LineChunker{
		tokenizer:    tokenizer,
		maxChunkSize: maxChunkSize,
		overlapLines: overlapLines,
		marginRatio:  0.1,
	}
}

// Chunk splits content into line-bounded chunks for filePath.
func (lc *LineChunker) Chunk(content, filePath, language string) LineChunkResult {
	if strings.TrimSpace(content) == "" {
		return LineChunkResult{Outcome: LineChunkOk}
	}

	lines := strings.Split(content, "\n")
	target := lc.maxChunkSize
	if target <= 0 {
		target = 400
	}
	margin := int(float64(target) * lc.marginRatio)
	if margin < 1 {
		margin = 1
	}

	outcome := LineChunkOk
	var chunks []Chunk

	start := 0
	for start < len(lines) {
		end := start
		tokenCount := 0
		for end < len(lines) {
			lineTokens := lc.tokenizer.Count(lines[end])
			if end > start && tokenCount+lineTokens > target-margin {
				break
			}
			tokenCount += lineTokens
			end++
			if tokenCount >= target {
				break
			}
		}
		if tokenCount > target {
			// A single line alone exceeds the target; take it anyway.
			outcome = LineChunkFallback
		}

		chunkLines := lines[start:end]
		chunkContent := strings.Join(chunkLines, "\n")
		chunks = append(chunks, Chunk{
			ID:        generateChunkID(filePath, string(ChunkTypeUnknown), "", start+1),
			Content:   chunkContent,
			FilePath:  filePath,
			Language:  language,
			Type:      ChunkTypeUnknown,
			StartLine: start + 1,
			EndLine:   end,
			Hash:      generateContentHash(chunkContent),
		})

		if end >= len(lines) {
			break
		}
		next := end - lc.overlapLines
		if next <= start {
			next = end
		}
		start = next
	}

	if len(chunks) == 0 {
		return LineChunkResult{Outcome: LineChunkFatal}
	}
	return LineChunkResult{Outcome: outcome, Chunks: chunks}
}

// lineChunkerAdapter satisfies the Chunker interface for LineChunker, whose
// richer Chunk(content, filePath, language) signature reports a degraded
// (fallback/fatal) outcome the Chunker interface has no room for. It
// Supports every extension unconditionally, making it the universal
// fallback tier: any extension no structural or markdown chunker claims
// (including .txt and anything else without a dedicated chunker) still
// produces chunks, embeddings, and lexical postings instead of none.
type lineChunkerAdapter struct {
	*LineChunker
}

// NewLineChunkerAdapter builds a Chunker-compatible wrapper around a
// LineChunker, meant to be registered last in Orchestrator.Chunkers so
// structural and markdown chunkers still get first refusal.
func NewLineChunkerAdapter(tokenizer Tokenizer, maxChunkSize, overlapLines int) Chunker {
	return &lineChunkerAdapter{LineChunker: NewLineChunker(tokenizer, maxChunkSize, overlapLines)}
}

// Supports implements Chunker; true for every extension.
func (a *lineChunkerAdapter) Supports(fileExtension string) bool {
	return true
}

// Chunk implements Chunker by delegating to LineChunker.Chunk with "text" as
// the language, surfacing LineChunkFatal as an error.
func (a *lineChunkerAdapter) Chunk(ctx context.Context, content string, filePath string) ([]Chunk, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	result := a.LineChunker.Chunk(content, filePath, "text")
	if result.Outcome == LineChunkFatal {
		return nil, fmt.Errorf("line chunker: no chunks produced for %s", filePath)
	}
	return result.Chunks, nil
}
