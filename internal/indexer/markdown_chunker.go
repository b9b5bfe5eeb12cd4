package indexer

import (
	"context"
	"strings"
)

// MarkdownChunker splits markdown documents by header depth (1-6), each
// section chunk carrying its header path as metadata, delegating to a
// LineChunker for sections past depth 6 or for any leaf section still over
// maxChunkSize. Grounded on the teacher's recursive, line-accumulation style
// (chunkGenericCode) applied to a header-aware tree instead of a flat file.
type MarkdownChunker struct {
	line         *LineChunker
	tokenizer    Tokenizer
	maxChunkSize int
}

// NewMarkdownChunker builds a MarkdownChunker.
func NewMarkdownChunker(tokenizer Tokenizer, maxChunkSize, overlapLines int) *MarkdownChunker {
	if tokenizer == nil {
		tokenizer = WhitespaceTokenizer{}
	}
	return &MarkdownChunker{
		line:         NewLineChunker(tokenizer, maxChunkSize, overlapLines),
		tokenizer:    tokenizer,
		maxChunkSize: maxChunkSize,
	}
}

// Supports implements Chunker.
func (mc *MarkdownChunker) Supports(fileExtension string) bool {
	switch strings.ToLower(fileExtension) {
	case ".md", ".markdown", ".mdx":
		return true
	}
	return false
}

type markdownSection struct {
	headerPath []string
	depth      int
	startLine  int
	endLine    int
	lines      []string
}

// Chunk implements Chunker.
func (mc *MarkdownChunker) Chunk(ctx context.Context, content string, filePath string) ([]Chunk, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	sections := mc.splitByHeader(content)
	var chunks []Chunk

	for _, sec := range sections {
		body := strings.Join(sec.lines, "\n")
		headerPath := strings.Join(sec.headerPath, " > ")

		if sec.depth > 6 || mc.tokenizer.Count(body) > mc.maxChunkSize {
			result := mc.line.Chunk(body, filePath, "markdown")
			for _, c := range result.Chunks {
				c.StartLine += sec.startLine
				c.EndLine += sec.startLine
				c.Type = ChunkTypeParagraph
				if c.Metadata == nil {
					c.Metadata = map[string]string{}
				}
				c.Metadata["headerPath"] = headerPath
				chunks = append(chunks, c)
			}
			continue
		}

		chunks = append(chunks, Chunk{
			ID:        generateChunkID(filePath, string(ChunkTypeParagraph), headerPath, sec.startLine+1),
			Content:   body,
			FilePath:  filePath,
			Language:  "markdown",
			Type:      ChunkTypeParagraph,
			StartLine: sec.startLine + 1,
			EndLine:   sec.endLine,
			Hash:      generateContentHash(body),
			Metadata:  map[string]string{"headerPath": headerPath},
		})
	}

	return chunks, nil
}

// splitByHeader walks the document top to bottom, opening a new section at
// every ATX header line ("#".."######") and tracking the active header path
// (one entry per depth level, truncated when a shallower header appears).
func (mc *MarkdownChunker) splitByHeader(content string) []markdownSection {
	lines := strings.Split(content, "\n")
	var sections []markdownSection
	var headerPath []string

	current := markdownSection{startLine: 0}

	flush := func(endLine int) {
		if len(current.lines) == 0 {
			return
		}
		current.endLine = endLine
		current.headerPath = append([]string{}, headerPath...)
		sections = append(sections, current)
	}

	for i, line := range lines {
		if depth, title, ok := parseHeader(line); ok {
			flush(i)
			if depth-1 < len(headerPath) {
				headerPath = headerPath[:depth-1]
			}
			for len(headerPath) < depth-1 {
				headerPath = append(headerPath, "")
			}
			headerPath = append(headerPath, title)

			current = markdownSection{depth: depth, startLine: i, lines: []string{line}}
			continue
		}
		current.lines = append(current.lines, line)
	}
	flush(len(lines))

	return sections
}

// parseHeader reports whether line is an ATX markdown header, its depth
// (1-6), and its title text.
func parseHeader(line string) (depth int, title string, ok bool) {
	trimmed := strings.TrimLeft(line, " ")
	if !strings.HasPrefix(trimmed, "#") {
		return 0, "", false
	}
	i := 0
	for i < len(trimmed) && trimmed[i] == '#' {
		i++
	}
	if i == 0 || i > 6 {
		return 0, "", false
	}
	if i < len(trimmed) && trimmed[i] != ' ' {
		return 0, "", false
	}
	return i, strings.TrimSpace(trimmed[i:]), true
}
