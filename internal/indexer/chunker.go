package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// CodeChunker implements semantic code chunking for various programming languages.
type CodeChunker struct {
	tokenizer    Tokenizer // Measures chunk size; defaults to WhitespaceTokenizer
	maxChunkSize int       // Maximum tokens per chunk
	overlapSize  int       // Tokens to overlap between chunks
}

// NewCodeChunker creates a new code chunker with configurable sizes, measured
// by the default WhitespaceTokenizer.
func NewCodeChunker(maxChunkSize, overlapSize int) *CodeChunker {
	return NewCodeChunkerWithTokenizer(maxChunkSize, overlapSize, nil)
}

// NewCodeChunkerWithTokenizer creates a code chunker that measures chunk size
// with a caller-supplied Tokenizer instead of the default WhitespaceTokenizer,
// so a caller with a real model tokenizer can bound chunks by that model's
// actual token count rather than a whitespace approximation.
func NewCodeChunkerWithTokenizer(maxChunkSize, overlapSize int, tokenizer Tokenizer) *CodeChunker {
	if maxChunkSize <= 0 {
		maxChunkSize = 2000 // Default
	}
	if overlapSize <= 0 {
		overlapSize = 200 // Default
	}
	if tokenizer == nil {
		tokenizer = WhitespaceTokenizer{}
	}
	return &CodeChunker{
		tokenizer:    tokenizer,
		maxChunkSize: maxChunkSize,
		overlapSize:  overlapSize,
	}
}

// Supports returns true if this chunker handles the given file extension.
func (c *CodeChunker) Supports(fileExtension string) bool {
	supported := map[string]bool{
		".go":    true,
		".py":    true,
		".js":    true,
		".jsx":   true,
		".ts":    true,
		".tsx":   true,
		".java":  true,
		".cpp":   true,
		".cc":    true,
		".cxx":   true,
		".c++":   true,
		".c":     true,
		".rs":    true,
		".rb":    true,
		".php":   true,
		".cs":    true,
		".scala": true,
		".kt":    true,
		".swift": true,
	}
	return supported[strings.ToLower(fileExtension)]
}

// Chunk splits code content into semantic chunks based on language-specific constructs.
func (c *CodeChunker) Chunk(ctx context.Context, content string, filePath string) ([]Chunk, error) {
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".go":
		return c.chunkGoCode(ctx, content, filePath)
	case ".py":
		return c.chunkPythonCode(ctx, content, filePath)
	case ".js", ".jsx", ".ts", ".tsx":
		return c.chunkJavaScriptCode(ctx, content, filePath)
	case ".java":
		return c.chunkJavaCode(ctx, content, filePath)
	case ".cpp", ".cc", ".cxx", ".c++", ".c":
		return c.chunkCCode(ctx, content, filePath)
	case ".rs":
		return c.chunkRustCode(ctx, content, filePath)
	default:
		// Fallback to generic code chunking
		return c.chunkGenericCode(ctx, content, filePath)
	}
}

// chunkGoCode implements semantic chunking for Go code using AST parsing.
// Each top-level function or struct becomes its own chunk unless it exceeds
// maxChunkSize tokens, in which case collapseOrRecurse collapses its body to
// a "{ ... }" sentinel and recurses into the body's content to chunk what
// the sentinel hides.
func (c *CodeChunker) chunkGoCode(ctx context.Context, content string, filePath string) ([]Chunk, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filePath, content, parser.ParseComments)
	if err != nil {
		// If parsing fails, fall back to generic chunking
		return c.chunkGenericCode(ctx, content, filePath)
	}

	lines := strings.Split(content, "\n")
	var chunks []Chunk

	// Extract function declarations
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}
		startPos := fset.Position(fn.Pos())
		endPos := fset.Position(fn.End())
		fnContent := strings.Join(lines[startPos.Line-1:endPos.Line], "\n")

		fnChunks := c.collapseOrRecurse(fnContent, filePath, "go", ChunkTypeFunction, startPos.Line, endPos.Line, fn.Name.Name)
		if recv := c.getReceiverName(fn); recv != "" {
			for i := range fnChunks {
				if fnChunks[i].Type != ChunkTypeFunction {
					continue
				}
				if fnChunks[i].Metadata == nil {
					fnChunks[i].Metadata = map[string]string{}
				}
				fnChunks[i].Metadata["receiver"] = recv
			}
		}
		chunks = append(chunks, fnChunks...)
	}

	// Extract struct/type declarations
	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok {
			continue
		}
		for _, spec := range genDecl.Specs {
			typeSpec, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			if _, ok := typeSpec.Type.(*ast.StructType); !ok {
				continue
			}
			startPos := fset.Position(typeSpec.Pos())
			endPos := fset.Position(typeSpec.End())
			structContent := strings.Join(lines[startPos.Line-1:endPos.Line-1], "\n")

			chunks = append(chunks, c.collapseOrRecurse(structContent, filePath, "go", ChunkTypeStruct, startPos.Line, endPos.Line-1, typeSpec.Name.Name)...)
		}
	}

	// If no semantic chunks found, fall back to generic chunking
	if len(chunks) == 0 {
		return c.chunkGenericCode(ctx, content, filePath)
	}

	return chunks, nil
}

// collapseOrRecurse returns content as a single chunk when it fits within
// maxChunkSize tokens. Otherwise it emits a collapsed chunk (signature plus
// a "{ ... }" sentinel in place of the body) followed by the body
// re-chunked via splitByTokens, each child chunk tagged with its parent's
// name, so nothing the sentinel hides goes unindexed.
func (c *CodeChunker) collapseOrRecurse(content, filePath, language string, chunkType ChunkType, startLine, endLine int, name string) []Chunk {
	if c.tokenizer.Count(content) <= c.maxChunkSize {
		return []Chunk{c.createCodeChunk(content, filePath, language, chunkType, startLine, endLine, name)}
	}

	parent := c.createCodeChunk(collapseBody(content), filePath, language, chunkType, startLine, endLine, name)
	parent.Metadata["collapsed"] = "true"

	children := c.splitByTokens(content, filePath, language, startLine)
	for i := range children {
		if children[i].Metadata == nil {
			children[i].Metadata = map[string]string{}
		}
		children[i].Metadata["parent"] = name
	}

	return append([]Chunk{parent}, children...)
}

// collapseBody replaces everything from content's first opening brace
// onward with the " ... }" sentinel, preserving the declaration's signature.
// Brace-less constructs (e.g. a Python def line) keep only their first line.
func collapseBody(content string) string {
	if idx := strings.Index(content, "{"); idx != -1 {
		return content[:idx+1] + " ... }\n"
	}
	if nl := strings.IndexByte(content, '\n'); nl != -1 {
		return content[:nl] + "\n    ...\n"
	}
	return content
}

// splitByTokens greedily accumulates lines of content into chunks bounded by
// maxChunkSize tokens, stepping forward by at least one line and backing up
// by overlapSize tokens' worth of trailing lines between chunks. baseLine is
// the 1-based line number of content's first line in the original file.
func (c *CodeChunker) splitByTokens(content, filePath, language string, baseLine int) []Chunk {
	lines := strings.Split(content, "\n")
	if len(lines) == 0 {
		return nil
	}

	var chunks []Chunk
	start := 0
	for start < len(lines) {
		end := start
		var buf strings.Builder
		for end < len(lines) {
			candidate := buf.String() + lines[end] + "\n"
			if end > start && c.tokenizer.Count(candidate) > c.maxChunkSize {
				break
			}
			buf.Reset()
			buf.WriteString(candidate)
			end++
		}
		if end == start {
			end = start + 1 // a single line alone exceeds maxChunkSize; keep it whole
		}

		text := buf.String()
		if text == "" {
			text = strings.Join(lines[start:end], "\n") + "\n"
		}
		if end >= len(lines) {
			// The last line of content carries no newline of its own.
			text = strings.TrimSuffix(text, "\n")
		}
		if strings.TrimSpace(text) != "" {
			chunks = append(chunks, c.createCodeChunk(text, filePath, language, ChunkTypeUnknown, baseLine+start, baseLine+end-1, ""))
		}

		if end >= len(lines) {
			break
		}

		overlapLines := 0
		overlapTokens := 0
		for overlapLines < end-start && overlapTokens < c.overlapSize {
			overlapLines++
			overlapTokens += c.tokenizer.Count(lines[end-overlapLines])
		}
		next := end - overlapLines
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// chunkPythonCode implements semantic chunking for Python code.
func (c *CodeChunker) chunkPythonCode(ctx context.Context, content string, filePath string) ([]Chunk, error) {
	lines := strings.Split(content, "\n")
	var chunks []Chunk

	// Python function/class detection using regex
	fnRegex := regexp.MustCompile(`^\s*def\s+(\w+)\s*\(`)
	classRegex := regexp.MustCompile(`^\s*class\s+(\w+)`)

	currentChunk := ""
	currentType := ChunkTypeUnknown
	currentStartLine := 1
	currentName := ""
	braceCount := 0

	for i, line := range lines {
		lineNum := i + 1

		// Count braces to track function/class boundaries
		braceCount += strings.Count(line, "{") - strings.Count(line, "}")

		// Check for function definition
		if fnMatch := fnRegex.FindStringSubmatch(line); fnMatch != nil {
			if currentChunk != "" && braceCount <= 0 {
				chunks = append(chunks, c.collapseOrRecurse(currentChunk, filePath, detectLanguage(filePath), currentType, currentStartLine, lineNum-1, currentName)...)
			}

			currentChunk = line + "\n"
			currentType = ChunkTypeFunction
			currentStartLine = lineNum
			currentName = fnMatch[1]
			braceCount = strings.Count(line, "{") - strings.Count(line, "}")

		} else if classMatch := classRegex.FindStringSubmatch(line); classMatch != nil {
			if currentChunk != "" && braceCount <= 0 {
				chunks = append(chunks, c.collapseOrRecurse(currentChunk, filePath, detectLanguage(filePath), currentType, currentStartLine, lineNum-1, currentName)...)
			}

			currentChunk = line + "\n"
			currentType = ChunkTypeClass
			currentStartLine = lineNum
			currentName = classMatch[1]
			braceCount = strings.Count(line, "{") - strings.Count(line, "}")

		} else if currentChunk != "" {
			currentChunk += line + "\n"

			// End chunk when braces balance out
			if braceCount <= 0 && strings.TrimSpace(line) != "" {
				chunks = append(chunks, c.collapseOrRecurse(currentChunk, filePath, detectLanguage(filePath), currentType, currentStartLine, lineNum, currentName)...)
				currentChunk = ""
				currentType = ChunkTypeUnknown
				currentName = ""
			}
		}
	}

	// Save final chunk
	if currentChunk != "" {
		chunks = append(chunks, c.collapseOrRecurse(currentChunk, filePath, detectLanguage(filePath), currentType, currentStartLine, len(lines), currentName)...)
	}

	if len(chunks) == 0 {
		return c.chunkGenericCode(ctx, content, filePath)
	}

	return chunks, nil
}

// chunkJavaScriptCode implements semantic chunking for JavaScript/TypeScript code.
func (c *CodeChunker) chunkJavaScriptCode(ctx context.Context, content string, filePath string) ([]Chunk, error) {
	lines := strings.Split(content, "\n")
	var chunks []Chunk

	// JavaScript function/class detection
	fnRegex := regexp.MustCompile(`^\s*(?:function\s+(\w+)|(?:const|let|var)\s+(\w+)\s*=\s*(?:\([^)]*\)\s*=>|function))`)
	classRegex := regexp.MustCompile(`^\s*class\s+(\w+)`)

	currentChunk := ""
	currentType := ChunkTypeUnknown
	currentStartLine := 1
	currentName := ""
	braceCount := 0

	for i, line := range lines {
		lineNum := i + 1

		// Count braces to track function/class boundaries
		braceCount += strings.Count(line, "{") - strings.Count(line, "}")

		// Check for function definition
		if fnMatch := fnRegex.FindStringSubmatch(line); fnMatch != nil {
			if currentChunk != "" && braceCount <= 0 {
				chunks = append(chunks, c.collapseOrRecurse(currentChunk, filePath, detectLanguage(filePath), currentType, currentStartLine, lineNum-1, currentName)...)
			}

			currentChunk = line + "\n"
			currentType = ChunkTypeFunction
			currentStartLine = lineNum
			currentName = fnMatch[1]
			if currentName == "" {
				currentName = fnMatch[2] // arrow function or const function
			}
			braceCount = strings.Count(line, "{") - strings.Count(line, "}")

		} else if classMatch := classRegex.FindStringSubmatch(line); classMatch != nil {
			if currentChunk != "" && braceCount <= 0 {
				chunks = append(chunks, c.collapseOrRecurse(currentChunk, filePath, detectLanguage(filePath), currentType, currentStartLine, lineNum-1, currentName)...)
			}

			currentChunk = line + "\n"
			currentType = ChunkTypeClass
			currentStartLine = lineNum
			currentName = classMatch[1]
			braceCount = strings.Count(line, "{") - strings.Count(line, "}")

		} else if currentChunk != "" {
			currentChunk += line + "\n"

			// End chunk when braces balance out
			if braceCount <= 0 && strings.TrimSpace(line) != "" {
				chunks = append(chunks, c.collapseOrRecurse(currentChunk, filePath, detectLanguage(filePath), currentType, currentStartLine, lineNum, currentName)...)
				currentChunk = ""
				currentType = ChunkTypeUnknown
				currentName = ""
			}
		}
	}

	// Save final chunk
	if currentChunk != "" {
		chunks = append(chunks, c.collapseOrRecurse(currentChunk, filePath, detectLanguage(filePath), currentType, currentStartLine, len(lines), currentName)...)
	}

	if len(chunks) == 0 {
		return c.chunkGenericCode(ctx, content, filePath)
	}

	return chunks, nil
}

// chunkJavaCode implements semantic chunking for Java code.
func (c *CodeChunker) chunkJavaCode(ctx context.Context, content string, filePath string) ([]Chunk, error) {
	lines := strings.Split(content, "\n")
	var chunks []Chunk

	// Java method/class detection
	methodRegex := regexp.MustCompile(`^\s*(?:public|private|protected)?\s*(?:static)?\s*(?:\w+\s+)+\s*(\w+)\s*\(`)
	classRegex := regexp.MustCompile(`^\s*(?:public|private|protected)?\s*class\s+(\w+)`)

	currentChunk := ""
	currentType := ChunkTypeUnknown
	currentStartLine := 1
	currentName := ""
	braceCount := 0

	for i, line := range lines {
		lineNum := i + 1

		braceCount += strings.Count(line, "{") - strings.Count(line, "}")

		if methodMatch := methodRegex.FindStringSubmatch(line); methodMatch != nil {
			if currentChunk != "" && braceCount <= 0 {
				chunks = append(chunks, c.collapseOrRecurse(currentChunk, filePath, "java", currentType, currentStartLine, lineNum-1, currentName)...)
			}

			currentChunk = line + "\n"
			currentType = ChunkTypeFunction
			currentStartLine = lineNum
			currentName = methodMatch[len(methodMatch)-1]
			braceCount = strings.Count(line, "{") - strings.Count(line, "}")

		} else if classMatch := classRegex.FindStringSubmatch(line); classMatch != nil {
			if currentChunk != "" && braceCount <= 0 {
				chunks = append(chunks, c.collapseOrRecurse(currentChunk, filePath, "java", currentType, currentStartLine, lineNum-1, currentName)...)
			}

			currentChunk = line + "\n"
			currentType = ChunkTypeClass
			currentStartLine = lineNum
			currentName = classMatch[1]
			braceCount = strings.Count(line, "{") - strings.Count(line, "}")

		} else if currentChunk != "" {
			currentChunk += line + "\n"

			if braceCount <= 0 && strings.TrimSpace(line) != "" {
				chunks = append(chunks, c.collapseOrRecurse(currentChunk, filePath, "java", currentType, currentStartLine, lineNum, currentName)...)
				currentChunk = ""
				currentType = ChunkTypeUnknown
				currentName = ""
			}
		}
	}

	// Save final chunk
	if currentChunk != "" {
		chunks = append(chunks, c.collapseOrRecurse(currentChunk, filePath, "java", currentType, currentStartLine, len(lines), currentName)...)
	}

	if len(chunks) == 0 {
		return c.chunkGenericCode(ctx, content, filePath)
	}

	return chunks, nil
}

// chunkCCode implements semantic chunking for C/C++ code.
func (c *CodeChunker) chunkCCode(ctx context.Context, content string, filePath string) ([]Chunk, error) {
	lines := strings.Split(content, "\n")
	var chunks []Chunk

	// C/C++ function detection
	fnRegex := regexp.MustCompile(`^\s*(?:\w+\s+)+\s*\**\s*(\w+)\s*\(`)

	currentChunk := ""
	currentType := ChunkTypeFunction
	currentStartLine := 1
	currentName := ""
	braceCount := 0

	for i, line := range lines {
		lineNum := i + 1

		braceCount += strings.Count(line, "{") - strings.Count(line, "}")

		if fnMatch := fnRegex.FindStringSubmatch(line); fnMatch != nil && !strings.Contains(line, ";") {
			if currentChunk != "" && braceCount <= 0 {
				chunks = append(chunks, c.collapseOrRecurse(currentChunk, filePath, detectLanguage(filePath), currentType, currentStartLine, lineNum-1, currentName)...)
			}

			currentChunk = line + "\n"
			currentStartLine = lineNum
			currentName = fnMatch[len(fnMatch)-1]
			braceCount = strings.Count(line, "{") - strings.Count(line, "}")

		} else if currentChunk != "" {
			currentChunk += line + "\n"

			if braceCount <= 0 && strings.TrimSpace(line) != "" && strings.HasSuffix(strings.TrimSpace(line), "}") {
				chunks = append(chunks, c.collapseOrRecurse(currentChunk, filePath, detectLanguage(filePath), currentType, currentStartLine, lineNum, currentName)...)
				currentChunk = ""
				currentName = ""
			}
		}
	}

	if currentChunk != "" {
		chunks = append(chunks, c.collapseOrRecurse(currentChunk, filePath, detectLanguage(filePath), currentType, currentStartLine, len(lines), currentName)...)
	}

	if len(chunks) == 0 {
		return c.chunkGenericCode(ctx, content, filePath)
	}

	return chunks, nil
}

// chunkRustCode implements semantic chunking for Rust code.
func (c *CodeChunker) chunkRustCode(ctx context.Context, content string, filePath string) ([]Chunk, error) {
	lines := strings.Split(content, "\n")
	var chunks []Chunk

	// Rust function/struct/impl detection
	fnRegex := regexp.MustCompile(`^\s*fn\s+(\w+)\s*\(`)
	structRegex := regexp.MustCompile(`^\s*struct\s+(\w+)`)
	implRegex := regexp.MustCompile(`^\s*impl\s+(?:\w+::)?(\w+)`)

	currentChunk := ""
	currentType := ChunkTypeUnknown
	currentStartLine := 1
	currentName := ""
	braceCount := 0

	for i, line := range lines {
		lineNum := i + 1

		braceCount += strings.Count(line, "{") - strings.Count(line, "}")

		if fnMatch := fnRegex.FindStringSubmatch(line); fnMatch != nil {
			if currentChunk != "" && braceCount <= 0 {
				chunks = append(chunks, c.collapseOrRecurse(currentChunk, filePath, "rust", currentType, currentStartLine, lineNum-1, currentName)...)
			}

			currentChunk = line + "\n"
			currentType = ChunkTypeFunction
			currentStartLine = lineNum
			currentName = fnMatch[1]
			braceCount = strings.Count(line, "{") - strings.Count(line, "}")

		} else if structMatch := structRegex.FindStringSubmatch(line); structMatch != nil {
			if currentChunk != "" && braceCount <= 0 {
				chunks = append(chunks, c.collapseOrRecurse(currentChunk, filePath, "rust", currentType, currentStartLine, lineNum-1, currentName)...)
			}

			currentChunk = line + "\n"
			currentType = ChunkTypeStruct
			currentStartLine = lineNum
			currentName = structMatch[1]
			braceCount = strings.Count(line, "{") - strings.Count(line, "}")

		} else if implMatch := implRegex.FindStringSubmatch(line); implMatch != nil {
			if currentChunk != "" && braceCount <= 0 {
				chunks = append(chunks, c.collapseOrRecurse(currentChunk, filePath, "rust", currentType, currentStartLine, lineNum-1, currentName)...)
			}

			currentChunk = line + "\n"
			currentType = ChunkTypeInterface
			currentStartLine = lineNum
			currentName = implMatch[1]
			braceCount = strings.Count(line, "{") - strings.Count(line, "}")

		} else if currentChunk != "" {
			currentChunk += line + "\n"

			if braceCount <= 0 && strings.TrimSpace(line) != "" {
				chunks = append(chunks, c.collapseOrRecurse(currentChunk, filePath, "rust", currentType, currentStartLine, lineNum, currentName)...)
				currentChunk = ""
				currentType = ChunkTypeUnknown
				currentName = ""
			}
		}
	}

	if currentChunk != "" {
		chunks = append(chunks, c.collapseOrRecurse(currentChunk, filePath, "rust", currentType, currentStartLine, len(lines), currentName)...)
	}

	if len(chunks) == 0 {
		return c.chunkGenericCode(ctx, content, filePath)
	}

	return chunks, nil
}

// chunkGenericCode implements fallback chunking for unsupported languages,
// bounding chunks by tokenizer.Count rather than raw character length.
func (c *CodeChunker) chunkGenericCode(ctx context.Context, content string, filePath string) ([]Chunk, error) {
	if c.tokenizer.Count(content) <= c.maxChunkSize {
		return []Chunk{c.createCodeChunk(content, filePath, detectLanguage(filePath), ChunkTypeUnknown, 1, countLines(content), "")}, nil
	}
	return c.splitByTokens(content, filePath, detectLanguage(filePath), 1), nil
}

// createCodeChunk creates a chunk with the given parameters.
func (c *CodeChunker) createCodeChunk(content, filePath, language string, chunkType ChunkType, startLine, endLine int, name string) Chunk {
	metadata := make(map[string]string)
	if name != "" {
		switch chunkType {
		case ChunkTypeFunction:
			metadata["function_name"] = name
		case ChunkTypeStruct:
			metadata["struct_name"] = name
		case ChunkTypeClass:
			metadata["type_name"] = name
		case ChunkTypeInterface:
			metadata["interface_name"] = name
		}
	}

	return Chunk{
		ID:        generateChunkID(filePath, string(chunkType), name, startLine),
		Content:   content,
		FilePath:  filePath,
		Language:  language,
		Type:      chunkType,
		StartLine: startLine,
		EndLine:   endLine,
		Metadata:  metadata,
		Hash:      generateContentHash(content),
		IndexedAt: time.Now(),
	}
}

// getReceiverName extracts the receiver name from a Go function declaration.
func (c *CodeChunker) getReceiverName(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return ""
	}

	recv := fn.Recv.List[0]
	if recv.Type != nil {
		if ident, ok := recv.Type.(*ast.Ident); ok {
			return ident.Name
		}
		if starExpr, ok := recv.Type.(*ast.StarExpr); ok {
			if ident, ok := starExpr.X.(*ast.Ident); ok {
				return ident.Name
			}
		}
	}
	return ""
}

// generateChunkID creates a unique identifier for a chunk.
func generateChunkID(filePath, chunkType, name string, line int) string {
	return fmt.Sprintf("%s:%s:%s:%d", filePath, chunkType, name, line)
}

// generateContentHash creates a hash of the content for deduplication.
func generateContentHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// detectLanguage attempts to detect the programming language from file extension.
func detectLanguage(path string) string {
	switch filepath.Ext(path) {
	case ".go":
		return "go"
	case ".js", ".jsx":
		return "javascript"
	case ".ts", ".tsx":
		return "typescript"
	case ".py":
		return "python"
	case ".rs":
		return "rust"
	case ".java":
		return "java"
	case ".cpp", ".cc", ".cxx", ".c++":
		return "cpp"
	case ".c":
		return "c"
	case ".md":
		return "markdown"
	case ".txt":
		return "text"
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	case ".toml":
		return "toml"
	default:
		return "unknown"
	}
}

// countLines counts the number of lines in a string.
func countLines(s string) int {
	if len(s) == 0 {
		return 0
	}
	lines := 1
	for _, r := range s {
		if r == '\n' {
			lines++
		}
	}
	return lines
}
