package importdefs

import (
	"context"
	"fmt"
	"go/parser"
	"go/token"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// Location identifies a position an IDE collaborator understands.
type Location struct {
	Path string
	Line int
	Col  int
}

// ImportRef is one parsed import statement.
type ImportRef struct {
	ImportPath string
	Alias      string
	Line       int
}

// DefinitionResult is the resolved definition for a single import.
type DefinitionResult struct {
	Import    ImportRef
	Locations []Location
	Snippet   []byte
}

// FileDefinitions is the cached, per-file result set.
type FileDefinitions struct {
	Path    string
	Results []DefinitionResult
}

// Collaborator is the IDE/filesystem contract this service depends on
// (spec.md §6): reading file content, reading an arbitrary byte range, and
// resolving a location to its definition sites. No concrete IDE integration
// ships with the core; callers provide their own implementation.
type Collaborator interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	ReadRangeInFile(ctx context.Context, path string, start, end Location) ([]byte, error)
	GotoDefinition(ctx context.Context, loc Location) ([]Location, error)
}

// Service resolves import definitions for the active file, caching results
// under a strict-LRU policy and pre-warming on active-file change.
type Service struct {
	collaborator Collaborator
	cache        *lruCache

	mu         sync.Mutex
	prewarming map[string]struct{}
}

// NewService builds a Service with the given cache capacity (0 uses
// DefaultCacheCapacity).
func NewService(collaborator Collaborator, cacheCapacity int) *Service {
	return &Service{
		collaborator: collaborator,
		cache:        newLRUCache(cacheCapacity),
		prewarming:   make(map[string]struct{}),
	}
}

// Resolve returns the cached FileDefinitions for path, computing and
// caching it on a miss.
func (s *Service) Resolve(ctx context.Context, path string) (*FileDefinitions, error) {
	if cached, ok := s.cache.get(path); ok {
		return cached, nil
	}
	return s.compute(ctx, path)
}

func (s *Service) compute(ctx context.Context, path string) (*FileDefinitions, error) {
	content, err := s.collaborator.ReadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	imports, err := ParseImports(path, content)
	if err != nil {
		return nil, fmt.Errorf("parse imports for %s: %w", path, err)
	}

	result := &FileDefinitions{Path: path}
	for _, imp := range imports {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		locs, err := s.collaborator.GotoDefinition(ctx, Location{Path: path, Line: imp.Line})
		if err != nil || len(locs) == 0 {
			continue // unresolved imports are dropped, not fatal to the whole file
		}

		dr := DefinitionResult{Import: imp, Locations: locs}
		if snippet, err := s.collaborator.ReadRangeInFile(ctx, locs[0].Path, locs[0], locs[0]); err == nil {
			dr.Snippet = snippet
		}
		result.Results = append(result.Results, dr)
	}

	s.cache.put(path, result)
	return result, nil
}

// OnActiveFileChanged pre-warms the cache for path asynchronously, matching
// the "on active-file change, the new key is pre-warmed asynchronously"
// requirement. Duplicate concurrent pre-warms for the same path are
// collapsed.
func (s *Service) OnActiveFileChanged(ctx context.Context, path string) {
	s.mu.Lock()
	if _, inFlight := s.prewarming[path]; inFlight {
		s.mu.Unlock()
		return
	}
	s.prewarming[path] = struct{}{}
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.prewarming, path)
			s.mu.Unlock()
		}()
		_, _ = s.compute(ctx, path)
	}()
}

// ParseImports extracts import statements from content. Go files use
// go/parser for exact results; other languages fall back to a per-language
// regex, mirroring the chunker's own per-language dispatch.
func ParseImports(path string, content []byte) ([]ImportRef, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return parseGoImports(content)
	case ".py":
		return parseRegexImports(content, pythonImportRe)
	case ".js", ".jsx", ".ts", ".tsx":
		return parseRegexImports(content, jsImportRe)
	default:
		return nil, nil
	}
}

func parseGoImports(content []byte) ([]ImportRef, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", content, parser.ImportsOnly)
	if err != nil {
		return nil, err
	}

	var refs []ImportRef
	for _, imp := range file.Imports {
		path := strings.Trim(imp.Path.Value, `"`)
		alias := ""
		if imp.Name != nil {
			alias = imp.Name.Name
		}
		pos := fset.Position(imp.Pos())
		refs = append(refs, ImportRef{ImportPath: path, Alias: alias, Line: pos.Line})
	}
	return refs, nil
}

var (
	pythonImportRe = regexp.MustCompile(`(?m)^\s*(?:from\s+([\w.]+)\s+import|import\s+([\w.]+))`)
	jsImportRe     = regexp.MustCompile(`(?m)^\s*import\s+.*?from\s+['"]([^'"]+)['"]|require\(['"]([^'"]+)['"]\)`)
)

func parseRegexImports(content []byte, re *regexp.Regexp) ([]ImportRef, error) {
	lines := strings.Split(string(content), "\n")
	var refs []ImportRef
	for i, line := range lines {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		importPath := firstNonEmpty(m[1:])
		if importPath == "" {
			continue
		}
		refs = append(refs, ImportRef{ImportPath: importPath, Line: i + 1})
	}
	return refs, nil
}

func firstNonEmpty(vals []string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
