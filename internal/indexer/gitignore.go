package indexer

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// ResolveIgnorePatterns returns the full ignore set for a workspace root:
// the union of git's own gitignore resolution (nested .gitignore files and
// $GIT_DIR/info/exclude; the user's global and system excludes files are not
// read) when root is a git repository,
// a .conexusignore file with the same grammar, and DefaultIgnorePatterns.
// When root has no .git directory, falls back to the teacher's hand-rolled
// patternMatcher by reading .gitignore directly via LoadGitignore, since
// go-git has no repository to resolve patterns against.
func ResolveIgnorePatterns(root string) ([]string, error) {
	patterns := append([]string{}, DefaultIgnorePatterns()...)

	if gitPatterns, err := gitRepoIgnorePatterns(root); err == nil {
		patterns = append(patterns, gitPatterns...)
	} else {
		fallback, ferr := LoadGitignore(filepath.Join(root, ".gitignore"), root)
		if ferr == nil {
			patterns = append(patterns, fallback...)
		}
	}

	conexusIgnore, err := LoadGitignore(filepath.Join(root, ".conexusignore"), root)
	if err == nil {
		patterns = append(patterns, conexusIgnore...)
	}

	return patterns, nil
}

// gitRepoIgnorePatterns resolves ignore patterns through go-git's own
// gitignore reader, which understands nested .gitignore files the way git
// itself does. Returns an error when root is not inside a git working tree.
func gitRepoIgnorePatterns(root string) ([]string, error) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("no worktree: %w", err)
	}

	ps, err := gitignore.ReadPatterns(wt.Filesystem, nil)
	if err != nil {
		return nil, fmt.Errorf("read patterns: %w", err)
	}

	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.String())
	}
	return out, nil
}

// CurrentBranch resolves the checked-out branch name for root, used to
// derive the Branch component of a Tag. Returns "" when root is not a git
// repository or is in detached-HEAD state.
func CurrentBranch(root string) string {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}
	head, err := repo.Head()
	if err != nil || !head.Name().IsBranch() {
		return ""
	}
	return head.Name().Short()
}

// sniffWindow is the number of leading bytes inspected to decide whether a
// file is binary, matching the teacher's convention of small fixed-size
// content probes rather than reading whole files up front.
const sniffWindow = 8000

// textishContentTypes lists the non-"text/" MIME types DetectContentType
// commonly returns for source code and data files that are still plain text.
var textishContentTypes = []string{"application/json", "application/xml", "application/javascript"}

// looksBinary reports whether content appears to be non-text, using the
// standard library's content sniffer and a NUL-byte check over the leading
// sniffWindow bytes.
func looksBinary(content []byte) bool {
	probe := content
	if len(probe) > sniffWindow {
		probe = probe[:sniffWindow]
	}
	if bytes.IndexByte(probe, 0) >= 0 {
		return true
	}

	contentType := http.DetectContentType(probe)
	if bytes.HasPrefix([]byte(contentType), []byte("text/")) {
		return false
	}
	for _, textish := range textishContentTypes {
		if len(contentType) >= len(textish) && contentType[:len(textish)] == textish {
			return false
		}
	}
	return true
}

// isSymlinkEscape reports whether path is a symlink whose target resolves
// outside root, which LoadGitignore-adjacent walks must refuse to follow.
func isSymlinkEscape(root, path string) (bool, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return false, err
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return false, nil
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return true, nil // broken symlink: treat as escaping, caller skips it
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false, err
	}
	rel, err := filepath.Rel(absRoot, resolved)
	if err != nil {
		return true, nil
	}
	return rel == ".." || len(rel) >= 3 && rel[:3] == ".."+string(os.PathSeparator), nil
}
