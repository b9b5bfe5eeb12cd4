package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ferg-cod3s/conexus-index/internal/catalog"
)

// decodeLeaves flattens a serialized treeState into a path->hash map of file
// leaves only, skipping directory nodes.
func decodeLeaves(state []byte) (map[string]string, error) {
	var ts treeState
	if err := json.Unmarshal(state, &ts); err != nil {
		return nil, err
	}
	leaves := map[string]string{}
	var walk func(n *treeNode)
	walk = func(n *treeNode) {
		if n == nil {
			return
		}
		if n.IsFile {
			leaves[n.Path] = n.Hash
			return
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(ts.Root)
	return leaves, nil
}

// TagMerkle persists and diffs merkle tree state per Tag, rather than per
// bare directory: the teacher's merkleTree is keyed only by root path, but
// the catalog planner needs one tree per (dir, branch, artifactKind) since
// the same directory can be indexed on multiple branches concurrently.
type TagMerkle struct {
	tree    MerkleTree
	baseDir string // root of the persisted state tree, e.g. "index/tags"
}

// NewTagMerkle builds a TagMerkle persisting state under baseDir.
func NewTagMerkle(tree MerkleTree, baseDir string) *TagMerkle {
	return &TagMerkle{tree: tree, baseDir: baseDir}
}

// statePath returns the persisted tree-state file path for tag, mirroring
// index/tags/<dir-escaped>/<branch>/<artifactKind>/merkle_tree.
func (tm *TagMerkle) statePath(tag catalog.Tag) string {
	return filepath.Join(tm.baseDir, tag.DirEscaped(), tag.Branch, string(tag.Artifact), "merkle_tree")
}

// Refresh hashes root under tag's ignore patterns, diffs against the
// previously persisted state (if any), persists the new state, and returns
// the set of added and removed leaf paths in lexicographic order.
func (tm *TagMerkle) Refresh(ctx context.Context, tag catalog.Tag, root string, ignorePatterns []string) (added []string, removed []string, err error) {
	newState, err := tm.tree.Hash(ctx, root, ignorePatterns)
	if err != nil {
		return nil, nil, fmt.Errorf("hash tree for tag %+v: %w", tag, err)
	}

	path := tm.statePath(tag)
	oldState, readErr := os.ReadFile(path) // #nosec G304 - path built from internal Tag fields, not user input
	if readErr != nil {
		if !os.IsNotExist(readErr) {
			return nil, nil, fmt.Errorf("read prior tree state: %w", readErr)
		}
		// No prior state: every leaf is an addition.
		added, err = tm.leavesOf(newState)
		if err != nil {
			return nil, nil, err
		}
		sort.Strings(added)
		if err := tm.persist(path, newState); err != nil {
			return nil, nil, err
		}
		return added, nil, nil
	}

	added, removed, err = tm.diffLeaves(oldState, newState)
	if err != nil {
		return nil, nil, err
	}

	if err := tm.persist(path, newState); err != nil {
		return nil, nil, err
	}
	return added, removed, nil
}

func (tm *TagMerkle) persist(path string, state []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create tree state dir: %w", err)
	}
	if err := os.WriteFile(path, state, 0o644); err != nil {
		return fmt.Errorf("write tree state: %w", err)
	}
	return nil
}

// leavesOf returns every file leaf recorded in a serialized tree state,
// used when there is no prior state to diff against.
func (tm *TagMerkle) leavesOf(state []byte) ([]string, error) {
	added, _, err := tm.diffLeaves(nil, state)
	return added, err
}

// diffLeaves is Diff generalized to split the teacher's single changed-paths
// list into added and removed leaves, each lexicographically sorted, so the
// catalog planner can distinguish the two without re-deriving them from a
// flat diff.
func (tm *TagMerkle) diffLeaves(oldState, newState []byte) (added []string, removed []string, err error) {
	oldLeaves := map[string]string{} // path -> hash
	newLeaves := map[string]string{}

	if len(oldState) > 0 {
		oldLeaves, err = decodeLeaves(oldState)
		if err != nil {
			return nil, nil, fmt.Errorf("decode old state: %w", err)
		}
	}
	newLeaves, err = decodeLeaves(newState)
	if err != nil {
		return nil, nil, fmt.Errorf("decode new state: %w", err)
	}

	for path, newHash := range newLeaves {
		if oldHash, ok := oldLeaves[path]; !ok || oldHash != newHash {
			added = append(added, path)
		}
	}
	for path := range oldLeaves {
		if _, ok := newLeaves[path]; !ok {
			removed = append(removed, path)
		}
	}

	sort.Strings(added)
	sort.Strings(removed)
	return added, removed, nil
}
