package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ferg-cod3s/conexus-index/internal/catalog"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestTagMerkle_FirstRefreshAddsAllLeaves(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.go"), "package a")
	writeFile(t, filepath.Join(root, "b.go"), "package b")

	stateDir := t.TempDir()
	tm := NewTagMerkle(NewMerkleTree(NewFileWalker(0)), stateDir)
	tag := catalog.Tag{Directory: root, Branch: "main", Artifact: catalog.ArtifactChunks}

	added, removed, err := tm.Refresh(context.Background(), tag, root, nil)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a.go", "b.go"}, added)
	require.Empty(t, removed)

	_, err = os.Stat(tm.statePath(tag))
	require.NoError(t, err)
}

func TestTagMerkle_SecondRefreshDetectsAddAndRemove(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.go"), "package a")

	stateDir := t.TempDir()
	tm := NewTagMerkle(NewMerkleTree(NewFileWalker(0)), stateDir)
	tag := catalog.Tag{Directory: root, Branch: "main", Artifact: catalog.ArtifactChunks}

	_, _, err := tm.Refresh(context.Background(), tag, root, nil)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, "a.go")))
	writeFile(t, filepath.Join(root, "c.go"), "package c")

	added, removed, err := tm.Refresh(context.Background(), tag, root, nil)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"c.go"}, added)
	require.ElementsMatch(t, []string{"a.go"}, removed)
}

func TestTagMerkle_NoChangeProducesEmptyDiff(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.go"), "package a")

	stateDir := t.TempDir()
	tm := NewTagMerkle(NewMerkleTree(NewFileWalker(0)), stateDir)
	tag := catalog.Tag{Directory: root, Branch: "main", Artifact: catalog.ArtifactChunks}

	_, _, err := tm.Refresh(context.Background(), tag, root, nil)
	require.NoError(t, err)

	added, removed, err := tm.Refresh(context.Background(), tag, root, nil)
	require.NoError(t, err)
	require.Empty(t, added)
	require.Empty(t, removed)
}

func TestTagMerkle_SeparateBranchesHaveIndependentState(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.go"), "package a")

	stateDir := t.TempDir()
	tm := NewTagMerkle(NewMerkleTree(NewFileWalker(0)), stateDir)
	mainTag := catalog.Tag{Directory: root, Branch: "main", Artifact: catalog.ArtifactChunks}
	devTag := catalog.Tag{Directory: root, Branch: "dev", Artifact: catalog.ArtifactChunks}

	_, _, err := tm.Refresh(context.Background(), mainTag, root, nil)
	require.NoError(t, err)

	added, removed, err := tm.Refresh(context.Background(), devTag, root, nil)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a.go"}, added, "a fresh tag has no prior state even if a sibling tag does")
	require.Empty(t, removed)
}
