package usecase

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteMetadataRoundTrip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteMetadata(dir, []string{"cat", "dog", "tree"}))

	var metadata map[string]string
	readJSONFile(t, filepath.Join(dir, "metadata.json"), &metadata)
	assert.Equal(t, map[string]string{"0": "cat", "1": "dog", "2": "tree"}, metadata)

	var inverse map[string]int
	readJSONFile(t, filepath.Join(dir, "keywords.json"), &inverse)
	assert.Equal(t, map[string]int{"cat": 0, "dog": 1, "tree": 2}, inverse)

	// the two files are exact inverses
	for idx, kw := range metadata {
		assert.Equal(t, idx, strconv.Itoa(inverse[kw]))
	}
}

func TestWriteMetadataEmptyKeywords(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteMetadata(dir, nil))

	var metadata map[string]string
	readJSONFile(t, filepath.Join(dir, "metadata.json"), &metadata)
	assert.Empty(t, metadata)
}

func TestWriteMetadataMissingDir(t *testing.T) {
	err := WriteMetadata(filepath.Join(t.TempDir(), "does", "not", "exist"), []string{"a"})
	assert.Error(t, err)
}

func readJSONFile(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}
