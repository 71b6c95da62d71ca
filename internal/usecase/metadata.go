package usecase

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// WriteMetadata persists the bit-index to keyword mapping (metadata.json)
// and its exact inverse (keywords.json). keywords must already be in
// acceptance order: index in the slice = bit index.
func WriteMetadata(dir string, keywords []string) error {
	metadata := make(map[string]string, len(keywords))
	inverse := make(map[string]int, len(keywords))
	for i, kw := range keywords {
		metadata[strconv.Itoa(i)] = kw
		inverse[kw] = i
	}

	if err := writeJSONFile(filepath.Join(dir, "metadata.json"), metadata); err != nil {
		return fmt.Errorf("write metadata.json: %w", err)
	}
	if err := writeJSONFile(filepath.Join(dir, "keywords.json"), inverse); err != nil {
		return fmt.Errorf("write keywords.json: %w", err)
	}
	return nil
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
