package tools

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"game_collection/store"

	"go.uber.org/zap"
)

// Cleanup deletes every file in the image directory that no record refers to
// through imagePath. Inline data URLs stored in imagePath are ignored.
func (t *Tools) Cleanup() (int, error) {
	if !t.documentExists() {
		t.printf("No game data file found")
		return 0, ErrNoDocument
	}

	var games []map[string]any
	if err := store.ReadDocument(t.jsonFile, &games); err != nil {
		return 0, err
	}

	used := make(map[string]bool)
	for _, g := range games {
		p, _ := g["imagePath"].(string)
		if p == "" || strings.HasPrefix(p, "data:") {
			continue
		}
		used[filepath.Base(filepath.FromSlash(p))] = true
	}

	entries, err := os.ReadDir(t.imagesDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read image directory: %w", err)
	}

	removed := 0
	for _, e := range entries {
		if !e.Type().IsRegular() || used[e.Name()] {
			continue
		}
		if err := os.Remove(filepath.Join(t.imagesDir, e.Name())); err != nil {
			t.logger.Warn("failed to remove image", zap.String("file", e.Name()), zap.Error(err))
			continue
		}
		t.printf("Removed unused image: %s", e.Name())
		removed++
	}

	t.printf("Cleanup finished, removed %d unused images", removed)
	return removed, nil
}
