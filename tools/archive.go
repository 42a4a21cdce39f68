package tools

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"game_collection/db"
	"game_collection/models"
	"game_collection/store"

	"go.uber.org/zap"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Backup writes a zip archive holding games.json and every file of the image
// directory under images/. It returns the archive path.
func (t *Tools) Backup(output string) (string, error) {
	if !t.documentExists() {
		t.printf("No game data file found")
		return "", ErrNoDocument
	}
	if output == "" {
		output = fmt.Sprintf("game_collection_backup_%s.zip", t.now().Format(timestampLayout))
	}

	f, err := os.Create(output)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	if err := addToZip(zw, store.DocumentName, t.jsonFile); err != nil {
		zw.Close()
		return "", err
	}

	entries, err := os.ReadDir(t.imagesDir)
	if err != nil && !os.IsNotExist(err) {
		zw.Close()
		return "", fmt.Errorf("read image directory: %w", err)
	}
	files := 0
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if err := addToZip(zw, "images/"+e.Name(), filepath.Join(t.imagesDir, e.Name())); err != nil {
			t.logger.Warn("failed to archive image", zap.String("file", e.Name()), zap.Error(err))
			continue
		}
		files++
	}

	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("finish archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	t.printf("Backup written: %s (%d images)", output, files)
	return output, nil
}

func addToZip(zw *zip.Writer, name, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create zip entry %s: %w", name, err)
	}
	_, err = io.Copy(w, src)
	return err
}

// ExportSQLite writes every record into the game_records table of a fresh
// SQLite database at output. The JSON document stays authoritative; the
// database is a read-only snapshot for ad-hoc queries.
func (t *Tools) ExportSQLite(output string) (int, error) {
	if !t.documentExists() {
		t.printf("No game data file found")
		return 0, ErrNoDocument
	}
	if output == "" {
		output = fmt.Sprintf("game_collection_%s.db", t.now().Format(timestampLayout))
	}

	var games []models.GameRecord
	if err := store.ReadDocument(t.jsonFile, &games); err != nil {
		return 0, err
	}

	if err := os.Remove(output); err != nil && !os.IsNotExist(err) {
		return 0, fmt.Errorf("replace %s: %w", output, err)
	}
	conn, err := db.Open(output, logger.Warn)
	if err != nil {
		return 0, err
	}
	defer db.Close(conn)

	if len(games) > 0 {
		// Imported documents may repeat ids; the last occurrence wins.
		res := conn.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(&games, 100)
		if res.Error != nil {
			return 0, fmt.Errorf("insert records: %w", res.Error)
		}
	}
	t.printf("SQLite snapshot written: %s (%d records)", output, len(games))
	return len(games), nil
}
