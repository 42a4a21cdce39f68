// Package tools implements the offline maintenance commands that work on the
// same data directory as the server. They take no lock against a running
// server.
package tools

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"game_collection/store"

	"go.uber.org/zap"
)

const timestampLayout = "20060102_150405"

// ErrNoDocument is returned when the data directory has no games.json yet.
var ErrNoDocument = errors.New("no game data file found")

type Tools struct {
	dataDir   string
	imagesDir string
	jsonFile  string
	out       io.Writer
	logger    *zap.Logger
	now       func() time.Time
}

// New prepares the data and image directories under dataDir. Progress
// messages are written to out.
func New(dataDir string, out io.Writer, logger *zap.Logger) (*Tools, error) {
	t := &Tools{
		dataDir:   dataDir,
		imagesDir: filepath.Join(dataDir, "images"),
		jsonFile:  filepath.Join(dataDir, store.DocumentName),
		out:       out,
		logger:    logger,
		now:       time.Now,
	}
	if err := os.MkdirAll(t.imagesDir, 0755); err != nil {
		return nil, fmt.Errorf("create data directories: %w", err)
	}
	return t, nil
}

func (t *Tools) printf(format string, args ...any) {
	fmt.Fprintf(t.out, format+"\n", args...)
}

func (t *Tools) documentExists() bool {
	info, err := os.Stat(t.jsonFile)
	return err == nil && !info.IsDir()
}

// copyFile copies src to dst keeping the permission bits and modification
// time of src.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
