package store

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

var imageContentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// ImageStore keeps cover images as plain files in one directory.
type ImageStore struct {
	dir string
	now func() time.Time
}

func NewImageStore(dir string) *ImageStore {
	return &ImageStore{dir: dir, now: time.Now}
}

func (s *ImageStore) Dir() string {
	return s.dir
}

func (s *ImageStore) Init() error {
	return os.MkdirAll(s.dir, 0755)
}

// Store decodes a data URL or raw base64 payload and writes it under a name
// derived from hint.
func (s *ImageStore) Store(payload, hint string) (string, error) {
	raw, ext, err := DecodeImage(payload)
	if err != nil {
		return "", err
	}
	return s.Write(raw, ext, hint)
}

// DecodeImage splits a data URL or raw base64 payload into its bytes and the
// file extension its media type maps to.
func DecodeImage(payload string) ([]byte, string, error) {
	ext := ".png"
	data := payload
	if meta, rest, ok := strings.Cut(payload, ","); ok {
		ext = extensionFor(meta)
		data = rest
	}

	raw, err := decodeBase64(data)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidImageData, err)
	}
	if len(raw) == 0 {
		return nil, "", fmt.Errorf("%w: empty payload", ErrInvalidImageData)
	}
	return raw, ext, nil
}

// Write stores already decoded image bytes. Two images written for the same
// hint within the same second get the same name and the later one wins.
func (s *ImageStore) Write(raw []byte, ext, hint string) (string, error) {
	base := SanitizeName(hint)
	if base == "" {
		base = "game"
	}
	filename := fmt.Sprintf("%s_%d%s", base, s.now().Unix(), ext)

	if err := os.WriteFile(filepath.Join(s.dir, filename), raw, 0644); err != nil {
		return "", fmt.Errorf("write image %s: %w", filename, err)
	}
	return filename, nil
}

// Delete removes filename from the store. A missing file is not an error.
func (s *ImageStore) Delete(filename string) error {
	if !validFilename(filename) {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filename))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Read returns the bytes of filename along with a content type chosen by
// extension.
func (s *ImageStore) Read(filename string) ([]byte, string, error) {
	if !validFilename(filename) {
		return nil, "", ErrNotFound
	}
	path := filepath.Join(s.dir, filename)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	if info.IsDir() {
		return nil, "", ErrNotFound
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return data, ContentType(filename), nil
}

// ContentType maps an image filename to its media type.
func ContentType(filename string) string {
	if ct, ok := imageContentTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// SanitizeName keeps letters, digits, spaces, hyphens and underscores, trims
// the result and joins words with underscores.
func SanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.ReplaceAll(strings.TrimSpace(b.String()), " ", "_")
}

func extensionFor(meta string) string {
	meta = strings.ToLower(meta)
	switch {
	case strings.Contains(meta, "image/png"):
		return ".png"
	case strings.Contains(meta, "image/jpeg"), strings.Contains(meta, "image/jpg"):
		return ".jpg"
	case strings.Contains(meta, "image/gif"):
		return ".gif"
	case strings.Contains(meta, "image/webp"):
		return ".webp"
	}
	return ".png"
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		if alt, altErr := base64.RawStdEncoding.DecodeString(s); altErr == nil {
			return alt, nil
		}
		return nil, err
	}
	return raw, nil
}

func validFilename(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}
