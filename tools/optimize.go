package tools

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	_ "golang.org/x/image/webp"
)

const (
	maxWidth    = 800
	maxHeight   = 600
	jpegQuality = 85
)

var optimizableExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tiff": true,
	".webp": true,
}

// Optimize re-encodes every supported image under sourceDir into targetDir
// (the image directory when empty) as {stem}_optimized.jpg. Files that fail
// are logged and skipped. It returns the number of files written.
func (t *Tools) Optimize(sourceDir, targetDir string) (int, error) {
	if targetDir == "" {
		targetDir = t.imagesDir
	}
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return 0, fmt.Errorf("create target directory: %w", err)
	}

	processed := 0
	err := filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == sourceDir {
				return err
			}
			t.logger.Warn("skipping unreadable path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.IsDir() || !optimizableExts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		stem := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
		dst := filepath.Join(targetDir, stem+"_optimized.jpg")
		if err := OptimizeImage(path, dst); err != nil {
			t.logger.Warn("image optimization failed", zap.String("path", path), zap.Error(err))
			return nil
		}
		t.printf("Optimized image: %s", dst)
		processed++
		return nil
	})
	if err != nil {
		return processed, fmt.Errorf("walk %s: %w", sourceDir, err)
	}

	t.printf("Batch optimization finished, processed %d images", processed)
	return processed, nil
}

// OptimizeImage decodes src, flattens transparency onto white, shrinks it to
// fit 800x600 and writes it to dst as a quality 85 JPEG. Images already inside
// the bounds keep their size.
func OptimizeImage(src, dst string) error {
	img, err := imaging.Open(src)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	img = flatten(img)
	img = imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return os.WriteFile(dst, buf.Bytes(), 0644)
}

func flatten(img image.Image) image.Image {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}
