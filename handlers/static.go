package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var staticContentTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "application/javascript; charset=utf-8",
	".json": "application/json; charset=utf-8",
}

// Static serves GET and HEAD requests that match no API route from root,
// with index.html for "/". Any other method gets a 404.
func Static(root string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.PureJSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}

		rel := strings.Trim(c.Request.URL.Path, "/")
		if rel == "" {
			rel = "index.html"
		}
		if !safeRelPath(rel) {
			c.PureJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}

		path := filepath.Join(root, filepath.FromSlash(rel))
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				logger.Error("stat static file failed", zap.String("path", rel), zap.Error(err))
				c.PureJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
				return
			}
			c.PureJSON(http.StatusNotFound, gin.H{"error": "File not found"})
			return
		}

		data, err := os.ReadFile(path)
		if err != nil {
			logger.Error("read static file failed", zap.String("path", rel), zap.Error(err))
			c.PureJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.Data(http.StatusOK, staticContentType(rel), data)
	}
}

func staticContentType(name string) string {
	if ct, ok := staticContentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "text/plain; charset=utf-8"
}

func safeRelPath(rel string) bool {
	if strings.Contains(rel, "..") || strings.HasPrefix(rel, "/") || strings.HasPrefix(rel, `\`) {
		return false
	}
	native := filepath.FromSlash(rel)
	return !filepath.IsAbs(native) && filepath.VolumeName(native) == ""
}
