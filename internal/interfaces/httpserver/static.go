package httpserver

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"tutor-server/internal/config"
)

// staticFallback serves the widget assets for every path no API route
// claimed. Directory-shaped requests (no file extension) fall back to the
// index document so client-side navigation keeps working; anything else that
// resolves to no file is a 404.
func staticFallback(cfg *config.Config) gin.HandlerFunc {
	root := filepath.Clean(cfg.StaticDir)
	index := filepath.Join(root, cfg.IndexFile)

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.String(http.StatusNotFound, "not found")
			return
		}

		cleaned := path.Clean("/" + c.Request.URL.Path)
		target := filepath.Join(root, filepath.FromSlash(cleaned))
		if !strings.HasPrefix(target, root) {
			c.String(http.StatusNotFound, "not found")
			return
		}

		if info, err := os.Stat(target); err == nil && !info.IsDir() {
			c.File(target)
			return
		}

		if path.Ext(cleaned) == "" {
			if _, err := os.Stat(index); err == nil {
				c.File(index)
				return
			}
		}

		c.String(http.StatusNotFound, "not found")
	}
}
