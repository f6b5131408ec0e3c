package httpserver

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutor-server/internal/config"
)

func newStaticEngine(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>widget</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log('hi')"), 0o644))

	cfg := &config.Config{StaticDir: dir, IndexFile: "index.html"}
	engine := gin.New()
	engine.NoRoute(staticFallback(cfg))
	return engine, dir
}

func get(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, path, nil))
	return recorder
}

func TestStaticServesExistingAsset(t *testing.T) {
	engine, _ := newStaticEngine(t)

	recorder := get(engine, "/app.js")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "console.log('hi')", recorder.Body.String())
}

func TestStaticRootServesIndex(t *testing.T) {
	engine, _ := newStaticEngine(t)

	recorder := get(engine, "/")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "widget")
}

func TestStaticDirectoryShapedPathFallsBackToIndex(t *testing.T) {
	engine, _ := newStaticEngine(t)

	recorder := get(engine, "/lessons/algebra")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "widget")
}

func TestStaticMissingAssetIs404(t *testing.T) {
	engine, _ := newStaticEngine(t)

	recorder := get(engine, "/missing.css")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestStaticRejectsTraversal(t *testing.T) {
	engine, dir := newStaticEngine(t)
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(dir), "secret.txt"), []byte("secret"), 0o644))

	recorder := get(engine, "/../secret.txt")
	assert.NotEqual(t, http.StatusOK, recorder.Code)
}

func TestStaticNonGetIs404(t *testing.T) {
	engine, _ := newStaticEngine(t)

	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/app.js", nil))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
