package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/image-collage/internal/collage"
	"github.com/kozaktomas/image-collage/internal/storage"
)

// testEnv wires a real store and service over temp directories
type testEnv struct {
	store   *storage.Store
	service *collage.Service
	policy  collage.Policy
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	store, err := storage.Bootstrap(storage.Dirs{
		Uploads: filepath.Join(root, "uploads"),
		Output:  filepath.Join(root, "output"),
		Preview: filepath.Join(root, "public", "assets"),
	}, nil)
	if err != nil {
		t.Fatalf("failed to bootstrap storage: %v", err)
	}

	policy := collage.DefaultPolicy()
	policy.MinTileSize = 16
	builder := collage.NewBuilder(policy, collage.WithWorkers(2))
	return &testEnv{
		store:   store,
		service: collage.NewService(builder, store, store, nil),
		policy:  policy,
	}
}

// pngBytes encodes a solid w x h image
func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

// uploadPNG stores a solid image in the upload store and returns its path
func (e *testEnv) uploadPNG(t *testing.T, name string, w, h int) string {
	t.Helper()
	path, err := e.store.SaveUpload(name, bytes.NewReader(pngBytes(t, w, h, testRed)))
	if err != nil {
		t.Fatalf("failed to save upload: %v", err)
	}
	return path
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// assertStatusCode checks the response status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks that the response is a JSON error with the given message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedError string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v", err)
	}
	if result["error"] != expectedError {
		t.Errorf("expected error '%s', got '%s'", expectedError, result["error"])
	}
}

// parseJSONResponse decodes the recorder body into v
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response: %v (body: %s)", err, recorder.Body.String())
	}
}

var testRed = color.NRGBA{R: 255, A: 255}

// fileExists reports whether path exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// testLogger discards log output
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
