package handlers

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kozaktomas/image-collage/internal/collage"
)

func collageRequest(t *testing.T, body any) *http.Request {
	t.Helper()
	var raw string
	switch b := body.(type) {
	case string:
		raw = b
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		raw = string(data)
	}
	req := httptest.NewRequest("POST", "/api/v1/collage", strings.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestCollageHandler_Create_Dual(t *testing.T) {
	env := newTestEnv(t)
	handler := NewCollageHandler(env.service, testLogger())
	paths := []string{
		env.uploadPNG(t, "a.png", 30, 20),
		env.uploadPNG(t, "b.png", 20, 40),
		env.uploadPNG(t, "c.png", 10, 10),
	}

	recorder := httptest.NewRecorder()
	handler.Create(recorder, collageRequest(t, map[string]any{"imagePaths": paths, "cols": 2}))

	assertStatusCode(t, recorder, http.StatusOK)

	var result DualResponse
	parseJSONResponse(t, recorder, &result)
	if !result.Success {
		t.Error("expected success to be true")
	}

	original := result.Collages.Original
	if original.Mode != collage.ModeOriginal {
		t.Errorf("expected original mode, got %s", original.Mode)
	}
	if original.Columns != 2 || original.Rows != 2 {
		t.Errorf("expected 2x2 grid, got %dx%d", original.Columns, original.Rows)
	}
	if original.TileWidth != 30 || original.TileHeight != 40 {
		t.Errorf("expected 30x40 tiles, got %dx%d", original.TileWidth, original.TileHeight)
	}
	if original.Width != 60 || original.Height != 80 {
		t.Errorf("expected 60x80 canvas, got %dx%d", original.Width, original.Height)
	}

	lp := result.Collages.LineProtocol
	if lp.Width != env.policy.LineProtocolSide || lp.Height != env.policy.LineProtocolSide {
		t.Errorf("expected %dx%d line-protocol output, got %dx%d",
			env.policy.LineProtocolSide, env.policy.LineProtocolSide, lp.Width, lp.Height)
	}

	for _, name := range []string{original.Filename, lp.Filename} {
		if !fileExists(filepath.Join(env.store.Dirs().Output, name)) {
			t.Errorf("expected %s in output store", name)
		}
		if !fileExists(filepath.Join(env.store.Dirs().Preview, name)) {
			t.Errorf("expected %s in preview store", name)
		}
	}
	for _, p := range paths {
		if fileExists(p) {
			t.Errorf("expected source %s to be deleted", p)
		}
	}
}

func TestCollageHandler_Create_Single(t *testing.T) {
	env := newTestEnv(t)
	handler := NewCollageHandler(env.service, testLogger())
	paths := []string{env.uploadPNG(t, "a.png", 12, 12)}

	recorder := httptest.NewRecorder()
	handler.Create(recorder, collageRequest(t, map[string]any{
		"variant":    "single",
		"exportMode": "line-protocol",
		"imagePaths": paths,
		"cols":       "3",
	}))

	assertStatusCode(t, recorder, http.StatusOK)

	var result SingleResponse
	parseJSONResponse(t, recorder, &result)
	if result.Collage.Mode != collage.ModeLineProtocol {
		t.Errorf("expected line-protocol mode, got %s", result.Collage.Mode)
	}
	if result.Collage.Columns != 3 || result.Collage.Rows != 1 {
		t.Errorf("expected 3x1 grid, got %dx%d", result.Collage.Columns, result.Collage.Rows)
	}

	entries, _ := os.ReadDir(env.store.Dirs().Output)
	if len(entries) != 1 {
		t.Errorf("expected one artifact, got %d", len(entries))
	}
}

func TestCollageHandler_Create_PartialFailure(t *testing.T) {
	env := newTestEnv(t)
	handler := NewCollageHandler(env.service, testLogger())
	good := env.uploadPNG(t, "a.png", 16, 16)
	bad, err := env.store.SaveUpload("broken.png", strings.NewReader("not an image"))
	if err != nil {
		t.Fatalf("failed to save upload: %v", err)
	}

	recorder := httptest.NewRecorder()
	handler.Create(recorder, collageRequest(t, map[string]any{"imagePaths": []string{good, bad}, "cols": 2}))

	assertStatusCode(t, recorder, http.StatusOK)

	var result DualResponse
	parseJSONResponse(t, recorder, &result)
	if result.Collages.Original.Columns != 2 {
		t.Errorf("expected the failed image to keep its cell, got %d cols", result.Collages.Original.Columns)
	}
}

func TestCollageHandler_Create_BadRequests(t *testing.T) {
	tests := []struct {
		name          string
		body          any
		expectedError string
	}{
		{"invalid json", "{not json", errInvalidRequestBody},
		{"no images", map[string]any{"imagePaths": []string{}}, collage.ErrNoInput.Error()},
		{"missing images", map[string]any{"cols": 2}, collage.ErrNoInput.Error()},
		{"dual with mode", map[string]any{"imagePaths": []string{"x"}, "exportMode": "original"},
			"exportMode is only accepted with variant \"single\""},
		{"single without mode", map[string]any{"imagePaths": []string{"x"}, "variant": "single"},
			"exportMode is required with variant \"single\""},
		{"unknown variant", map[string]any{"imagePaths": []string{"x"}, "variant": "triple"},
			"unknown variant \"triple\""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			handler := NewCollageHandler(env.service, testLogger())

			recorder := httptest.NewRecorder()
			handler.Create(recorder, collageRequest(t, tc.body))

			assertStatusCode(t, recorder, http.StatusBadRequest)
			assertJSONError(t, recorder, tc.expectedError)
		})
	}
}

func TestCollageHandler_Create_UnknownExportMode(t *testing.T) {
	env := newTestEnv(t)
	handler := NewCollageHandler(env.service, testLogger())

	recorder := httptest.NewRecorder()
	handler.Create(recorder, collageRequest(t, map[string]any{
		"variant":    "single",
		"exportMode": "sepia",
		"imagePaths": []string{"x"},
	}))

	assertStatusCode(t, recorder, http.StatusBadRequest)
}

func TestCollageHandler_Create_PathOutsideUploads(t *testing.T) {
	env := newTestEnv(t)
	handler := NewCollageHandler(env.service, testLogger())
	outside := filepath.Join(t.TempDir(), "secret.png")
	if err := os.WriteFile(outside, pngBytes(t, 4, 4, testRed), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	recorder := httptest.NewRecorder()
	handler.Create(recorder, collageRequest(t, map[string]any{"imagePaths": []string{outside}}))

	assertStatusCode(t, recorder, http.StatusBadRequest)
	if !fileExists(outside) {
		t.Error("expected file outside the upload store to be left alone")
	}
}

func TestCollageHandler_Create_HugeColumnCount(t *testing.T) {
	env := newTestEnv(t)
	handler := NewCollageHandler(env.service, testLogger())
	paths := []string{env.uploadPNG(t, "a.png", 10, 10)}

	recorder := httptest.NewRecorder()
	handler.Create(recorder, collageRequest(t, `{"imagePaths":["`+paths[0]+`"],"cols":1e12}`))

	assertStatusCode(t, recorder, http.StatusBadRequest)
	var result map[string]string
	parseJSONResponse(t, recorder, &result)
	if !strings.HasPrefix(result["error"], collage.ErrCanvasTooLarge.Error()) {
		t.Errorf("expected canvas error, got '%s'", result["error"])
	}
	if !fileExists(paths[0]) {
		t.Error("expected source to survive a rejected build")
	}
	entries, _ := os.ReadDir(env.store.Dirs().Output)
	if len(entries) != 0 {
		t.Errorf("expected no artifacts, got %d", len(entries))
	}
}

func TestCollageHandler_Create_NoValidImages(t *testing.T) {
	env := newTestEnv(t)
	handler := NewCollageHandler(env.service, testLogger())
	bad, _ := env.store.SaveUpload("broken.png", strings.NewReader("junk"))

	recorder := httptest.NewRecorder()
	handler.Create(recorder, collageRequest(t, map[string]any{"imagePaths": []string{bad}}))

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, collage.ErrNoValidAssets.Error())

	entries, _ := os.ReadDir(env.store.Dirs().Output)
	if len(entries) != 0 {
		t.Errorf("expected no artifacts, got %d", len(entries))
	}
}

func TestCollageHandler_Create_Cancelled(t *testing.T) {
	env := newTestEnv(t)
	handler := NewCollageHandler(env.service, testLogger())
	paths := []string{env.uploadPNG(t, "a.png", 8, 8)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := collageRequest(t, map[string]any{"imagePaths": paths}).WithContext(ctx)
	recorder := httptest.NewRecorder()

	handler.Create(recorder, req)

	if recorder.Body.Len() != 0 {
		t.Errorf("expected no response body, got '%s'", recorder.Body.String())
	}
	if !fileExists(paths[0]) {
		t.Error("expected source to survive a cancelled build")
	}
}

func TestColumnsParam(t *testing.T) {
	tests := []struct {
		raw      string
		expected int
	}{
		{`3`, 3},
		{`"4"`, 4},
		{`" 2 "`, 2},
		{`2.9`, 2},
		{`1e12`, 1_000_000_000_000},
		{`1e30`, math.MaxInt},
		{`"3abc"`, 3},
		{`"12px"`, 12},
		{`"-2"`, -2},
		{`"+5x"`, 5},
		{`"4.7"`, 4},
		{`"abc"`, 0},
		{`"-"`, 0},
		{`""`, 0},
		{`"99999999999999999999999"`, math.MaxInt},
		{`null`, 0},
		{`true`, 0},
	}
	for _, tc := range tests {
		var c columnsParam
		if err := json.Unmarshal([]byte(tc.raw), &c); err != nil {
			t.Errorf("unexpected error for %s: %v", tc.raw, err)
		}
		if int(c) != tc.expected {
			t.Errorf("columnsParam(%s) = %d, expected %d", tc.raw, c, tc.expected)
		}
	}
}
