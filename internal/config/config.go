package config

import (
	_ "embed"
	"fmt"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/kozaktomas/image-collage/internal/collage"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Storage StorageConfig
	Engine  EngineConfig `yaml:"engine"`
	Web     WebConfig
	Log     LogConfig
}

type StorageConfig struct {
	UploadDir  string // defaults to uploads
	OutputDir  string // defaults to output
	PreviewDir string // defaults to public/assets
}

type EngineConfig struct {
	MinTileSize      int    `yaml:"min_tile_size"`
	LineProtocolSide int    `yaml:"line_protocol_side"`
	PNGCompression   string `yaml:"png_compression"`   // default, none, fast, best
	Background       string `yaml:"background"`        // #rrggbb
	MaxCanvasPixels  int64  `yaml:"max_canvas_pixels"` // canvas and per-source pixel budget
	Workers          int    `yaml:"-"`                 // defaults to the number of CPUs
}

type WebConfig struct {
	Host           string   // defaults to 0.0.0.0
	Port           int      // defaults to 3000
	AllowedOrigins []string // extra CORS origins, loopback is always allowed
}

type LogConfig struct {
	Level string // debug, info, warn, error
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envString reads an environment variable, returning defaultVal when unset or empty.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// envList reads a comma-separated environment variable, dropping blank entries.
func envList(key string) []string {
	var out []string
	for item := range strings.SplitSeq(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func Load() *Config {
	var defaults struct {
		Engine EngineConfig `yaml:"engine"`
	}
	if err := yaml.Unmarshal(defaultsYAML, &defaults); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}

	engine := defaults.Engine
	engine.Workers = envInt("COLLAGE_WORKERS", runtime.NumCPU())

	return &Config{
		Storage: StorageConfig{
			UploadDir:  envString("COLLAGE_UPLOAD_DIR", "uploads"),
			OutputDir:  envString("COLLAGE_OUTPUT_DIR", "output"),
			PreviewDir: envString("COLLAGE_PREVIEW_DIR", "public/assets"),
		},
		Engine: engine,
		Web: WebConfig{
			Host:           envString("WEB_HOST", "0.0.0.0"),
			Port:           envInt("WEB_PORT", 3000),
			AllowedOrigins: envList("WEB_ALLOWED_ORIGINS"),
		},
		Log: LogConfig{
			Level: envString("COLLAGE_LOG_LEVEL", "info"),
		},
	}
}

// Policy converts the engine settings into a collage policy.
func (e EngineConfig) Policy() (collage.Policy, error) {
	level, err := parseCompression(e.PNGCompression)
	if err != nil {
		return collage.Policy{}, err
	}
	bg, err := parseHexColor(e.Background)
	if err != nil {
		return collage.Policy{}, err
	}
	return collage.Policy{
		MinTileSize:      e.MinTileSize,
		LineProtocolSide: e.LineProtocolSide,
		Compression:      level,
		Background:       bg,
		MaxCanvasPixels:  e.MaxCanvasPixels,
	}, nil
}

// SlogLevel returns the configured log level, defaulting to info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseCompression(s string) (png.CompressionLevel, error) {
	switch strings.ToLower(s) {
	case "", "default":
		return png.DefaultCompression, nil
	case "none":
		return png.NoCompression, nil
	case "fast":
		return png.BestSpeed, nil
	case "best":
		return png.BestCompression, nil
	}
	return 0, fmt.Errorf("unknown png compression %q", s)
}

func parseHexColor(s string) (color.Color, error) {
	if s == "" {
		return color.White, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return nil, fmt.Errorf("invalid background color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid background color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
