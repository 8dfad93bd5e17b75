package handlers

import (
	"net/http"

	"github.com/kozaktomas/image-collage/internal/collage"
	"github.com/kozaktomas/image-collage/internal/constants"
)

// ConfigHandler handles configuration endpoints
type ConfigHandler struct {
	policy collage.Policy
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(policy collage.Policy) *ConfigHandler {
	return &ConfigHandler{
		policy: policy,
	}
}

// ConfigResponse represents the configuration response
type ConfigResponse struct {
	MinTileSize      int      `json:"min_tile_size"`
	LineProtocolSide int      `json:"line_protocol_side"`
	MaxCanvasPixels  int64    `json:"max_canvas_pixels"`
	MaxUploadFiles   int      `json:"max_upload_files"`
	MaxUploadBytes   int64    `json:"max_upload_bytes"`
	ExportModes      []string `json:"export_modes"`
	Variants         []string `json:"variants"`
}

// Get returns the collage limits the UI needs
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, ConfigResponse{
		MinTileSize:      h.policy.MinTileSize,
		LineProtocolSide: h.policy.LineProtocolSide,
		MaxCanvasPixels:  h.policy.MaxCanvasPixels,
		MaxUploadFiles:   constants.MaxUploadFiles,
		MaxUploadBytes:   constants.MaxUploadSize,
		ExportModes:      []string{collage.ModeOriginal.String(), collage.ModeLineProtocol.String()},
		Variants:         []string{string(collage.VariantDual), string(collage.VariantSingle)},
	})
}
