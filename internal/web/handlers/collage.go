package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/kozaktomas/image-collage/internal/collage"
	"github.com/kozaktomas/image-collage/internal/constants"
)

// CollageCreator builds and publishes collages.
type CollageCreator interface {
	Create(ctx context.Context, req collage.Request) (*collage.Response, error)
}

// CollageHandler handles collage build requests.
type CollageHandler struct {
	creator CollageCreator
	logger  *slog.Logger
}

// NewCollageHandler creates a new collage handler.
func NewCollageHandler(creator CollageCreator, logger *slog.Logger) *CollageHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CollageHandler{
		creator: creator,
		logger:  logger,
	}
}

// columnsParam accepts a column count as a JSON number or a string with a
// leading integer ("3", " 3 ", "3abc"). Anything else becomes 0, which the
// planner clamps to one column.
type columnsParam int

func (c *columnsParam) UnmarshalJSON(b []byte) error {
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		switch {
		case n >= math.MaxInt:
			*c = math.MaxInt
		case n <= math.MinInt:
			*c = math.MinInt
		default:
			*c = columnsParam(int(n))
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*c = columnsParam(leadingInt(s))
		return nil
	}
	*c = 0
	return nil
}

// leadingInt parses the optionally signed integer prefix of s after
// leading whitespace. It returns 0 when there is no digit and saturates
// on overflow.
func leadingInt(s string) int {
	s = strings.TrimLeft(s, " \t\r\n")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	v, err := strconv.Atoi(s[:end])
	if errors.Is(err, strconv.ErrRange) {
		if s[0] == '-' {
			return math.MinInt
		}
		return math.MaxInt
	}
	return v
}

// CollageRequest is the JSON body of a build request. Variant is "dual"
// (the default) or "single"; ExportMode is required for "single" only.
type CollageRequest struct {
	Variant    collage.Variant `json:"variant"`
	ExportMode string          `json:"exportMode,omitempty"`
	ImagePaths []string        `json:"imagePaths"`
	Cols       columnsParam    `json:"cols"`
}

// DualCollages holds the artifacts of a dual build.
type DualCollages struct {
	Original     collage.Artifact `json:"original"`
	LineProtocol collage.Artifact `json:"lineProtocol"`
}

// DualResponse is returned for a dual build.
type DualResponse struct {
	Success  bool         `json:"success"`
	Collages DualCollages `json:"collages"`
}

// SingleResponse is returned for a single-mode build.
type SingleResponse struct {
	Success bool             `json:"success"`
	Collage collage.Artifact `json:"collage"`
}

// toRequest validates the body and converts it to a collage request.
func (body CollageRequest) toRequest() (collage.Request, error) {
	req := collage.Request{
		Variant:    body.Variant,
		ImagePaths: body.ImagePaths,
		Columns:    collage.NormalizeColumns(int(body.Cols)),
	}

	switch body.Variant {
	case "", collage.VariantDual:
		if body.ExportMode != "" {
			return req, errors.New("exportMode is only accepted with variant \"single\"")
		}
		req.Variant = collage.VariantDual
	case collage.VariantSingle:
		if body.ExportMode == "" {
			return req, errors.New("exportMode is required with variant \"single\"")
		}
		mode, err := collage.ParseExportMode(body.ExportMode)
		if err != nil {
			return req, err
		}
		req.Mode = mode
	default:
		return req, fmt.Errorf("unknown variant %q", body.Variant)
	}
	return req, nil
}

// Create builds collages from previously uploaded images.
func (h *CollageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body CollageRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, constants.MaxBuildRequestSize)).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	if len(body.ImagePaths) == 0 {
		respondError(w, http.StatusBadRequest, collage.ErrNoInput.Error())
		return
	}

	req, err := body.toRequest()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.creator.Create(r.Context(), req)
	if err != nil {
		respondCollageError(w, r, h.logger, err)
		return
	}

	if req.Variant == collage.VariantSingle {
		artifact, _ := resp.Artifact(req.Mode)
		respondJSON(w, http.StatusOK, SingleResponse{Success: true, Collage: artifact})
		return
	}

	original, _ := resp.Artifact(collage.ModeOriginal)
	lineProtocol, _ := resp.Artifact(collage.ModeLineProtocol)
	respondJSON(w, http.StatusOK, DualResponse{
		Success: true,
		Collages: DualCollages{
			Original:     original,
			LineProtocol: lineProtocol,
		},
	})
}
