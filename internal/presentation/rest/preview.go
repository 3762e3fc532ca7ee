package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/bibbank/loan-lifecycle/internal/application/dto"
	vo "github.com/bibbank/loan-lifecycle/internal/domain/valueobject"
)

const maxPreviewBody = 64 << 10

// previewSchema describes the body of POST /v1/emi-preview. Money fields
// accept JSON numbers or decimal strings.
const previewSchema = `{
  "type": "object",
  "required": ["principal", "tenure_months"],
  "additionalProperties": false,
  "definitions": {
    "amount": {
      "oneOf": [
        {"type": "number", "minimum": 0},
        {"type": "string", "pattern": "^[0-9]+(\\.[0-9]+)?$"}
      ]
    }
  },
  "properties": {
    "loan_type":            {"type": "string", "enum": ["personal", "home", "vehicle", "education"]},
    "principal":            {"$ref": "#/definitions/amount"},
    "annual_rate_percent":  {"$ref": "#/definitions/amount"},
    "tenure_months":        {"type": "integer", "minimum": 1},
    "monthly_income":       {"$ref": "#/definitions/amount"},
    "existing_obligations": {"$ref": "#/definitions/amount"},
    "include_schedule":     {"type": "boolean"}
  }
}`

// PreviewUseCase computes a loan preview.
type PreviewUseCase interface {
	Execute(ctx context.Context, req dto.PreviewLoanRequest) (dto.LoanPreviewResponse, error)
}

// PreviewHandler exposes the EMI calculator over plain HTTP.
type PreviewHandler struct {
	preview PreviewUseCase
	schema  *gojsonschema.Schema
	logger  *slog.Logger
}

// NewPreviewHandler compiles the request schema and returns the handler.
func NewPreviewHandler(preview PreviewUseCase, logger *slog.Logger) (*PreviewHandler, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(previewSchema))
	if err != nil {
		return nil, err
	}
	return &PreviewHandler{preview: preview, schema: schema, logger: logger}, nil
}

// RegisterRoutes attaches the preview route to the given mux.
func (h *PreviewHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/emi-preview", h.handlePreview)
}

func (h *PreviewHandler) handlePreview(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPreviewBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	result, err := h.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON")
		return
	}
	if !result.Valid() {
		msgs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			msgs[i] = desc.String()
		}
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "request does not match schema",
			"details": msgs,
		})
		return
	}

	var req dto.PreviewLoanRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.preview.Execute(r.Context(), req)
	if err != nil {
		if errors.Is(err, vo.ErrInvalidLoanParameters) || errors.Is(err, vo.ErrUnknownLoanType) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "emi preview failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": strings.TrimSpace(msg)})
}
