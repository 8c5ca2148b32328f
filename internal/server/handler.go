package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dshills/poaudit/internal/audit"
	"github.com/dshills/poaudit/internal/nomenclature"
	"github.com/dshills/poaudit/internal/order"
	"github.com/dshills/poaudit/internal/schema"
	"github.com/dshills/poaudit/internal/service"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Auditor runs audits.
type Auditor interface {
	Audit(ctx context.Context, o *order.PurchaseOrder, override *audit.Context) (*schema.Report, error)
}

// Handler wires audit and nomenclature endpoints.
type Handler struct {
	auditor Auditor
	catalog *nomenclature.Catalog
	logger  *zap.Logger
}

// NewHandler constructs a handler. A nil logger discards logs.
func NewHandler(auditor Auditor, catalog *nomenclature.Catalog, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if catalog == nil {
		catalog = nomenclature.Default()
	}
	return &Handler{auditor: auditor, catalog: catalog, logger: logger}
}

// Register mounts the v1 endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/audits", h.HandleAudit)
	r.Get("/v1/families", h.HandleListFamilies)
	r.Post("/v1/families/detect", h.HandleDetectFamily)
	r.Get("/v1/families/{code}", h.HandleGetFamily)
	r.Get("/v1/families/{code}/compatible", h.HandleCompatibleFamilies)
}

// AuditRequest is the POST /v1/audits body. Without a context the
// configured provider supplies one.
type AuditRequest struct {
	Order   *order.PurchaseOrder `json:"order"`
	Context *audit.Context       `json:"context,omitempty"`
}

// HandleAudit handles POST /v1/audits.
func (h *Handler) HandleAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	var req AuditRequest
	if err := decodeStrict(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if req.Order == nil {
		writeError(w, http.StatusBadRequest, "bad_request", "order is required")
		return
	}

	report, err := h.auditor.Audit(ctx, req.Order, req.Context)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		case errors.Is(err, service.ErrContextSource):
			h.logger.Error("context source failed", zap.String("order_id", req.Order.ID), zap.Error(err))
			writeError(w, http.StatusBadGateway, "context_unavailable", "policy context could not be loaded")
		default:
			h.logger.Error("audit failed", zap.String("order_id", req.Order.ID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal_error", "")
		}
		return
	}

	h.logger.Info("order audited",
		zap.String("report_id", report.ReportID),
		zap.String("order_id", report.OrderID),
		zap.String("risk", string(report.Risk)),
		zap.String("recommendation", string(report.Recommendation)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	writeJSON(w, http.StatusOK, report)
}

// HandleListFamilies handles GET /v1/families.
func (h *Handler) HandleListFamilies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"families": h.catalog.Families()})
}

// HandleGetFamily handles GET /v1/families/{code}.
func (h *Handler) HandleGetFamily(w http.ResponseWriter, r *http.Request) {
	code := nomenclature.Code(chi.URLParam(r, "code"))
	f, ok := h.catalog.Get(code)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", fmt.Sprintf("unknown family %q", code))
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// CompatibleResponse lists the families that may share an order with Code.
type CompatibleResponse struct {
	Code       nomenclature.Code   `json:"code"`
	Compatible []nomenclature.Code `json:"compatible"`
}

// HandleCompatibleFamilies handles GET /v1/families/{code}/compatible.
// Unknown codes are answered with the code alone.
func (h *Handler) HandleCompatibleFamilies(w http.ResponseWriter, r *http.Request) {
	code := nomenclature.Code(chi.URLParam(r, "code"))
	writeJSON(w, http.StatusOK, CompatibleResponse{
		Code:       code,
		Compatible: h.catalog.CompatibleFamilies(code),
	})
}

// DetectRequest is the POST /v1/families/detect body.
type DetectRequest struct {
	Code        string `json:"code,omitempty"`
	Designation string `json:"designation"`
}

// DetectResponse carries the inferred family, if any.
type DetectResponse struct {
	Found  bool                 `json:"found"`
	Code   nomenclature.Code    `json:"code,omitempty"`
	Family *nomenclature.Family `json:"family,omitempty"`
}

// HandleDetectFamily handles POST /v1/families/detect.
func (h *Handler) HandleDetectFamily(w http.ResponseWriter, r *http.Request) {
	var req DetectRequest
	if err := decodeStrict(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	code, ok := h.catalog.DetectFromLine(nomenclature.LineHint{Code: req.Code, Designation: req.Designation})
	if !ok {
		writeJSON(w, http.StatusOK, DetectResponse{})
		return
	}
	resp := DetectResponse{Found: true, Code: code}
	if f, ok := h.catalog.Get(code); ok {
		resp.Family = &f
	}
	writeJSON(w, http.StatusOK, resp)
}

func decodeStrict(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("reading body: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, description string) {
	body := map[string]string{"error": code}
	if description != "" {
		body["error_description"] = description
	}
	writeJSON(w, status, body)
}
