package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"donutsmp-market-api/internal/model"
	"donutsmp-market-api/internal/service"
	"donutsmp-market-api/pkg/apierror"
	"donutsmp-market-api/pkg/response"
)

// HistoryHandler handles market history HTTP requests.
type HistoryHandler struct {
	historyService *service.HistoryService
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(historyService *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{
		historyService: historyService,
	}
}

// GetHistory handles GET /history
func (h *HistoryHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	records, err := h.historyService.ReadAll(r.Context())
	if err != nil {
		h.writeHistoryError(w, "read", err)
		return
	}

	response.OK(w, records)
}

// AppendHistory handles POST /history
func (h *HistoryHandler) AppendHistory(w http.ResponseWriter, r *http.Request) {
	records, ok := h.decodeRecords(w, r)
	if !ok {
		return
	}

	result, err := h.historyService.AppendMerge(r.Context(), records)
	if err != nil {
		h.writeHistoryError(w, "merge", err)
		return
	}

	response.OK(w, result)
}

// OverwriteHistory handles POST /history/overwrite
func (h *HistoryHandler) OverwriteHistory(w http.ResponseWriter, r *http.Request) {
	records, ok := h.decodeRecords(w, r)
	if !ok {
		return
	}

	result, err := h.historyService.Overwrite(r.Context(), records)
	if err != nil {
		h.writeHistoryError(w, "overwrite", err)
		return
	}

	response.OK(w, result)
}

// CompactHistory handles POST /history/compact
func (h *HistoryHandler) CompactHistory(w http.ResponseWriter, r *http.Request) {
	result, err := h.historyService.Compact(r.Context())
	if err != nil {
		h.writeHistoryError(w, "compact", err)
		return
	}

	response.OK(w, result)
}

// decodeRecords parses the request body as a JSON array of sale records.
// Anything else, including a bare null, is rejected before the archive is
// touched.
func (h *HistoryHandler) decodeRecords(w http.ResponseWriter, r *http.Request) ([]model.SaleRecord, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		response.Error(w, apierror.InvalidInput("failed to read request body"))
		return nil, false
	}
	defer r.Body.Close()

	var records []model.SaleRecord
	if err := json.Unmarshal(body, &records); err != nil {
		response.Error(w, apierror.InvalidInput("expected a JSON array of sale records"))
		return nil, false
	}
	if records == nil {
		response.Error(w, apierror.InvalidInput("expected a JSON array of sale records"))
		return nil, false
	}

	return records, true
}

func (h *HistoryHandler) writeHistoryError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, service.ErrCorruptArchive) {
		response.Error(w, apierror.ArchiveCorrupt(""))
		return
	}

	log.Printf("[HistoryHandler] %s failed: %v", op, err)
	response.Error(w, apierror.InternalError("history archive operation failed"))
}
