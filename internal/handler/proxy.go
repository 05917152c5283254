package handler

import (
	"log"
	"net/http"
	"strconv"

	"donutsmp-market-api/internal/service"
	"donutsmp-market-api/pkg/apierror"
	"donutsmp-market-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// ProxyHandler handles pass-through requests to the upstream auction API.
// Bodies are relayed exactly as the upstream sent them; the Authorization
// header travels with every call.
type ProxyHandler struct {
	proxyService *service.ProxyService
}

// NewProxyHandler creates a new proxy handler.
func NewProxyHandler(proxyService *service.ProxyService) *ProxyHandler {
	return &ProxyHandler{
		proxyService: proxyService,
	}
}

// Transactions handles GET /transactions/{page}
func (h *ProxyHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	page, ok := h.pageParam(w, r)
	if !ok {
		return
	}

	body, err := h.proxyService.Transactions(r.Context(), r.Header.Get("Authorization"), page)
	if err != nil {
		h.writeUpstreamError(w, "transactions", err)
		return
	}

	response.Raw(w, http.StatusOK, body)
}

// Listings handles GET /listings/{page}
func (h *ProxyHandler) Listings(w http.ResponseWriter, r *http.Request) {
	page, ok := h.pageParam(w, r)
	if !ok {
		return
	}

	body, err := h.proxyService.Listings(r.Context(), r.Header.Get("Authorization"), page)
	if err != nil {
		h.writeUpstreamError(w, "listings", err)
		return
	}

	response.Raw(w, http.StatusOK, body)
}

// PlayerStats handles GET /stats/{username}
func (h *ProxyHandler) PlayerStats(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		response.Error(w, apierror.BadRequest("username is required"))
		return
	}

	body, err := h.proxyService.PlayerStats(r.Context(), r.Header.Get("Authorization"), username)
	if err != nil {
		h.writeUpstreamError(w, "stats", err)
		return
	}

	response.Raw(w, http.StatusOK, body)
}

func (h *ProxyHandler) pageParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil || page < 1 {
		response.Error(w, apierror.BadRequest("page must be a positive integer"))
		return 0, false
	}
	return page, true
}

func (h *ProxyHandler) writeUpstreamError(w http.ResponseWriter, op string, err error) {
	log.Printf("[ProxyHandler] %s failed: %v", op, err)
	response.Error(w, apierror.BadGateway(""))
}
