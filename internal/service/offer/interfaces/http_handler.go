// internal/service/offer/interfaces/http_handler.go
package interfaces

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"gpoffer/internal/service/offer/application"
	"gpoffer/internal/service/offer/domain"
	pointsdomain "gpoffer/internal/service/points/domain"
)

// OfferHandler 封装了 offer 服务的 HTTP 处理器
type OfferHandler struct {
	service *application.OfferApplicationService
}

// NewOfferHandler 创建一个新的 HTTP 处理器实例
func NewOfferHandler(service *application.OfferApplicationService) *OfferHandler {
	return &OfferHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *OfferHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/offers", h.handleListOffers)
	mux.HandleFunc("/offers/get", h.handleGetOffer)
	mux.HandleFunc("/offers/create", h.handleCreateOffer)
	mux.HandleFunc("/offers/submit", h.handleSubmitOffer)
	mux.HandleFunc("/offers/join", h.handleJoinOffer)
	mux.HandleFunc("/offers/cancel", h.handleCancelOffer)
	mux.HandleFunc("/offers/participants", h.handleListParticipants)
	mux.HandleFunc("/offers/quote", h.handlePreviewQuote)

	mux.HandleFunc("/admin/offers", h.handleAdminListOffers)
	mux.HandleFunc("/admin/offers/approve", h.handleApproveOffer)
	mux.HandleFunc("/admin/offers/reject", h.handleRejectOffer)
	mux.HandleFunc("/admin/stats", h.handleStats)
	mux.HandleFunc("/admin/settings", h.handleSettings)
	mux.HandleFunc("/admin/sweep", h.handleRunSweep)
}

// extract 从请求头还原 trace 上下文
func extract(r *http.Request) *http.Request {
	propagator := otel.GetTextMapPropagator()
	return r.WithContext(propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header)))
}

func (h *OfferHandler) handleListOffers(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	// 面向买家的公开列表：只返回 Active 且 Public 的报价
	offers, err := h.service.ListOffers(r.Context(), domain.ListFilter{
		Status:     domain.StatusActive,
		PublicOnly: true,
		SellerID:   r.URL.Query().Get("sellerId"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"offers": offers})
}

func (h *OfferHandler) handleAdminListOffers(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	// 后台列表：不限状态与可见性
	offers, err := h.service.ListOffers(r.Context(), domain.ListFilter{
		SellerID: r.URL.Query().Get("sellerId"),
		Status:   domain.Status(r.URL.Query().Get("status")),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"offers": offers})
}

func (h *OfferHandler) handleGetOffer(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	offer, err := h.service.GetOffer(r.Context(), r.URL.Query().Get("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"offer": offer})
}

func (h *OfferHandler) handleCreateOffer(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req application.CreateOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	offer, err := h.service.CreateOffer(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	offersCreatedTotal.Inc()
	writeJSON(w, http.StatusCreated, map[string]interface{}{"offer": offer})
}

func (h *OfferHandler) handleSubmitOffer(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.SubmitOffer)
}

func (h *OfferHandler) handleApproveOffer(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.ApproveOffer)
}

func (h *OfferHandler) handleRejectOffer(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.RejectOffer)
}

func (h *OfferHandler) handleCancelOffer(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.CancelOffer)
}

// transition 是 submit/approve/reject/cancel 共用的处理骨架。
func (h *OfferHandler) transition(w http.ResponseWriter, r *http.Request, op func(context.Context, string) (*domain.Offer, error)) {
	r = extract(r)
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	offer, err := op(r.Context(), r.URL.Query().Get("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	transitionsTotal.WithLabelValues(string(offer.Status)).Inc()
	writeJSON(w, http.StatusOK, map[string]interface{}{"offer": offer})
}

func (h *OfferHandler) handleJoinOffer(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	offerID := r.URL.Query().Get("id")
	userID := r.URL.Query().Get("userId")

	resp, err := h.service.JoinOffer(r.Context(), offerID, userID)
	if err != nil {
		joinsTotal.WithLabelValues("rejected").Inc()
		writeError(w, err)
		return
	}
	if resp.AlreadyJoined {
		joinsTotal.WithLabelValues("duplicate").Inc()
	} else {
		joinsTotal.WithLabelValues("joined").Inc()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *OfferHandler) handleListParticipants(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	participants, err := h.service.ListParticipants(r.Context(), r.URL.Query().Get("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"participants": participants})
}

func (h *OfferHandler) handlePreviewQuote(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	quote, err := h.service.PreviewQuote(r.Context(), r.URL.Query().Get("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (h *OfferHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *OfferHandler) handleSettings(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	switch r.Method {
	case http.MethodGet:
		settings, err := h.service.GetSettings(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, settings)
	case http.MethodPut:
		var settings domain.PlatformSettings
		if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		updated, err := h.service.UpdateSettings(r.Context(), settings)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *OfferHandler) handleRunSweep(w http.ResponseWriter, r *http.Request) {
	r = extract(r)
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	result, err := h.service.RunExpirySweep(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	sweepResolvedTotal.WithLabelValues("fulfilled").Add(float64(result.Fulfilled))
	sweepResolvedTotal.WithLabelValues("expired").Add(float64(result.Expired))
	sweepResolvedTotal.WithLabelValues("conflict").Add(float64(result.Conflicts))
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError 根据错误类型返回不同的 HTTP 状态码
func writeError(w http.ResponseWriter, err error) {
	var statusCode int
	switch {
	case errors.Is(err, domain.ErrOfferNotFound):
		statusCode = http.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		statusCode = http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidState):
		statusCode = http.StatusConflict
	case errors.Is(err, domain.ErrNotEligible),
		errors.Is(err, pointsdomain.ErrInsufficientPoints):
		statusCode = http.StatusForbidden // 请求本身有效，但平台拒绝执行
	default:
		statusCode = http.StatusInternalServerError
	}
	http.Error(w, err.Error(), statusCode)
}
