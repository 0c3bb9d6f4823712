// internal/service/points/interfaces/http_handler.go
package interfaces

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"gpoffer/internal/service/points/application"
	"gpoffer/internal/service/points/domain"
)

// WalletHandler 封装了 points 服务的 HTTP 处理器
type WalletHandler struct {
	service *application.PointsService
}

// NewWalletHandler 创建一个新的 HTTP 处理器实例
func NewWalletHandler(service *application.PointsService) *WalletHandler {
	return &WalletHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *WalletHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/wallet/balance", h.handleBalance)
	mux.HandleFunc("/wallet/transactions", h.handleTransactions)
	mux.HandleFunc("/wallet/purchase", h.handlePurchasePoints)
}

func (h *WalletHandler) handleBalance(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	sellerID := r.URL.Query().Get("sellerId")
	balance, err := h.service.Balance(ctx, sellerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sellerId": sellerID, "balance": balance})
}

func (h *WalletHandler) handleTransactions(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	txs, err := h.service.Transactions(ctx, r.URL.Query().Get("sellerId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"transactions": txs})
}

// purchaseRequest 是积分充值的入参。支付本身由外部协作方完成，
// 这里只在支付确认后入账，凭证号记进台账。
type purchaseRequest struct {
	SellerID         string `json:"sellerId"`
	Amount           int64  `json:"amount"`
	PaymentMethod    string `json:"paymentMethod"`
	PaymentReference string `json:"paymentReference,omitempty"`
}

func (h *WalletHandler) handlePurchasePoints(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	reason := fmt.Sprintf("purchased %d points via %s", req.Amount, req.PaymentMethod)
	if err := h.service.Credit(ctx, req.SellerID, req.Amount, reason, req.PaymentReference); err != nil {
		writeError(w, err)
		return
	}
	balance, err := h.service.Balance(ctx, req.SellerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"sellerId": req.SellerID, "balance": balance})
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
	case errors.Is(err, domain.ErrInvalidAmount):
		statusCode = http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientPoints):
		statusCode = http.StatusForbidden
	default:
		statusCode = http.StatusInternalServerError
	}
	http.Error(w, err.Error(), statusCode)
}
