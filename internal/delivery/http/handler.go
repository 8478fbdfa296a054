package httpd

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yuanbr/escrow-order-service/internal/domain"
	"github.com/yuanbr/escrow-order-service/internal/quote"
	orderdto "github.com/yuanbr/escrow-order-service/internal/usecase/dto/order"
	usecase "github.com/yuanbr/escrow-order-service/internal/usecase/order"
	"go.uber.org/zap"
)

type Handler struct {
	uc       usecase.OrderUsecase
	calc     *quote.Calculator
	validate *validator.Validate
	log      *zap.Logger
}

func NewHandler(uc usecase.OrderUsecase, calc *quote.Calculator, log *zap.Logger) *Handler {
	return &Handler{
		uc:       uc,
		calc:     calc,
		validate: validator.New(),
		log:      log,
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestLogger(h.log))

	r.Post("/api/v1/quotes", h.Quote)
	r.Post("/api/v1/orders", h.CreateOrder)
	r.Get("/api/v1/orders", h.ListOrders)
	r.Get("/api/v1/orders/{orderID}", h.GetOrder)
	r.Post("/api/v1/orders/{orderID}/charge", h.RequestCharge)
	r.Post("/api/v1/orders/{orderID}/payment", h.ConfirmPayment)
	r.Post("/api/v1/orders/{orderID}/ship", h.MarkShipped)
	r.Post("/api/v1/orders/{orderID}/finalize", h.FinalizeOrder)
	r.Post("/api/v1/orders/{orderID}/dispute", h.OpenDispute)
	r.Get("/api/v1/healthz", h.Healthz)

	r.Handle("/metrics", promhttp.Handler())

	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrStaleTransition),
		errors.Is(err, domain.ErrReconciliationRequired):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrTrackingCodeRequired),
		errors.Is(err, domain.ErrDisputeReasonRequired):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	var q *quote.Quote
	var err error
	switch {
	case req.SourceAmount > 0 && req.DestinationBudget > 0:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "source_amount and destination_budget are mutually exclusive"})
		return
	case req.SourceAmount > 0:
		q, err = h.calc.Convert(req.SourceAmount, req.BuyerID)
	case req.DestinationBudget > 0:
		q, err = h.calc.Invert(req.DestinationBudget, req.BuyerID)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "source_amount or destination_budget is required"})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toQuoteResp(q))
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if (req.SourceAmount > 0) == (req.DestinationBudget > 0) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exactly one of source_amount and destination_budget is required"})
		return
	}

	order, err := h.uc.CreateOrder(&orderdto.CreateOrderInput{
		BuyerID:           req.BuyerID,
		SupplierID:        req.SupplierID,
		Description:       req.Description,
		SourceAmount:      req.SourceAmount,
		DestinationBudget: req.DestinationBudget,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResp(order))
}

func (h *Handler) RequestCharge(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	handle, err := h.uc.RequestCharge(r.Context(), orderID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toChargeResp(handle))
}

// ConfirmPayment is the provider webhook entry. The poll watcher calls the
// same usecase method, so a duplicate delivery is harmless.
func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	var req ConfirmPaymentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if err := h.uc.ConfirmPayment(r.Context(), orderID, req.PaidCents); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) MarkShipped(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	var req ShipReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	err := h.uc.MarkShipped(&orderdto.MarkShippedInput{
		OrderID:      orderID,
		TrackingCode: req.TrackingCode,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) FinalizeOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	if err := h.uc.FinalizeOrder(orderID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) OpenDispute(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	var req DisputeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	err := h.uc.OpenDispute(&orderdto.OpenDisputeInput{
		OrderID: orderID,
		Reason:  req.Reason,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	order, err := h.uc.GetOrderByID(orderID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResp(order))
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	buyerID := r.URL.Query().Get("buyer_id")
	supplierID := r.URL.Query().Get("supplier_id")

	var orders []*domain.Order
	var err error
	switch {
	case buyerID != "" && supplierID != "":
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "buyer_id and supplier_id are mutually exclusive"})
		return
	case buyerID != "":
		orders, err = h.uc.GetOrdersByBuyerID(buyerID)
	case supplierID != "":
		orders, err = h.uc.GetOrdersBySupplierID(supplierID)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "buyer_id or supplier_id is required"})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderListResp(orders))
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
