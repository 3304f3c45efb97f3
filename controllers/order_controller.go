package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cnc-shop-api/config"
	"github.com/kendall-kelly/cnc-shop-api/models"
	"github.com/kendall-kelly/cnc-shop-api/services"
	"github.com/kendall-kelly/cnc-shop-api/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderRequest is the order form body for create and update.
type OrderRequest struct {
	ClientName        string           `json:"client_name" binding:"required"`
	Phone             *string          `json:"phone"`
	Location          *string          `json:"location"`
	MaterialID        *uint            `json:"material_id"`
	MaterialQty       *decimal.Decimal `json:"material_qty"`
	ServiceID         *uint            `json:"service_id"`
	MachineID         *uint            `json:"machine_id"`
	AdditionalCharges *decimal.Decimal `json:"additional_charges"`
	Status            *string          `json:"status"`
	StaffIDs          []uint           `json:"staff_ids"`
}

func (r OrderRequest) input() services.OrderInput {
	return services.OrderInput{
		ClientName:        r.ClientName,
		Phone:             blankToNil(r.Phone),
		Location:          blankToNil(r.Location),
		MaterialID:        r.MaterialID,
		MaterialQty:       r.MaterialQty,
		ServiceID:         r.ServiceID,
		MachineID:         r.MachineID,
		AdditionalCharges: r.AdditionalCharges,
		Status:            r.Status,
		StaffIDs:          r.StaffIDs,
	}
}

// QuoteRequest carries only the priced selections of the order form.
type QuoteRequest struct {
	MaterialID        *uint            `json:"material_id"`
	MaterialQty       *decimal.Decimal `json:"material_qty"`
	ServiceID         *uint            `json:"service_id"`
	AdditionalCharges *decimal.Decimal `json:"additional_charges"`
}

func (r QuoteRequest) input() services.OrderInput {
	return services.OrderInput{
		MaterialID:        r.MaterialID,
		MaterialQty:       r.MaterialQty,
		ServiceID:         r.ServiceID,
		AdditionalCharges: r.AdditionalCharges,
	}
}

// UpdateStatusRequest is the body of PATCH /orders/:id/status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AssignStaffRequest is the body of PUT /orders/:id/staff
type AssignStaffRequest struct {
	StaffIDs []uint `json:"staff_ids"`
}

// AssignMachineRequest is the body of PUT /orders/:id/machine
type AssignMachineRequest struct {
	MachineID *uint `json:"machine_id"`
}

// PaymentRequest is the body of POST /orders/:id/payments
type PaymentRequest struct {
	PaymentMode string           `json:"payment_mode"`
	Amount      *decimal.Decimal `json:"amount"`
	PaymentDate *string          `json:"payment_date"`
}

var designStore services.DesignFileStore

// SetDesignFileStore sets where uploaded design files are kept (S3 in
// production, a local directory otherwise)
func SetDesignFileStore(store services.DesignFileStore) {
	designStore = store
}

func getDesignFileStore() services.DesignFileStore {
	if designStore == nil {
		return services.NewLocalDesignStore(utils.UploadDir)
	}
	return designStore
}

func newOrderService() *services.OrderService {
	policy := services.PolicyOpen
	if cfg := config.GetConfig(); cfg != nil {
		policy = cfg.PipelinePolicy
	}
	table, err := services.TransitionsForPolicy(policy)
	if err != nil {
		zap.L().Warn("unknown pipeline policy, allowing all transitions", zap.String("policy", policy))
		table = nil
	}
	return services.NewOrderService(config.GetDB(), services.NewPipeline(table), zap.L())
}

// CreateOrder handles POST /api/v1/orders - creates a priced order
func CreateOrder(c *gin.Context) {
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	if strings.TrimSpace(req.ClientName) == "" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "client_name cannot be blank")
		return
	}

	order, err := newOrderService().Create(c.Request.Context(), req.input())
	if err != nil {
		respondServiceError(c, err, "create order")
		return
	}
	respondOK(c, http.StatusCreated, withDesignURL(c, order))
}

// ListOrders handles GET /api/v1/orders - lists orders with search, status,
// date range and pagination
func ListOrders(c *gin.Context) {
	filter, ok := orderFilter(c)
	if !ok {
		return
	}
	filter.Page, filter.Limit = pagination(c)

	orders, total, err := newOrderService().List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err, "fetch orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       orders,
		"pagination": paginationMeta(filter.Page, filter.Limit, total),
	})
}

// GetOrderBoard handles GET /api/v1/orders/board - orders grouped by pipeline stage
func GetOrderBoard(c *gin.Context) {
	filter, ok := orderFilter(c)
	if !ok {
		return
	}
	filter.Status = ""

	board, err := newOrderService().Board(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err, "fetch order board")
		return
	}
	respondOK(c, http.StatusOK, board)
}

// GetOrder handles GET /api/v1/orders/:id
func GetOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	order, err := newOrderService().Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "fetch order")
		return
	}
	respondOK(c, http.StatusOK, withDesignURL(c, order))
}

// UpdateOrder handles PUT /api/v1/orders/:id - replaces the order form and reprices
func UpdateOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	if strings.TrimSpace(req.ClientName) == "" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "client_name cannot be blank")
		return
	}

	order, err := newOrderService().Update(c.Request.Context(), id, req.input())
	if err != nil {
		respondServiceError(c, err, "update order")
		return
	}
	respondOK(c, http.StatusOK, withDesignURL(c, order))
}

// DeleteOrder handles DELETE /api/v1/orders/:id
func DeleteOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	svc := newOrderService()
	order, err := svc.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "delete order")
		return
	}
	if err := svc.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "delete order")
		return
	}
	if order.DesignFileKey != nil {
		if err := getDesignFileStore().Delete(c.Request.Context(), *order.DesignFileKey); err != nil {
			zap.L().Warn("failed to remove design file of deleted order", zap.Uint("order_id", id), zap.Error(err))
		}
	}
	respondOK(c, http.StatusOK, gin.H{"id": id})
}

// UpdateOrderStatus handles PATCH /api/v1/orders/:id/status - moves an order
// between pipeline stages
func UpdateOrderStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	order, err := newOrderService().SetStatus(c.Request.Context(), id, strings.TrimSpace(req.Status))
	if err != nil {
		respondServiceError(c, err, "update order status")
		return
	}
	respondOK(c, http.StatusOK, order)
}

// AssignOrderStaff handles PUT /api/v1/orders/:id/staff - sets the exact staff list
func AssignOrderStaff(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req AssignStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	order, err := newOrderService().AssignStaff(c.Request.Context(), id, req.StaffIDs)
	if err != nil {
		respondServiceError(c, err, "assign staff")
		return
	}
	respondOK(c, http.StatusOK, order)
}

// AssignOrderMachine handles PUT /api/v1/orders/:id/machine - sets or clears the machine
func AssignOrderMachine(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req AssignMachineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	order, err := newOrderService().AssignMachine(c.Request.Context(), id, req.MachineID)
	if err != nil {
		respondServiceError(c, err, "assign machine")
		return
	}
	respondOK(c, http.StatusOK, order)
}

// ListOrderPayments handles GET /api/v1/orders/:id/payments
func ListOrderPayments(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	svc := newOrderService()
	payments, err := svc.ListPayments(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "fetch payments")
		return
	}
	order, err := svc.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "fetch payments")
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"payments":    payments,
		"final_price": order.FinalPrice,
		"total_paid":  order.TotalPaid,
		"remaining":   order.Remaining,
	})
}

// CreateOrderPayment handles POST /api/v1/orders/:id/payments - records a
// payment if it fits in the remaining balance
func CreateOrderPayment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	if req.Amount == nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "amount is required")
		return
	}
	date, err := parseDate(req.PaymentDate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_DATE", "payment_date must be a date in YYYY-MM-DD format")
		return
	}

	payment, err := newOrderService().RecordPayment(c.Request.Context(), id, services.PaymentInput{
		PaymentMode: req.PaymentMode,
		Amount:      *req.Amount,
		PaymentDate: date,
	})
	if err != nil {
		respondServiceError(c, err, "record payment")
		return
	}
	respondOK(c, http.StatusCreated, payment)
}

// DeleteOrderPayment handles DELETE /api/v1/orders/:id/payments/:paymentId
func DeleteOrderPayment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	paymentID, ok := parseID(c, "paymentId")
	if !ok {
		return
	}
	if err := newOrderService().DeletePayment(c.Request.Context(), id, paymentID); err != nil {
		respondServiceError(c, err, "delete payment")
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": paymentID})
}

// QuoteOrder handles POST /api/v1/orders/quote - prices selections without saving
func QuoteOrder(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	quote, err := newOrderService().Quote(c.Request.Context(), req.input())
	if err != nil {
		respondServiceError(c, err, "price order")
		return
	}
	respondOK(c, http.StatusOK, quote)
}

// GetOrderInvoice handles GET /api/v1/orders/:id/invoice. ?format=text
// returns a plain-text invoice for printing.
func GetOrderInvoice(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	invoice, err := newOrderService().BuildInvoice(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "build invoice")
		return
	}

	if c.Query("format") == "text" {
		c.String(http.StatusOK, invoice.Text())
		return
	}
	respondOK(c, http.StatusOK, invoice)
}

// UploadOrderDesign handles POST /api/v1/orders/:id/design - attaches a
// cutting file (multipart field "file")
func UploadOrderDesign(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "MISSING_FILE", "A design file is required in the \"file\" field")
		return
	}

	store := getDesignFileStore()
	order, err := newOrderService().AttachDesignFile(c.Request.Context(), id, store, fileHeader)
	if err != nil {
		respondServiceError(c, err, "upload design file")
		return
	}
	respondOK(c, http.StatusOK, withDesignURL(c, order))
}

// withDesignURL fills in a download link for the order's design file.
func withDesignURL(c *gin.Context, order *services.OrderView) *services.OrderView {
	if order.DesignFileKey == nil {
		return order
	}
	url, err := getDesignFileStore().URL(c.Request.Context(), *order.DesignFileKey)
	if err != nil {
		zap.L().Warn("failed to build design file URL", zap.Uint("order_id", order.ID), zap.Error(err))
		return order
	}
	order.DesignFileURL = &url
	return order
}

func orderFilter(c *gin.Context) (services.OrderFilter, bool) {
	from, to, ok := parseDateRange(c)
	if !ok {
		return services.OrderFilter{}, false
	}
	status := strings.TrimSpace(c.Query("status"))
	if status != "" && !models.IsValidOrderStatus(status) {
		respondError(c, http.StatusBadRequest, "INVALID_STATUS", "Unknown status filter")
		return services.OrderFilter{}, false
	}
	return services.OrderFilter{
		Search: c.Query("search"),
		Status: status,
		From:   from,
		To:     to,
	}, true
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
