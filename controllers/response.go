package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cnc-shop-api/services"
	"github.com/kendall-kelly/cnc-shop-api/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}

// respondServiceError maps domain errors to HTTP responses. Anything it does
// not recognise is a store failure.
func respondServiceError(c *gin.Context, err error, action string) {
	var uploadErr *utils.FileUploadError
	var balanceErr *services.BalanceError
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		respondError(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
	case errors.Is(err, services.ErrPaymentNotFound):
		respondError(c, http.StatusNotFound, "PAYMENT_NOT_FOUND", "Payment not found")
	case errors.Is(err, services.ErrMaterialNotFound):
		respondError(c, http.StatusUnprocessableEntity, "MATERIAL_NOT_FOUND", "Selected material does not exist")
	case errors.Is(err, services.ErrServiceNotFound):
		respondError(c, http.StatusUnprocessableEntity, "SERVICE_NOT_FOUND", "Selected service does not exist")
	case errors.Is(err, services.ErrMachineNotFound):
		respondError(c, http.StatusUnprocessableEntity, "MACHINE_NOT_FOUND", "Selected machine does not exist")
	case errors.Is(err, services.ErrStaffNotFound):
		respondError(c, http.StatusUnprocessableEntity, "STAFF_NOT_FOUND", "One or more staff members do not exist")
	case errors.As(err, &balanceErr):
		respondError(c, http.StatusUnprocessableEntity, "PAYMENT_EXCEEDS_BALANCE",
			"Payment amount exceeds the remaining balance of "+utils.FormatINR(balanceErr.Remaining))
	case errors.Is(err, services.ErrInvalidPaymentAmount):
		respondError(c, http.StatusBadRequest, "INVALID_PAYMENT_AMOUNT", err.Error())
	case errors.Is(err, services.ErrInvalidPaymentMode):
		respondError(c, http.StatusBadRequest, "INVALID_PAYMENT_MODE", "Payment mode must be one of cash, card, upi, credit")
	case errors.Is(err, services.ErrUnknownStatus):
		respondError(c, http.StatusBadRequest, "INVALID_STATUS", "Status must be one of lead, contacted, confirmed, progressing, completed, cancelled")
	case errors.Is(err, services.ErrTransitionNotAllowed):
		respondError(c, http.StatusConflict, "TRANSITION_NOT_ALLOWED", err.Error())
	case errors.Is(err, services.ErrMaterialQtyRequired):
		respondError(c, http.StatusBadRequest, "MATERIAL_QTY_REQUIRED", err.Error())
	case errors.Is(err, services.ErrNegativeQuantity):
		respondError(c, http.StatusBadRequest, "NEGATIVE_QUANTITY", err.Error())
	case errors.Is(err, services.ErrQuantityPrecision):
		respondError(c, http.StatusBadRequest, "INVALID_QUANTITY", err.Error())
	case errors.Is(err, services.ErrChargesPrecision):
		respondError(c, http.StatusBadRequest, "INVALID_ADDITIONAL_CHARGES", err.Error())
	case errors.As(err, &uploadErr):
		respondError(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message)
	default:
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to "+action)
	}
}

// parseID reads a positive numeric path parameter.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "INVALID_ID", fmt.Sprintf("Invalid %s", name))
		return 0, false
	}
	return uint(id), true
}

// parseDateRange reads from/to (YYYY-MM-DD) query params. to is inclusive in
// the API and returned as the exclusive start of the next day.
func parseDateRange(c *gin.Context) (from, to *time.Time, ok bool) {
	if raw := c.Query("from"); raw != "" {
		t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
		if err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_DATE", "from must be a date in YYYY-MM-DD format")
			return nil, nil, false
		}
		from = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
		if err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_DATE", "to must be a date in YYYY-MM-DD format")
			return nil, nil, false
		}
		next := t.AddDate(0, 0, 1)
		to = &next
	}
	if from != nil && to != nil && !from.Before(*to) {
		respondError(c, http.StatusBadRequest, "INVALID_DATE_RANGE", "from must not be after to")
		return nil, nil, false
	}
	return from, to, true
}

// parseDate reads an optional YYYY-MM-DD body value.
func parseDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(*raw), time.UTC)
	if err != nil {
		return nil, fmt.Errorf("date must be in YYYY-MM-DD format")
	}
	return &t, nil
}

// pagination reads page/limit with defaults of 1 and 10, capping limit at 100.
func pagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

func paginationMeta(page, limit int, total int64) gin.H {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return gin.H{
		"page":       page,
		"limit":      limit,
		"total":      total,
		"totalPages": totalPages,
	}
}

// nonNegative rejects negative money or quantity values in request bodies.
func nonNegative(field string, values ...*decimal.Decimal) error {
	for _, v := range values {
		if v == nil {
			continue
		}
		if v.IsNegative() {
			return fmt.Errorf("%s cannot be negative", field)
		}
		if !services.HasMoneyScale(*v) {
			return fmt.Errorf("%s can have at most two decimal places", field)
		}
	}
	return nil
}

// findRecord loads a row by primary key, answering 404 with code when it is missing.
func findRecord[T any](c *gin.Context, db *gorm.DB, id uint, code, message string) (*T, bool) {
	var record T
	if err := db.WithContext(c.Request.Context()).First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, code, message)
			return nil, false
		}
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch record")
		return nil, false
	}
	return &record, true
}

// requiredName trims a required name field, answering 400 when it is blank.
func requiredName(c *gin.Context, field, value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", field+" is required")
		return "", false
	}
	return value, true
}

func decimalOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return d.Round(2)
}
