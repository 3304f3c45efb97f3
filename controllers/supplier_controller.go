package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cnc-shop-api/config"
	"github.com/kendall-kelly/cnc-shop-api/models"
	"github.com/shopspring/decimal"
)

// SupplierRequest represents the request body for creating or replacing a supplier
type SupplierRequest struct {
	Name               string           `json:"name" binding:"required"`
	ContactInfo        *string          `json:"contact_info"`
	OutstandingPayment *decimal.Decimal `json:"outstanding_payment"`
}

func bindSupplier(c *gin.Context, s *models.Supplier) bool {
	var req SupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return false
	}
	name, ok := requiredName(c, "name", req.Name)
	if !ok {
		return false
	}
	if err := nonNegative("outstanding_payment", req.OutstandingPayment); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return false
	}
	s.Name = name
	s.ContactInfo = blankToNil(req.ContactInfo)
	s.OutstandingPayment = decimalOrZero(req.OutstandingPayment)
	return true
}

// ListSuppliers handles GET /api/v1/suppliers
func ListSuppliers(c *gin.Context) {
	var suppliers []models.Supplier
	if err := config.GetDB().WithContext(c.Request.Context()).Order("name ASC").Find(&suppliers).Error; err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch suppliers")
		return
	}
	respondOK(c, http.StatusOK, suppliers)
}

// GetSupplier handles GET /api/v1/suppliers/:id
func GetSupplier(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	supplier, ok := findRecord[models.Supplier](c, config.GetDB(), id, "SUPPLIER_NOT_FOUND", "Supplier not found")
	if !ok {
		return
	}
	respondOK(c, http.StatusOK, supplier)
}

// CreateSupplier handles POST /api/v1/suppliers
func CreateSupplier(c *gin.Context) {
	var supplier models.Supplier
	if !bindSupplier(c, &supplier) {
		return
	}
	if err := config.GetDB().WithContext(c.Request.Context()).Create(&supplier).Error; err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create supplier")
		return
	}
	respondOK(c, http.StatusCreated, supplier)
}

// UpdateSupplier handles PUT /api/v1/suppliers/:id
func UpdateSupplier(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	db := config.GetDB()
	supplier, ok := findRecord[models.Supplier](c, db, id, "SUPPLIER_NOT_FOUND", "Supplier not found")
	if !ok {
		return
	}
	if !bindSupplier(c, supplier) {
		return
	}
	if err := db.WithContext(c.Request.Context()).Save(supplier).Error; err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update supplier")
		return
	}
	respondOK(c, http.StatusOK, supplier)
}

// DeleteSupplier handles DELETE /api/v1/suppliers/:id
func DeleteSupplier(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	result := config.GetDB().WithContext(c.Request.Context()).Delete(&models.Supplier{}, id)
	if result.Error != nil {
		_ = c.Error(result.Error)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete supplier")
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, "SUPPLIER_NOT_FOUND", "Supplier not found")
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": id})
}
