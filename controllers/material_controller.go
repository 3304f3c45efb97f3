package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cnc-shop-api/config"
	"github.com/kendall-kelly/cnc-shop-api/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MaterialRequest represents the request body for creating or replacing a material
type MaterialRequest struct {
	Name          string           `json:"name" binding:"required"`
	Thickness     *string          `json:"thickness"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	SellingPrice  *decimal.Decimal `json:"selling_price"`
	CurrentStock  *decimal.Decimal `json:"current_stock"`
	MinQuantity   *decimal.Decimal `json:"min_quantity"`
}

func bindMaterial(c *gin.Context, m *models.Material) bool {
	var req MaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return false
	}
	name, ok := requiredName(c, "name", req.Name)
	if !ok {
		return false
	}
	if err := nonNegative("prices and quantities", req.PurchasePrice, req.SellingPrice, req.CurrentStock, req.MinQuantity); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return false
	}

	m.Name = name
	m.Thickness = blankToNil(req.Thickness)
	m.PurchasePrice = decimalOrZero(req.PurchasePrice)
	m.SellingPrice = decimalOrZero(req.SellingPrice)
	m.CurrentStock = decimalOrZero(req.CurrentStock)
	m.MinQuantity = decimalOrZero(req.MinQuantity)
	return true
}

// ListMaterials handles GET /api/v1/materials - ?search= matches the name,
// ?low_stock=true keeps items below their reorder level
func ListMaterials(c *gin.Context) {
	query := config.GetDB().WithContext(c.Request.Context()).Model(&models.Material{})
	if term := strings.TrimSpace(c.Query("search")); term != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(term)+"%")
	}
	if c.Query("low_stock") == "true" {
		query = query.Where("current_stock < min_quantity")
	}

	var materials []models.Material
	if err := query.Order("name ASC").Find(&materials).Error; err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch materials")
		return
	}
	respondOK(c, http.StatusOK, materials)
}

// GetMaterial handles GET /api/v1/materials/:id
func GetMaterial(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	material, ok := findRecord[models.Material](c, config.GetDB(), id, "MATERIAL_NOT_FOUND", "Material not found")
	if !ok {
		return
	}
	respondOK(c, http.StatusOK, material)
}

// CreateMaterial handles POST /api/v1/materials
func CreateMaterial(c *gin.Context) {
	var material models.Material
	if !bindMaterial(c, &material) {
		return
	}
	if err := config.GetDB().WithContext(c.Request.Context()).Create(&material).Error; err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create material")
		return
	}
	zap.L().Info("material created", zap.Uint("material_id", material.ID), zap.String("name", material.Name))
	respondOK(c, http.StatusCreated, material)
}

// UpdateMaterial handles PUT /api/v1/materials/:id. Existing orders keep
// their stored prices until they are edited.
func UpdateMaterial(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	db := config.GetDB()
	material, ok := findRecord[models.Material](c, db, id, "MATERIAL_NOT_FOUND", "Material not found")
	if !ok {
		return
	}
	if !bindMaterial(c, material) {
		return
	}
	if err := db.WithContext(c.Request.Context()).Save(material).Error; err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update material")
		return
	}
	respondOK(c, http.StatusOK, material)
}

// DeleteMaterial handles DELETE /api/v1/materials/:id. Orders that used the
// material keep the dangling id.
func DeleteMaterial(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	result := config.GetDB().WithContext(c.Request.Context()).Delete(&models.Material{}, id)
	if result.Error != nil {
		_ = c.Error(result.Error)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete material")
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, "MATERIAL_NOT_FOUND", "Material not found")
		return
	}
	zap.L().Info("material deleted", zap.Uint("material_id", id))
	respondOK(c, http.StatusOK, gin.H{"id": id})
}
