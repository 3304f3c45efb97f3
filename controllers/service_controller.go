package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cnc-shop-api/config"
	"github.com/kendall-kelly/cnc-shop-api/models"
	"github.com/shopspring/decimal"
)

// ServiceRequest represents the request body for creating or replacing a shop service
type ServiceRequest struct {
	Name        string           `json:"name" binding:"required"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
}

func bindService(c *gin.Context, s *models.Service) bool {
	var req ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return false
	}
	name, ok := requiredName(c, "name", req.Name)
	if !ok {
		return false
	}
	if err := nonNegative("price", req.Price); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return false
	}
	s.Name = name
	s.Description = blankToNil(req.Description)
	s.Price = decimalOrZero(req.Price)
	return true
}

// ListServices handles GET /api/v1/services
func ListServices(c *gin.Context) {
	var list []models.Service
	if err := config.GetDB().WithContext(c.Request.Context()).Order("name ASC").Find(&list).Error; err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch services")
		return
	}
	respondOK(c, http.StatusOK, list)
}

// GetService handles GET /api/v1/services/:id
func GetService(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	service, ok := findRecord[models.Service](c, config.GetDB(), id, "SERVICE_NOT_FOUND", "Service not found")
	if !ok {
		return
	}
	respondOK(c, http.StatusOK, service)
}

// CreateService handles POST /api/v1/services
func CreateService(c *gin.Context) {
	var service models.Service
	if !bindService(c, &service) {
		return
	}
	if err := config.GetDB().WithContext(c.Request.Context()).Create(&service).Error; err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create service")
		return
	}
	respondOK(c, http.StatusCreated, service)
}

// UpdateService handles PUT /api/v1/services/:id
func UpdateService(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	db := config.GetDB()
	service, ok := findRecord[models.Service](c, db, id, "SERVICE_NOT_FOUND", "Service not found")
	if !ok {
		return
	}
	if !bindService(c, service) {
		return
	}
	if err := db.WithContext(c.Request.Context()).Save(service).Error; err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update service")
		return
	}
	respondOK(c, http.StatusOK, service)
}

// DeleteService handles DELETE /api/v1/services/:id
func DeleteService(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	result := config.GetDB().WithContext(c.Request.Context()).Delete(&models.Service{}, id)
	if result.Error != nil {
		_ = c.Error(result.Error)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete service")
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, "SERVICE_NOT_FOUND", "Service not found")
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": id})
}
