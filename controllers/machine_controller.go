package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cnc-shop-api/config"
	"github.com/kendall-kelly/cnc-shop-api/models"
)

// MachineRequest represents the request body for creating or replacing a machine
type MachineRequest struct {
	Name   string  `json:"name" binding:"required"`
	Model  *string `json:"model"`
	Status string  `json:"status"`
}

func bindMachine(c *gin.Context, m *models.Machine) bool {
	var req MachineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return false
	}
	name, ok := requiredName(c, "name", req.Name)
	if !ok {
		return false
	}
	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = models.MachineAvailable
	}
	if !models.IsValidMachineStatus(status) {
		respondError(c, http.StatusBadRequest, "INVALID_MACHINE_STATUS", "Status must be one of available, maintenance, unavailable")
		return false
	}
	m.Name = name
	m.Model = blankToNil(req.Model)
	m.Status = status
	return true
}

// ListMachines handles GET /api/v1/machines - ?status=available narrows the
// list to machines that can take new work
func ListMachines(c *gin.Context) {
	query := config.GetDB().WithContext(c.Request.Context()).Model(&models.Machine{})
	if status := c.Query("status"); status != "" {
		if !models.IsValidMachineStatus(status) {
			respondError(c, http.StatusBadRequest, "INVALID_MACHINE_STATUS", "Unknown machine status filter")
			return
		}
		query = query.Where("status = ?", status)
	}

	var machines []models.Machine
	if err := query.Order("name ASC").Find(&machines).Error; err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch machines")
		return
	}
	respondOK(c, http.StatusOK, machines)
}

// GetMachine handles GET /api/v1/machines/:id
func GetMachine(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	machine, ok := findRecord[models.Machine](c, config.GetDB(), id, "MACHINE_NOT_FOUND", "Machine not found")
	if !ok {
		return
	}
	respondOK(c, http.StatusOK, machine)
}

// CreateMachine handles POST /api/v1/machines
func CreateMachine(c *gin.Context) {
	var machine models.Machine
	if !bindMachine(c, &machine) {
		return
	}
	if err := config.GetDB().WithContext(c.Request.Context()).Create(&machine).Error; err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create machine")
		return
	}
	respondOK(c, http.StatusCreated, machine)
}

// UpdateMachine handles PUT /api/v1/machines/:id
func UpdateMachine(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	db := config.GetDB()
	machine, ok := findRecord[models.Machine](c, db, id, "MACHINE_NOT_FOUND", "Machine not found")
	if !ok {
		return
	}
	if !bindMachine(c, machine) {
		return
	}
	if err := db.WithContext(c.Request.Context()).Save(machine).Error; err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update machine")
		return
	}
	respondOK(c, http.StatusOK, machine)
}

// DeleteMachine handles DELETE /api/v1/machines/:id
func DeleteMachine(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	result := config.GetDB().WithContext(c.Request.Context()).Delete(&models.Machine{}, id)
	if result.Error != nil {
		_ = c.Error(result.Error)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete machine")
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, "MACHINE_NOT_FOUND", "Machine not found")
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": id})
}
