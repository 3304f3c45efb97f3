package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cnc-shop-api/config"
	"github.com/kendall-kelly/cnc-shop-api/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StaffRequest represents the request body for creating or replacing a staff member
type StaffRequest struct {
	Name        string  `json:"name" binding:"required"`
	Role        *string `json:"role"`
	ContactInfo *string `json:"contact_info"`
	IsAvailable *bool   `json:"is_available"`
}

func bindStaff(c *gin.Context, s *models.Staff) bool {
	var req StaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return false
	}
	name, ok := requiredName(c, "name", req.Name)
	if !ok {
		return false
	}
	s.Name = name
	s.Role = blankToNil(req.Role)
	s.ContactInfo = blankToNil(req.ContactInfo)
	s.IsAvailable = true
	if req.IsAvailable != nil {
		s.IsAvailable = *req.IsAvailable
	}
	return true
}

// ListStaff handles GET /api/v1/staff - ?available=true|false filters by availability
func ListStaff(c *gin.Context) {
	query := config.GetDB().WithContext(c.Request.Context()).Model(&models.Staff{})
	switch c.Query("available") {
	case "true":
		query = query.Where("is_available = ?", true)
	case "false":
		query = query.Where("is_available = ?", false)
	}

	var staff []models.Staff
	if err := query.Order("name ASC").Find(&staff).Error; err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch staff")
		return
	}
	respondOK(c, http.StatusOK, staff)
}

// GetStaff handles GET /api/v1/staff/:id
func GetStaff(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	member, ok := findRecord[models.Staff](c, config.GetDB(), id, "STAFF_NOT_FOUND", "Staff member not found")
	if !ok {
		return
	}
	respondOK(c, http.StatusOK, member)
}

// CreateStaff handles POST /api/v1/staff
func CreateStaff(c *gin.Context) {
	var member models.Staff
	if !bindStaff(c, &member) {
		return
	}
	// Select keeps gorm from skipping a false is_available in favour of the column default.
	if err := config.GetDB().WithContext(c.Request.Context()).
		Select("Name", "Role", "ContactInfo", "IsAvailable", "CreatedAt", "UpdatedAt").
		Create(&member).Error; err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create staff member")
		return
	}
	respondOK(c, http.StatusCreated, member)
}

// UpdateStaff handles PUT /api/v1/staff/:id
func UpdateStaff(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	db := config.GetDB()
	member, ok := findRecord[models.Staff](c, db, id, "STAFF_NOT_FOUND", "Staff member not found")
	if !ok {
		return
	}
	if !bindStaff(c, member) {
		return
	}
	if err := db.WithContext(c.Request.Context()).Save(member).Error; err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update staff member")
		return
	}
	respondOK(c, http.StatusOK, member)
}

var errStaffMissing = errors.New("staff member not found")

// DeleteStaff handles DELETE /api/v1/staff/:id - also unassigns the member
// from every order
func DeleteStaff(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var unassigned int64
	err := config.GetDB().WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		links := tx.Where("staff_id = ?", id).Delete(&models.OrderStaff{})
		if links.Error != nil {
			return links.Error
		}
		unassigned = links.RowsAffected

		result := tx.Delete(&models.Staff{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errStaffMissing
		}
		return nil
	})
	if errors.Is(err, errStaffMissing) {
		respondError(c, http.StatusNotFound, "STAFF_NOT_FOUND", "Staff member not found")
		return
	}
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete staff member")
		return
	}

	zap.L().Info("staff member deleted", zap.Uint("staff_id", id), zap.Int64("orders_unassigned", unassigned))
	respondOK(c, http.StatusOK, gin.H{"id": id})
}
