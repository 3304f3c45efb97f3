package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cnc-shop-api/config"
	"github.com/kendall-kelly/cnc-shop-api/services"
)

func analyticsRange(c *gin.Context) (services.DateRange, bool) {
	from, to, ok := parseDateRange(c)
	if !ok {
		return services.DateRange{}, false
	}
	return services.DateRange{From: from, To: to}, true
}

// GetAnalyticsSummary handles GET /api/v1/analytics/summary - the dashboard cards
func GetAnalyticsSummary(c *gin.Context) {
	r, ok := analyticsRange(c)
	if !ok {
		return
	}
	summary, err := services.NewAnalyticsService(config.GetDB()).Summary(c.Request.Context(), r)
	if err != nil {
		respondServiceError(c, err, "compute summary")
		return
	}
	respondOK(c, http.StatusOK, summary)
}

// GetMonthlyRevenue handles GET /api/v1/analytics/revenue?year=2025 - twelve
// months of booked order value, defaulting to the current year
func GetMonthlyRevenue(c *gin.Context) {
	year := time.Now().Year()
	if raw := c.Query("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 1970 || y > 9999 {
			respondError(c, http.StatusBadRequest, "INVALID_YEAR", "year must be a four digit year")
			return
		}
		year = y
	}

	revenue, err := services.NewAnalyticsService(config.GetDB()).MonthlyRevenue(c.Request.Context(), year)
	if err != nil {
		respondServiceError(c, err, "compute revenue")
		return
	}
	respondOK(c, http.StatusOK, gin.H{
		"year":   year,
		"months": revenue,
	})
}

// GetStatusDistribution handles GET /api/v1/analytics/status
func GetStatusDistribution(c *gin.Context) {
	r, ok := analyticsRange(c)
	if !ok {
		return
	}
	counts, err := services.NewAnalyticsService(config.GetDB()).StatusCounts(c.Request.Context(), r)
	if err != nil {
		respondServiceError(c, err, "compute status distribution")
		return
	}
	respondOK(c, http.StatusOK, counts)
}

// GetMaterialUsage handles GET /api/v1/analytics/materials
func GetMaterialUsage(c *gin.Context) {
	r, ok := analyticsRange(c)
	if !ok {
		return
	}
	usage, err := services.NewAnalyticsService(config.GetDB()).MaterialUsage(c.Request.Context(), r)
	if err != nil {
		respondServiceError(c, err, "compute material usage")
		return
	}
	respondOK(c, http.StatusOK, usage)
}

// GetStaffWorkload handles GET /api/v1/analytics/staff
func GetStaffWorkload(c *gin.Context) {
	r, ok := analyticsRange(c)
	if !ok {
		return
	}
	tasks, err := services.NewAnalyticsService(config.GetDB()).StaffTasks(c.Request.Context(), r)
	if err != nil {
		respondServiceError(c, err, "compute staff workload")
		return
	}
	respondOK(c, http.StatusOK, tasks)
}
