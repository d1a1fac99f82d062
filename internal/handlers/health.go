package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthHandler provides liveness and subsystem health endpoints.
type HealthHandler struct {
	db        *gorm.DB
	cacheName string
}

func NewHealthHandler(db *gorm.DB, cacheName string) *HealthHandler {
	return &HealthHandler{db: db, cacheName: cacheName}
}

// CheckHealth returns the health status of all subsystems.
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	dbStatus := "ok"
	sqlDB, err := h.db.DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	c.JSON(200, gin.H{
		"status":  overall,
		"service": "carehub",
		"components": gin.H{
			"database": dbStatus,
			"cache":    h.cacheName,
		},
	})
}
