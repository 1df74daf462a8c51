// Package httpapi exposes the admission service over HTTP for the forum's
// write path. Handlers are thin; all decision logic lives in the admission
// and engine packages.
package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/quillboard/admission/internal/admission"
	"gorm.io/gorm"
)

// RegisterRoutes registers the admission endpoints and health check.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, svc *admission.Service) {
	if r == nil || svc == nil {
		return
	}

	healthHandler := NewHealthHandler(db)
	r.GET("/healthz", healthHandler.Healthz)

	admissionHandler := NewAdmissionHandler(svc)
	group := r.Group("/v1/admission")
	group.POST("/check", admissionHandler.Check)
	group.POST("/vote-observed", admissionHandler.VoteObserved)
}
