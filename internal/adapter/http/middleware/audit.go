package middleware

import (
	"encoding/json"
	"time"

	"github.com/robavelii/FusionForms/internal/core/domain"
	"github.com/robavelii/FusionForms/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditLog creates an audit middleware that logs successful write operations.
// It maps HTTP methods and route patterns to audit actions.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only audit successful write operations (status 2xx)
		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}
		if c.Request.Method == "GET" || c.Request.Method == "HEAD" || c.Request.Method == "OPTIONS" {
			return
		}

		action, resourceType := mapPathToAction(c.FullPath(), c.Request.Method)
		if action == "" {
			return
		}

		var userID *uuid.UUID
		if v, exists := c.Get(CtxUserID); exists {
			if id, ok := v.(uuid.UUID); ok {
				userID = &id
			}
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			UserID:       userID,
			Action:       action,
			ResourceType: resourceType,
			ResourceID:   c.Param("id"),
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now(),
		})
	}
}

func mapPathToAction(route, method string) (domain.AuditAction, string) {
	switch {
	case route == "/api/v1/auth/register" && method == "POST":
		return domain.AuditActionRegister, "user"
	case route == "/api/v1/auth/login" && method == "POST":
		return domain.AuditActionLogin, "session"
	case route == "/api/v1/forms" && method == "POST":
		return domain.AuditActionCreateForm, "form"
	case route == "/api/v1/forms/:id/publish" && method == "POST":
		return domain.AuditActionPublishForm, "form"
	case route == "/api/v1/forms/:id/submissions" && method == "POST":
		return domain.AuditActionSubmit, "submission"
	case route == "/api/v1/public/forms/:id/submissions" && method == "POST":
		return domain.AuditActionSubmit, "submission"
	case route == "/api/v1/forms/:id/webhooks" && method == "POST":
		return domain.AuditActionCreateWebhook, "webhook"
	case route == "/api/v1/webhooks/:id" && method == "DELETE":
		return domain.AuditActionDeleteWebhook, "webhook"
	case route == "/api/v1/webhooks/:id/test" && method == "POST":
		return domain.AuditActionTestWebhook, "webhook"
	}
	return "", ""
}
