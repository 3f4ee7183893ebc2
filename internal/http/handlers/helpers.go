package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"

	"estatehub/internal/apperr"
	"estatehub/internal/auth"
	"estatehub/internal/models"
	"estatehub/internal/store"
)

// writeError maps the service error taxonomy onto stable status codes with
// machine-usable reasons. Internals never leak past the 500 line.
func writeError(c *gin.Context, err error) {
	var pe *apperr.PermissionError
	var ve *apperr.ValidationError
	var ce *apperr.ConflictError
	switch {
	case errors.Is(err, apperr.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
	case errors.As(err, &pe):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "reason": pe.Reason})
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "field": ve.Field, "reason": ve.Reason})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.As(err, &ce):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict", "reason": ce.Reason})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("unexpected handler error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// idParam parses the :id path segment.
func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "field": "id", "reason": "must be a positive integer"})
		return 0, false
	}
	return id, true
}

// recordAudit writes the audit trail row for a completed mutation,
// best-effort.
func recordAudit(st *store.Store, c *gin.Context, p auth.Principal, action string, rt models.EntityType, rid int64, meta map[string]any) {
	var metaJSON datatypes.JSON
	if len(meta) > 0 {
		if b, err := json.Marshal(meta); err == nil {
			metaJSON = datatypes.JSON(b)
		}
	}
	st.Audit(&models.AuditLog{
		OrgID:         p.OrgID,
		UserID:        p.UserID,
		Action:        action,
		ResourceType:  string(rt),
		ResourceID:    rid,
		Metadata:      metaJSON,
		IP:            c.ClientIP(),
		UserAgent:     c.GetHeader("User-Agent"),
		InitiatorName: p.Email,
		CreatedAt:     time.Now(),
	})
}
