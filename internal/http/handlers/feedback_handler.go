package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"estatehub/internal/auth"
	"estatehub/internal/crm"
	"estatehub/internal/models"
	"estatehub/internal/store"
)

func ListFeedback(svc *crm.Feedbacks) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		var fileID int64
		if s := c.Query("file_id"); s != "" {
			if parsed, err := strconv.ParseInt(s, 10, 64); err == nil && parsed > 0 {
				fileID = parsed
			}
		}
		entries, err := svc.List(c.Request.Context(), p, fileID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"feedback": entries})
	}
}

func CreateFeedback(svc *crm.Feedbacks, st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		var in crm.FeedbackInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		fb, err := svc.Create(c.Request.Context(), p, in)
		if err != nil {
			writeError(c, err)
			return
		}
		recordAudit(st, c, p, "feedback.create", models.EntityFeedback, fb.ID, map[string]any{"rating": in.Rating})
		c.JSON(http.StatusCreated, gin.H{"feedback": fb})
	}
}

func ResolveFeedback(svc *crm.Feedbacks, st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		id, ok := idParam(c)
		if !ok {
			return
		}
		fb, err := svc.Resolve(c.Request.Context(), p, id)
		if err != nil {
			writeError(c, err)
			return
		}
		recordAudit(st, c, p, "feedback.resolve", models.EntityFeedback, id, nil)
		c.JSON(http.StatusOK, gin.H{"feedback": fb})
	}
}
