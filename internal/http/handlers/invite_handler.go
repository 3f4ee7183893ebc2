package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"estatehub/internal/auth"
	"estatehub/internal/crm"
	"estatehub/internal/models"
	"estatehub/internal/store"
)

// CreateInvite issues a one-time invite token for an email address.
// Admin-only route; the token is returned once and never listed again.
func CreateInvite(svc *crm.Users, st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		var in crm.InviteInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		invite, err := svc.Invite(c.Request.Context(), p, in)
		if err != nil {
			writeError(c, err)
			return
		}
		recordAudit(st, c, p, "users.invite", models.EntityUser, invite.ID, map[string]any{"email": invite.Email, "ttl_minutes": in.TTLMinutes})
		c.JSON(http.StatusCreated, gin.H{
			"token":      invite.Token,
			"expires_at": invite.ExpiresAt,
			"id":         invite.ID,
		})
	}
}
