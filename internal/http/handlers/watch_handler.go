package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"estatehub/internal/auth"
	"estatehub/internal/crm"
	"estatehub/internal/models"
	"estatehub/internal/store"
)

// WatchEntity returns a handler subscribing the caller to the entity kind
// the route is mounted under.
func WatchEntity(svc *crm.Watches, st *store.Store, et models.EntityType) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		id, ok := idParam(c)
		if !ok {
			return
		}
		if err := svc.Watch(c.Request.Context(), p, et, id); err != nil {
			writeError(c, err)
			return
		}
		recordAudit(st, c, p, "watch.add", et, id, nil)
		c.JSON(http.StatusOK, gin.H{"status": "watching"})
	}
}

func UnwatchEntity(svc *crm.Watches, st *store.Store, et models.EntityType) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		id, ok := idParam(c)
		if !ok {
			return
		}
		if err := svc.Unwatch(c.Request.Context(), p, et, id); err != nil {
			writeError(c, err)
			return
		}
		recordAudit(st, c, p, "watch.remove", et, id, nil)
		c.JSON(http.StatusOK, gin.H{"status": "not watching"})
	}
}
