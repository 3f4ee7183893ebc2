package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"estatehub/internal/auth"
	"estatehub/internal/crm"
	"estatehub/internal/models"
	"estatehub/internal/store"
)

func ListConnections(svc *crm.Connections) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		conns, err := svc.List(c.Request.Context(), p)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"connections": conns})
	}
}

func RequestConnection(svc *crm.Connections, st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		var in crm.ConnectionInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		conn, err := svc.Request(c.Request.Context(), p, in)
		if err != nil {
			writeError(c, err)
			return
		}
		recordAudit(st, c, p, "connections.request", models.EntityConnection, conn.ID, nil)
		c.JSON(http.StatusCreated, gin.H{"connection": conn})
	}
}

func AcceptConnection(svc *crm.Connections, st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		id, ok := idParam(c)
		if !ok {
			return
		}
		conn, err := svc.Accept(c.Request.Context(), p, id)
		if err != nil {
			writeError(c, err)
			return
		}
		recordAudit(st, c, p, "connections.accept", models.EntityConnection, id, nil)
		c.JSON(http.StatusOK, gin.H{"connection": conn})
	}
}

func RejectConnection(svc *crm.Connections, st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		id, ok := idParam(c)
		if !ok {
			return
		}
		conn, err := svc.Reject(c.Request.Context(), p, id)
		if err != nil {
			writeError(c, err)
			return
		}
		recordAudit(st, c, p, "connections.reject", models.EntityConnection, id, nil)
		c.JSON(http.StatusOK, gin.H{"connection": conn})
	}
}
