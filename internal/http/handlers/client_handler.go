package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"estatehub/internal/auth"
	"estatehub/internal/crm"
	"estatehub/internal/models"
	"estatehub/internal/store"
)

func ListClients(svc *crm.Clients) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		clients, err := svc.List(c.Request.Context(), p)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"clients": clients})
	}
}

func GetClient(svc *crm.Clients) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		id, ok := idParam(c)
		if !ok {
			return
		}
		client, err := svc.Get(c.Request.Context(), p, id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"client": client})
	}
}

func CreateClient(svc *crm.Clients, st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		var in crm.ClientInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		client, err := svc.Create(c.Request.Context(), p, in)
		if err != nil {
			writeError(c, err)
			return
		}
		recordAudit(st, c, p, "clients.create", models.EntityClient, client.ID, nil)
		c.JSON(http.StatusCreated, gin.H{"client": client})
	}
}

func UpdateClient(svc *crm.Clients, st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		id, ok := idParam(c)
		if !ok {
			return
		}
		var in crm.ClientInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		client, err := svc.Update(c.Request.Context(), p, id, in)
		if err != nil {
			writeError(c, err)
			return
		}
		recordAudit(st, c, p, "clients.update", models.EntityClient, id, nil)
		c.JSON(http.StatusOK, gin.H{"client": client})
	}
}

func DeleteClient(svc *crm.Clients, st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		id, ok := idParam(c)
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), p, id); err != nil {
			writeError(c, err)
			return
		}
		recordAudit(st, c, p, "clients.delete", models.EntityClient, id, nil)
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	}
}
