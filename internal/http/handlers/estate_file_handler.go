package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"estatehub/internal/auth"
	"estatehub/internal/crm"
	"estatehub/internal/models"
	"estatehub/internal/store"
)

func ListEstateFiles(svc *crm.EstateFiles) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		files, err := svc.List(c.Request.Context(), p)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"files": files})
	}
}

func GetEstateFile(svc *crm.EstateFiles) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		id, ok := idParam(c)
		if !ok {
			return
		}
		file, err := svc.Get(c.Request.Context(), p, id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"file": file})
	}
}

func CreateEstateFile(svc *crm.EstateFiles, st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		var in crm.EstateFileInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		file, err := svc.Create(c.Request.Context(), p, in)
		if err != nil {
			writeError(c, err)
			return
		}
		recordAudit(st, c, p, "files.create", models.EntityEstateFile, file.ID, nil)
		c.JSON(http.StatusCreated, gin.H{"file": file})
	}
}

func UpdateEstateFile(svc *crm.EstateFiles, st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		id, ok := idParam(c)
		if !ok {
			return
		}
		var in crm.EstateFileInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		file, err := svc.Update(c.Request.Context(), p, id, in)
		if err != nil {
			writeError(c, err)
			return
		}
		recordAudit(st, c, p, "files.update", models.EntityEstateFile, id, nil)
		c.JSON(http.StatusOK, gin.H{"file": file})
	}
}

func UpdateEstateFileStatus(svc *crm.EstateFiles, st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		id, ok := idParam(c)
		if !ok {
			return
		}
		var in struct {
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		file, err := svc.UpdateStatus(c.Request.Context(), p, id, in.Status)
		if err != nil {
			writeError(c, err)
			return
		}
		recordAudit(st, c, p, "files.status", models.EntityEstateFile, id, map[string]any{"status": in.Status})
		c.JSON(http.StatusOK, gin.H{"file": file})
	}
}

func DeleteEstateFile(svc *crm.EstateFiles, st *store.Store) gin.HandlerFunc {
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
		recordAudit(st, c, p, "files.delete", models.EntityEstateFile, id, nil)
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	}
}
