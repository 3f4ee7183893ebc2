package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"estatehub/internal/auth"
	"estatehub/internal/crm"
	"estatehub/internal/models"
	"estatehub/internal/store"
)

func ListSections(svc *crm.Tasks) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		id, ok := idParam(c)
		if !ok {
			return
		}
		sections, err := svc.ListSections(c.Request.Context(), p, id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"sections": sections})
	}
}

func CreateSection(svc *crm.Tasks, st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		fileID, ok := idParam(c)
		if !ok {
			return
		}
		var in crm.SectionInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		section, err := svc.CreateSection(c.Request.Context(), p, fileID, in)
		if err != nil {
			writeError(c, err)
			return
		}
		recordAudit(st, c, p, "sections.create", models.EntitySection, section.ID, nil)
		c.JSON(http.StatusCreated, gin.H{"section": section})
	}
}

// DeleteSection removes a section and everything under it.
func DeleteSection(svc *crm.Tasks, st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		id, ok := idParam(c)
		if !ok {
			return
		}
		if err := svc.DeleteSection(c.Request.Context(), p, id); err != nil {
			writeError(c, err)
			return
		}
		recordAudit(st, c, p, "sections.delete", models.EntitySection, id, nil)
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	}
}

func ListTasks(svc *crm.Tasks) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		sectionID, ok := idParam(c)
		if !ok {
			return
		}
		tasks, err := svc.ListTasks(c.Request.Context(), p, sectionID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"tasks": tasks})
	}
}

func CreateTask(svc *crm.Tasks, st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		sectionID, ok := idParam(c)
		if !ok {
			return
		}
		var in crm.TaskInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		task, err := svc.CreateTask(c.Request.Context(), p, sectionID, in)
		if err != nil {
			writeError(c, err)
			return
		}
		recordAudit(st, c, p, "tasks.create", models.EntityTask, task.ID, nil)
		c.JSON(http.StatusCreated, gin.H{"task": task})
	}
}

func UpdateTaskStatus(svc *crm.Tasks, st *store.Store) gin.HandlerFunc {
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
		task, err := svc.UpdateStatus(c.Request.Context(), p, id, in.Status)
		if err != nil {
			writeError(c, err)
			return
		}
		recordAudit(st, c, p, "tasks.status", models.EntityTask, id, map[string]any{"status": in.Status})
		c.JSON(http.StatusOK, gin.H{"task": task})
	}
}

func DeleteTask(svc *crm.Tasks, st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		id, ok := idParam(c)
		if !ok {
			return
		}
		if err := svc.DeleteTask(c.Request.Context(), p, id); err != nil {
			writeError(c, err)
			return
		}
		recordAudit(st, c, p, "tasks.delete", models.EntityTask, id, nil)
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	}
}

func ListComments(svc *crm.Tasks) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		taskID, ok := idParam(c)
		if !ok {
			return
		}
		comments, err := svc.ListComments(c.Request.Context(), p, taskID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"comments": comments})
	}
}

func CreateComment(svc *crm.Tasks, st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		taskID, ok := idParam(c)
		if !ok {
			return
		}
		var in struct {
			Body string `json:"body" binding:"required"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		comment, err := svc.CreateComment(c.Request.Context(), p, taskID, in.Body)
		if err != nil {
			writeError(c, err)
			return
		}
		recordAudit(st, c, p, "tasks.comment", models.EntityTask, taskID, nil)
		c.JSON(http.StatusCreated, gin.H{"comment": comment})
	}
}
