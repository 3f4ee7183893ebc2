package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"estatehub/internal/auth"
	"estatehub/internal/crm"
	"estatehub/internal/models"
	"estatehub/internal/store"
)

// userResp keeps password hashes and provider internals out of responses.
type userResp struct {
	ID     int64             `json:"id"`
	OrgID  int64             `json:"org_id"`
	Email  string            `json:"email"`
	Name   string            `json:"name"`
	Status models.UserStatus `json:"status"`
}

func toUserResp(u *models.User) userResp {
	return userResp{ID: u.ID, OrgID: u.OrgID, Email: u.Email, Name: u.Name, Status: u.Status}
}

func ListUsers(svc *crm.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		users, err := svc.List(c.Request.Context(), p)
		if err != nil {
			writeError(c, err)
			return
		}
		out := make([]userResp, 0, len(users))
		for i := range users {
			out = append(out, toUserResp(&users[i]))
		}
		c.JSON(http.StatusOK, gin.H{"users": out})
	}
}

func CreateUser(svc *crm.Users, st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		var in crm.CreateUserInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		user, err := svc.Create(c.Request.Context(), p, in)
		if err != nil {
			writeError(c, err)
			return
		}
		recordAudit(st, c, p, "users.create", models.EntityUser, user.ID, nil)
		c.JSON(http.StatusCreated, gin.H{"user": toUserResp(user)})
	}
}

func ActivateUser(svc *crm.Users, st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		id, ok := idParam(c)
		if !ok {
			return
		}
		user, err := svc.Activate(c.Request.Context(), p, id)
		if err != nil {
			writeError(c, err)
			return
		}
		recordAudit(st, c, p, "users.activate", models.EntityUser, id, nil)
		c.JSON(http.StatusOK, gin.H{"user": toUserResp(user)})
	}
}

func DeactivateUser(svc *crm.Users, st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		id, ok := idParam(c)
		if !ok {
			return
		}
		user, err := svc.Deactivate(c.Request.Context(), p, id)
		if err != nil {
			writeError(c, err)
			return
		}
		recordAudit(st, c, p, "users.deactivate", models.EntityUser, id, nil)
		c.JSON(http.StatusOK, gin.H{"user": toUserResp(user)})
	}
}

// SyncUser upserts a local record from the identity provider's profile.
func SyncUser(svc *crm.Users, st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		var in crm.ProviderProfile
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		user, err := svc.Sync(c.Request.Context(), p, in)
		if err != nil {
			writeError(c, err)
			return
		}
		recordAudit(st, c, p, "users.sync", models.EntityUser, user.ID, map[string]any{"subject": in.Subject})
		c.JSON(http.StatusOK, gin.H{"user": toUserResp(user)})
	}
}

func AssignRoles(svc *crm.Users, st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		id, ok := idParam(c)
		if !ok {
			return
		}
		var in struct {
			RoleIDs []int64 `json:"role_ids"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := svc.AssignRoles(c.Request.Context(), p, id, in.RoleIDs); err != nil {
			writeError(c, err)
			return
		}
		recordAudit(st, c, p, "users.assign_roles", models.EntityUser, id, map[string]any{"role_ids": in.RoleIDs})
		c.JSON(http.StatusOK, gin.H{"status": "roles assigned"})
	}
}
