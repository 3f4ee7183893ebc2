package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"estatehub/internal/auth"
	"estatehub/internal/crm"
	"estatehub/internal/models"
	"estatehub/internal/rbac"
)

// LoginHandler authenticates a local user and returns a session JWT, set as
// a cookie as well for browser clients.
func LoginHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var user models.User
		if err := db.Where("email = ?", input.Email).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		if user.Status != models.UserActive {
			c.JSON(http.StatusForbidden, gin.H{"error": "account deactivated"})
			return
		}

		tokenString, err := auth.IssueToken(user, jwtSecret, 24*time.Hour)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create token"})
			return
		}

		c.SetCookie("token", tokenString, 3600*24, "/", "", false, true)
		c.JSON(http.StatusOK, gin.H{
			"token": tokenString,
			"user": gin.H{
				"email":  user.Email,
				"name":   user.Name,
				"org_id": user.OrgID,
			},
		})
	}
}

// LogoutHandler clears the session cookie.
func LogoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetCookie("token", "", -1, "/", "", false, true)
		c.JSON(http.StatusOK, gin.H{"status": "logged out"})
	}
}

// RegisterHandler redeems an invite token into a new account. Public route.
func RegisterHandler(users *crm.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in crm.RedeemInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		user, err := users.Redeem(c.Request.Context(), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"user": gin.H{
			"id":     user.ID,
			"org_id": user.OrgID,
			"email":  user.Email,
			"name":   user.Name,
		}})
	}
}

// MeHandler returns the resolved principal: identity, admin flag, and the
// permission keys in effect for this request.
func MeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		keys := make([]string, 0, len(p.Permissions))
		for k := range p.Permissions {
			keys = append(keys, k)
		}
		c.JSON(http.StatusOK, gin.H{
			"user_id":     p.UserID,
			"org_id":      p.OrgID,
			"email":       p.Email,
			"is_admin":    p.IsAdmin,
			"permissions": keys,
		})
	}
}

// Require gates a route on one permission key; ownership-scoped rules run
// inside the services.
func Require(permKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		if d := rbac.Check(p, permKey); !d.Allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden", "reason": d.Reason, "missing": permKey})
			return
		}
		c.Next()
	}
}

// RequireAdmin gates administrative routes. Non-admins get 403 before any
// payload is looked at.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.MustPrincipal(c)
		if !p.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden", "reason": rbac.ReasonAdminOnly})
			return
		}
		c.Next()
	}
}
