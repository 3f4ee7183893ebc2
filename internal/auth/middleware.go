package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"estatehub/internal/models"
)

// Claims represents the JWT claims structure issued by the login flow and by
// the hosted identity provider's token bridge.
type Claims struct {
	UserID int64  `json:"uid"`
	OrgID  int64  `json:"oid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// IssueToken signs a session token for the given user.
func IssueToken(u models.User, secret string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: u.ID,
		OrgID:  u.OrgID,
		Email:  u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
	return token.SignedString([]byte(secret))
}

// JWT returns a Gin middleware that validates the session token from either
// the Authorization header or a "token" cookie, verifies the user is still
// active in its organization, and resolves the full Principal (admin flag +
// permission set). The permission set is loaded fresh on every request so
// role edits take effect immediately.
func JWT(db *gorm.DB, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.GetHeader("Authorization")
		if tokenStr == "" {
			if cookie, err := c.Cookie("token"); err == nil {
				tokenStr = "Bearer " + cookie
			}
		}
		if tokenStr == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			c.Abort()
			return
		}

		tokenStr = strings.TrimSpace(strings.TrimPrefix(tokenStr, "Bearer "))

		token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(*Claims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			c.Abort()
			return
		}

		// Verify the user still exists inside the claimed organization.
		var user models.User
		if err := db.Where("id = ? AND org_id = ?", claims.UserID, claims.OrgID).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			c.Abort()
			return
		}
		if user.Status != models.UserActive {
			c.JSON(http.StatusForbidden, gin.H{"error": "account deactivated"})
			c.Abort()
			return
		}

		p, err := resolvePrincipal(db, user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve permissions"})
			c.Abort()
			return
		}

		SetPrincipal(c, p)
		c.Next()
	}
}

// resolvePrincipal loads the role and permission state for one user in one
// organization. The admin flag comes from the "admin" system role.
func resolvePrincipal(db *gorm.DB, user models.User) (Principal, error) {
	var adminCount int64
	err := db.
		Table("user_roles ur").
		Joins("JOIN roles r ON r.id = ur.role_id").
		Where("ur.user_id = ? AND ur.org_id = ? AND r.slug = ?", user.ID, user.OrgID, "admin").
		Count(&adminCount).Error
	if err != nil {
		return Principal{}, err
	}

	var keys []string
	err = db.
		Table("user_roles ur").
		Joins("JOIN roles r ON r.id = ur.role_id AND r.org_id = ?", user.OrgID).
		Joins("JOIN role_permissions rp ON rp.role_id = r.id").
		Joins("JOIN permissions p ON p.id = rp.permission_id").
		Where("ur.user_id = ? AND ur.org_id = ?", user.ID, user.OrgID).
		Pluck("p.`key`", &keys).Error
	if err != nil {
		return Principal{}, err
	}

	perms := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		perms[k] = struct{}{}
	}

	return Principal{
		UserID:      user.ID,
		OrgID:       user.OrgID,
		Email:       user.Email,
		IsAdmin:     adminCount > 0,
		Permissions: perms,
	}, nil
}
