package auth

import "github.com/gin-gonic/gin"

const principalKey = "principal"

// Principal is the resolved identity and authorization context for one
// request. It is built once by the JWT middleware and passed explicitly into
// every service call; nothing re-resolves it ambiently.
type Principal struct {
	UserID      int64
	OrgID       int64
	Email       string
	IsAdmin     bool
	Permissions map[string]struct{}
}

func (p Principal) Has(key string) bool {
	_, ok := p.Permissions[key]
	return ok
}

// SetPrincipal stores the principal on the gin context for downstream
// handlers.
func SetPrincipal(c *gin.Context, p Principal) {
	c.Set(principalKey, p)
}

// MustPrincipal returns the request principal. It is only valid behind the
// JWT middleware.
func MustPrincipal(c *gin.Context) Principal {
	v, _ := c.Get(principalKey)
	p, _ := v.(Principal)
	return p
}
