package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"estatehub/internal/models"
	"estatehub/internal/seed"
	"estatehub/internal/testutil"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	require.NoError(t, seed.FirstSetup(db))
	return NewRouter(db, testSecret), db
}

func do(t *testing.T, r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r *gin.Engine, email, password string) string {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/v1/auth/login", "",
		`{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func seedAgent(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("agentpass1"), bcrypt.DefaultCost)
	require.NoError(t, err)
	u := &models.User{OrgID: 1, Email: email, Name: "Agent", PasswordHash: string(hash), Status: models.UserActive}
	require.NoError(t, db.Create(u).Error)
	return u
}

func TestRoutesRequireToken(t *testing.T) {
	r, _ := newTestServer(t)

	for _, path := range []string{"/api/v1/clients", "/api/v1/me", "/api/v1/users"} {
		w := do(t, r, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestLoginAndClientFlow(t *testing.T) {
	r, _ := newTestServer(t)
	token := login(t, r, "admin@example.com", "admin123")

	w := do(t, r, http.MethodGet, "/api/v1/me", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		IsAdmin bool `json:"is_admin"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.True(t, me.IsAdmin)

	w = do(t, r, http.MethodPost, "/api/v1/clients", token, `{"name":"The Bergs","stage":"lead"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/v1/clients", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "The Bergs")
}

func TestAdminRoutesRejectNonAdmins(t *testing.T) {
	r, db := newTestServer(t)
	seedAgent(t, db, "plain@example.com")
	token := login(t, r, "plain@example.com", "agentpass1")

	// gate fires before the payload is read
	w := do(t, r, http.MethodPost, "/api/v1/users", token, `not even json`)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "admin_only")

	// a user with no roles has no permission keys either
	w = do(t, r, http.MethodGet, "/api/v1/clients", token, "")
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "missing_permission")
}

func TestDeactivatedUserIsLockedOut(t *testing.T) {
	r, db := newTestServer(t)
	u := seedAgent(t, db, "gone@example.com")
	token := login(t, r, "gone@example.com", "agentpass1")

	require.NoError(t, db.Model(u).Update("status", models.UserInactive).Error)

	w := do(t, r, http.MethodGet, "/api/v1/me", token, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
