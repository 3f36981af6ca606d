package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"sportify-backoffice/internal/data/entity"
	"sportify-backoffice/pkg/auth"
	"sportify-backoffice/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

type staticVerifier map[string]string

func (v staticVerifier) Verify(_ context.Context, token string) (*auth.Identity, error) {
	uid, ok := v[token]
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Identity{UID: uid}, nil
}

type staticAdmins map[string]*entity.Admin

func (a staticAdmins) FindByUID(_ context.Context, uid string) (*entity.Admin, error) {
	return a[uid], nil
}

func echoUser(w http.ResponseWriter, r *http.Request) {
	uid, _ := utils.GetUserIDFromContext(r.Context())
	role, _ := utils.GetRoleFromContext(r.Context())
	w.Write([]byte(uid + "/" + role))
}

func TestAuthenticate(t *testing.T) {
	h := Authenticate(staticVerifier{"good": "user-1"}, zap.NewNop(), nil)(http.HandlerFunc(echoUser))

	tests := []struct {
		name   string
		method string
		target string
		header string
		code   int
		body   string
	}{
		{"bearer header", http.MethodPost, "/", "Bearer good", http.StatusOK, "user-1/"},
		{"lowercase scheme", http.MethodPost, "/", "bearer good", http.StatusOK, "user-1/"},
		{"query token on GET", http.MethodGet, "/?token=good", "", http.StatusOK, "user-1/"},
		{"query token ignored on POST", http.MethodPost, "/?token=good", "", http.StatusUnauthorized, ""},
		{"missing", http.MethodPost, "/", "", http.StatusUnauthorized, ""},
		{"rejected", http.MethodPost, "/", "Bearer bad", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.code, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestAuthenticateCustomDeny(t *testing.T) {
	deny := func(w http.ResponseWriter, message string) {
		utils.WriteJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "code": "unauthenticated", "error": message})
	}
	h := Authenticate(staticVerifier{}, zap.NewNop(), deny)(http.HandlerFunc(echoUser))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthenticated", gjson.Get(rec.Body.String(), "code").String())
}

func TestAdmin(t *testing.T) {
	admins := staticAdmins{
		"admin-1":    {UID: "admin-1", Role: entity.RoleAdmin, IsActive: true},
		"inactive-1": {UID: "inactive-1", Role: entity.RoleAdmin, IsActive: false},
		"viewer-1":   {UID: "viewer-1", Role: "viewer", IsActive: true},
	}
	h := Admin(admins, zap.NewNop())(http.HandlerFunc(echoUser))

	tests := []struct {
		uid  string
		code int
	}{
		{"admin-1", http.StatusOK},
		{"inactive-1", http.StatusForbidden},
		{"viewer-1", http.StatusForbidden},
		{"stranger", http.StatusForbidden},
		{"", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.uid, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.uid != "" {
				req = req.WithContext(utils.SetUserContext(req.Context(), tt.uid, ""))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.code, rec.Code)
			if tt.code == http.StatusOK {
				assert.Equal(t, "admin-1/admin", rec.Body.String())
			}
		})
	}
}
