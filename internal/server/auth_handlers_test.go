package server

import (
	"net/http"
	"testing"

	"folio/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func TestSignupAndLogin(t *testing.T) {
	env := newTestEnv(t, nil)
	const password = "Str0ng!Passw0rd"

	resp, body := env.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name":     "Alice",
		"email":    "Alice@Example.com",
		"password": password,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	signup := decode[authResponse](t, body)
	assert.NotEmpty(t, signup.Token)
	assert.Equal(t, "alice@example.com", signup.User.Email)
	assert.NotContains(t, string(body), "password")

	resp, body = env.do(t, http.MethodGet, "/api/users/me", signup.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, signup.User.ID, decode[models.User](t, body).ID)

	tests := []struct {
		name   string
		path   string
		body   map[string]string
		status int
	}{
		{"duplicate signup", "/api/auth/signup", map[string]string{"name": "A", "email": "alice@example.com", "password": password}, http.StatusConflict},
		{"weak password", "/api/auth/signup", map[string]string{"name": "B", "email": "b@example.com", "password": "short"}, http.StatusBadRequest},
		{"bad email", "/api/auth/signup", map[string]string{"name": "B", "email": "nope", "password": password}, http.StatusBadRequest},
		{"wrong password", "/api/auth/login", map[string]string{"email": "alice@example.com", "password": "Wr0ng!Password"}, http.StatusUnauthorized},
		{"unknown email", "/api/auth/login", map[string]string{"email": "ghost@example.com", "password": password}, http.StatusUnauthorized},
		{"login", "/api/auth/login", map[string]string{"email": "ALICE@example.com", "password": password}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := env.do(t, http.MethodPost, tt.path, "", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestGenerateToken_Claims(t *testing.T) {
	env := newTestEnv(t, nil)
	token, err := env.server.generateToken(&models.User{ID: "u1", Name: "Alice"})
	require.NoError(t, err)

	claims, err := env.server.parseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, tokenIssuer, claims.Issuer)
	assert.NotEmpty(t, claims.ID)

	other, err := env.server.generateToken(&models.User{ID: "u1"})
	require.NoError(t, err)
	otherClaims, err := env.server.parseToken(other)
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, otherClaims.ID)
}
