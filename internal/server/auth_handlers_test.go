package server

import (
	"net/http"
	"testing"

	"inkpress/internal/jobs"
	"inkpress/internal/models"
	"inkpress/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name":     "Ada",
		"email":    "  Ada@Example.com ",
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusCreated, status, string(body))
	reg := decode[service.AuthResult](t, body)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "ada@example.com", reg.User.Email)
	assert.Equal(t, models.RoleMember, reg.User.Role)
	assert.NotContains(t, string(body), "password\"")

	status, body = env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "ada@example.com",
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, status, string(body))
	login := decode[service.AuthResult](t, body)
	assert.Equal(t, reg.User.ID, login.User.ID)

	status, body = env.do(t, http.MethodGet, "/api/users/me", nil, login.Token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Ada", decode[models.User](t, body).Name)

	assert.Equal(t, []string{jobs.EmailWelcome, jobs.EmailLoginAlert}, env.queue.submitted())
}

func TestRegister_AdminToken(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name  string
		token string
		want  models.Role
	}{
		{"matching token", testAdminToken, models.RoleAdmin},
		{"wrong token", "nope", models.RoleMember},
		{"no token", "", models.RoleMember},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(t, http.MethodPost, "/api/auth/register", map[string]string{
				"name":               "user",
				"email":              "user" + string(rune('a'+i)) + "@example.com",
				"password":           "password123",
				"admin_access_token": tt.token,
			}, "")
			require.Equal(t, http.StatusCreated, status, string(body))
			assert.Equal(t, tt.want, decode[service.AuthResult](t, body).User.Role)
		})
	}
}

func TestRegister_Failures(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "taken", models.RoleMember)

	status, body := env.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "x", "email": "taken@example.com", "password": "password123",
	}, "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, models.CodeConflict, errorCode(t, body))

	status, body = env.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "x", "email": "new@example.com", "password": "short",
	}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.CodeValidation, errorCode(t, body))
}

func TestLogin_InvalidCredentialsAreUniform(t *testing.T) {
	env := newTestEnv(t)
	_, body := env.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Bob", "email": "bob@example.com", "password": "password123",
	}, "")
	require.NotEmpty(t, body)

	_, wrongPassword := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "bob@example.com", "password": "password999",
	}, "")
	status, unknownEmail := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "ghost@example.com", "password": "password123",
	}, "")

	assert.Equal(t, http.StatusUnauthorized, status)
	assert.JSONEq(t, string(wrongPassword), string(unknownEmail))
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.createUser(t, "carol", models.RoleMember)

	status, body := env.do(t, http.MethodGet, "/api/users/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, models.CodeUnauthorized, errorCode(t, body))

	status, _ = env.do(t, http.MethodGet, "/api/users/me", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = env.do(t, http.MethodGet, "/api/users/me", nil, token)
	assert.Equal(t, http.StatusOK, status)

	status, _ = env.do(t, http.MethodDelete, "/api/users/"+itoa(user.ID), nil, token)
	require.Equal(t, http.StatusNoContent, status)

	status, _ = env.do(t, http.MethodGet, "/api/users/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAuthRequired_UsesStoredRole(t *testing.T) {
	env := newTestEnv(t)
	admin, token := env.createUser(t, "demoted", models.RoleAdmin)

	status, _ := env.do(t, http.MethodGet, "/api/users", nil, token)
	assert.Equal(t, http.StatusOK, status)

	require.NoError(t, env.db.Model(admin).Update("role", models.RoleMember).Error)

	status, body := env.do(t, http.MethodGet, "/api/users", nil, token)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, models.CodeForbidden, errorCode(t, body))
}
