package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	ts := newTestServer(t)

	status, body := ts.do(t, http.MethodPost, "/auth/register", "", map[string]any{
		"email":    "ana@example.com",
		"password": "s3cret!",
		"name":     "Ana",
	})
	require.Equal(t, http.StatusCreated, status)

	var sess struct {
		User struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(body, &sess))
	assert.NotEmpty(t, sess.User.ID)
	assert.Equal(t, "ana@example.com", sess.User.Email)
	assert.NotEmpty(t, sess.AccessToken)
	assert.NotContains(t, string(body), "passwordHash")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ts := newTestServer(t)
	ts.registerUser(t, "ana@example.com")

	status, body := ts.do(t, http.MethodPost, "/auth/register", "", map[string]any{
		"email":    "ana@example.com",
		"password": "s3cret!",
		"name":     "Ana Again",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "email already registered")
}

func TestRegister_ShortPassword(t *testing.T) {
	ts := newTestServer(t)

	status, body := ts.do(t, http.MethodPost, "/auth/register", "", map[string]any{
		"email":    "ana@example.com",
		"password": "pw",
		"name":     "Ana",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "password")
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)
	ts.registerUser(t, "ana@example.com")

	status, body := ts.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"email":    "ana@example.com",
		"password": "s3cret!",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "accessToken")
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := newTestServer(t)
	ts.registerUser(t, "ana@example.com")

	status, _ := ts.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"email":    "ana@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestMe(t *testing.T) {
	ts := newTestServer(t)
	token := ts.registerUser(t, "ana@example.com")

	status, body := ts.do(t, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "ana@example.com")
}

func TestMe_NoToken(t *testing.T) {
	ts := newTestServer(t)

	status, _ := ts.do(t, http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestMe_GarbageToken(t *testing.T) {
	ts := newTestServer(t)

	status, _ := ts.do(t, http.MethodGet, "/auth/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}
