package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"timeclock-backend/internal/auth"
	"timeclock-backend/internal/models"
	"timeclock-backend/internal/server"
	"timeclock-backend/internal/testsupport"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, app *fiber.App, target string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestRegisterManagerBootstrapsOnce(t *testing.T) {
	testsupport.SetupDB(t)
	app := server.New(testsupport.Config())

	resp, body := postJSON(t, app, "/api/auth/register-manager", fiber.Map{
		"name": "Meg", "email": "Meg@Example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "meg@example.com", body["email"])
	assert.Equal(t, string(models.RoleManager), body["role"])

	// Once a manager exists the bootstrap endpoint shuts
	resp, body = postJSON(t, app, "/api/auth/register-manager", fiber.Map{
		"name": "Second", "email": "second@example.com", "password": "hunter22",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "A manager account already exists", body["error"])
}

func TestTokenLogin(t *testing.T) {
	testsupport.SetupDB(t)
	app := server.New(testsupport.Config())

	resp, _ := postJSON(t, app, "/api/auth/register-manager", fiber.Map{
		"name": "Meg", "email": "meg@example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := postJSON(t, app, "/api/auth/token", fiber.Map{
		"email": "meg@example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	token, ok := body["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)
	user := body["user"].(map[string]any)
	assert.Equal(t, "Meg", user["name"])
	assert.Equal(t, string(models.RoleManager), user["role"])

	// The token is a valid session
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	meResp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, meResp.StatusCode)

	var me map[string]any
	require.NoError(t, json.NewDecoder(meResp.Body).Decode(&me))
	assert.Equal(t, true, me["authenticated"])

	// Wrong password
	resp, body = postJSON(t, app, "/api/auth/token", fiber.Map{
		"email": "meg@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid email or password", body["error"])
}

func TestTokenLoginRejectsSSOOnlyAccount(t *testing.T) {
	testsupport.SetupDB(t)
	app := server.New(testsupport.Config())

	// Account created via the identity provider has no password hash.
	testsupport.CreateUser(t, "Sso", "sso@example.com", models.RoleCareworker)

	resp, body := postJSON(t, app, "/api/auth/token", fiber.Map{
		"email": "sso@example.com", "password": "anything",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid email or password", body["error"])
}

func TestMeWithoutSession(t *testing.T) {
	testsupport.SetupDB(t)
	app := server.New(testsupport.Config())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, false, body["authenticated"])
}

func TestParseTokenRejectsTampering(t *testing.T) {
	user := &models.User{Email: "x@example.com", Role: models.RoleCareworker}
	user.ID = 7

	secret := testsupport.Config().JWTSecret
	token, err := auth.GenerateToken(secret, user)
	require.NoError(t, err)

	claims, err := auth.ParseToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, models.RoleCareworker, claims.Role)

	_, err = auth.ParseToken("another-secret-another-secret-another", token)
	assert.Error(t, err)

	_, err = auth.ParseToken(secret, token+"x")
	assert.Error(t, err)
}
