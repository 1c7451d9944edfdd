package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"timeclock-backend/internal/config"
	"timeclock-backend/internal/database"
	"timeclock-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client for the token exchange and userinfo calls to the identity provider.
var oauthHTTPClient = &http.Client{Timeout: 10 * time.Second}

type tokenExchangeResponse struct {
	AccessToken      string `json:"access_token"`
	IDToken          string `json:"id_token"`
	TokenType        string `json:"token_type"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

type userInfoResponse struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func setSessionCookie(c *fiber.Ctx, cfg *config.Config, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionTTL.Seconds()),
		HTTPOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: "Lax",
	})
}

func clearCookie(c *fiber.Ctx, cfg *config.Config, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: "Lax",
	})
}

func callbackURL(cfg *config.Config) string {
	return strings.TrimRight(cfg.BaseURL, "/") + "/api/auth/callback"
}

// GET /api/auth/login
// Sends the browser to the identity provider's authorize page with a state
// nonce pinned in a short-lived cookie.
func LoginHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.AuthClientID == "" {
			return fiber.NewError(fiber.StatusServiceUnavailable, "Identity provider is not configured")
		}

		state := uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     StateCookieName,
			Value:    state,
			Path:     "/",
			MaxAge:   300, // 5 minutes
			HTTPOnly: true,
			Secure:   cfg.CookieSecure,
			SameSite: "Lax",
		})

		q := url.Values{}
		q.Set("client_id", cfg.AuthClientID)
		q.Set("redirect_uri", callbackURL(cfg))
		q.Set("response_type", "code")
		q.Set("scope", "openid profile email")
		q.Set("state", state)
		if hint := c.Query("screen_hint"); hint != "" {
			q.Set("screen_hint", hint)
		}

		loginURL := strings.TrimRight(cfg.AuthIssuerBaseURL, "/") + "/authorize?" + q.Encode()
		return c.Redirect(loginURL, fiber.StatusFound)
	}
}

// GET /api/auth/callback
// Validates the state nonce, exchanges the authorization code, resolves the
// user profile, upserts the user and opens a session. Failures bounce the
// browser back to the frontend rather than rendering JSON at a redirect URL.
func CallbackHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		code := c.Query("code")
		state := c.Query("state")

		if code == "" || state == "" {
			log.Println("Auth callback missing code or state")
			return c.Redirect(cfg.FrontendBaseURL, fiber.StatusFound)
		}

		storedState := c.Cookies(StateCookieName)
		clearCookie(c, cfg, StateCookieName)
		if storedState == "" || storedState != state {
			log.Println("Auth callback state mismatch")
			return c.Redirect(cfg.FrontendBaseURL, fiber.StatusFound)
		}

		info, err := exchangeCode(cfg, code)
		if err != nil {
			log.Println("Auth code exchange failed:", err)
			return c.Redirect(cfg.FrontendBaseURL, fiber.StatusFound)
		}

		user, err := upsertUser(info)
		if err != nil {
			log.Println("User upsert failed:", err)
			return c.Redirect(cfg.FrontendBaseURL, fiber.StatusFound)
		}

		token, err := GenerateToken(cfg.JWTSecret, user)
		if err != nil {
			log.Println("Session token generation failed:", err)
			return c.Redirect(cfg.FrontendBaseURL, fiber.StatusFound)
		}

		setSessionCookie(c, cfg, token)
		return c.Redirect(strings.TrimRight(cfg.FrontendBaseURL, "/")+"/dashboard", fiber.StatusFound)
	}
}

// GET /api/auth/logout
func LogoutHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		clearCookie(c, cfg, SessionCookieName)
		clearCookie(c, cfg, StateCookieName)

		if cfg.AuthClientID == "" {
			return c.Redirect(cfg.FrontendBaseURL, fiber.StatusFound)
		}

		q := url.Values{}
		q.Set("client_id", cfg.AuthClientID)
		q.Set("returnTo", cfg.FrontendBaseURL)
		logoutURL := strings.TrimRight(cfg.AuthIssuerBaseURL, "/") + "/v2/logout?" + q.Encode()
		return c.Redirect(logoutURL, fiber.StatusFound)
	}
}

// exchangeCode trades the authorization code for tokens and fetches the user
// profile from the provider's userinfo endpoint. The profile comes straight
// from the provider over TLS, so no local token verification is needed.
func exchangeCode(cfg *config.Config, code string) (*userInfoResponse, error) {
	issuer := strings.TrimRight(cfg.AuthIssuerBaseURL, "/")

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", cfg.AuthClientID)
	form.Set("client_secret", cfg.AuthClientSecret)
	form.Set("code", code)
	form.Set("redirect_uri", callbackURL(cfg))

	resp, err := oauthHTTPClient.PostForm(issuer+"/oauth/token", form)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	var tokens tokenExchangeResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return nil, fmt.Errorf("token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || tokens.AccessToken == "" {
		return nil, fmt.Errorf("token exchange rejected: %s %s", tokens.Error, tokens.ErrorDescription)
	}

	req, err := http.NewRequest(http.MethodGet, issuer+"/userinfo", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)

	infoResp, err := oauthHTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request: %w", err)
	}
	defer infoResp.Body.Close()

	if infoResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo rejected: status %d", infoResp.StatusCode)
	}

	var info userInfoResponse
	if err := json.NewDecoder(infoResp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("userinfo response: %w", err)
	}
	if info.Sub == "" || info.Email == "" {
		return nil, errors.New("userinfo response missing sub or email")
	}
	if info.Name == "" {
		info.Name = info.Email
	}

	return &info, nil
}

// upsertUser finds the account for an identity-provider profile, creating it
// on first login with the careworker default role. An account pre-provisioned
// by email (e.g. a manager created before their first SSO login) gets its
// subject id attached instead of a duplicate being created.
func upsertUser(info *userInfoResponse) (*models.User, error) {
	email := strings.TrimSpace(strings.ToLower(info.Email))

	var user models.User
	err := database.DB.Where("subject_id = ?", info.Sub).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = database.DB.Where("email = ?", email).First(&user).Error
	if err == nil {
		user.SubjectID = info.Sub
		if err := database.DB.Model(&user).Update("subject_id", info.Sub).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = models.User{
		SubjectID: info.Sub,
		Email:     email,
		Name:      info.Name,
		Role:      models.RoleCareworker,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
