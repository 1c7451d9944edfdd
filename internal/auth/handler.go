package auth

import (
	"strings"

	"timeclock-backend/internal/config"
	"timeclock-backend/internal/database"
	"timeclock-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type RegisterManagerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID    uint            `json:"id"`
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Role  models.UserRole `json:"role"`
}

// localSubjectID is the subject used for accounts created without the
// identity provider, mirroring the "auth0|..." convention.
func localSubjectID(email string) string {
	return "local|" + email
}

// POST /api/auth/register-manager
// One-time bootstrap for deployments without the identity provider: creates
// the first manager account. Refused once any manager exists; role assignment
// after that is a manual/back-office operation.
func RegisterManagerHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterManagerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		body.Name = strings.TrimSpace(body.Name)

		if body.Email == "" || body.Password == "" || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Missing required fields: name, email, password")
		}

		var count int64
		database.DB.Model(&models.User{}).
			Where("role = ?", models.RoleManager).
			Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusForbidden, "A manager account already exists")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
		}

		user := models.User{
			SubjectID:    localSubjectID(body.Email),
			Email:        body.Email,
			Name:         body.Name,
			PasswordHash: string(hash),
			Role:         models.RoleManager,
		}

		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create user")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":    user.ID,
			"email": user.Email,
			"role":  user.Role,
		})
	}
}

// POST /api/auth/token
// Local email+password login. Returns the session token and also sets the
// session cookie, so both browsers and API clients can use it.
func TokenHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body TokenRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		var user models.User
		if err := database.DB.Where("email = ?", body.Email).First(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")
		}

		// SSO-only accounts have no password and cannot use this endpoint.
		if user.PasswordHash == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")
		}

		token, err := GenerateToken(cfg.JWTSecret, &user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create session token")
		}

		setSessionCookie(c, cfg, token)

		return c.JSON(fiber.Map{
			"token": token,
			"user": UserResponse{
				ID:    user.ID,
				Name:  user.Name,
				Email: user.Email,
				Role:  user.Role,
			},
		})
	}
}

// GET /api/auth/me
// Probed by the client on page load, so it answers 401 with a JSON body
// instead of going through the generic error path.
func MeHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := sessionToken(c)
		if tokenStr == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"authenticated": false})
		}

		claims, err := ParseToken(cfg.JWTSecret, tokenStr)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"authenticated": false})
		}

		var user models.User
		if err := database.DB.First(&user, "id = ?", claims.UserID).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"authenticated": false})
		}

		return c.JSON(fiber.Map{
			"authenticated": true,
			"user": UserResponse{
				ID:    user.ID,
				Name:  user.Name,
				Email: user.Email,
				Role:  user.Role,
			},
		})
	}
}
