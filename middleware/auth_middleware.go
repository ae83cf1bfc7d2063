package middleware

import (
	"errors"

	config "github.com/benerin-indonesia/benerin/configs"
	"github.com/benerin-indonesia/benerin/models"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

func Protected() fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(config.Config("JWT_SECRET")),
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if err.Error() == "Missing or malformed JWT" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"status": "error", "message": "Missing or malformed JWT", "data": nil})
	}
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"status": "error", "message": "Invalid or expired JWT", "data": nil})
}

func claimsOf(c *fiber.Ctx) (jwt.MapClaims, bool) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return nil, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	return claims, ok
}

// CurrentAccountID returns the user or technician id carried by the verified token.
func CurrentAccountID(c *fiber.Ctx) (uuid.UUID, error) {
	claims, ok := claimsOf(c)
	if !ok {
		return uuid.Nil, errors.New("no token claims")
	}
	raw, _ := claims["user_id"].(string)
	return uuid.Parse(raw)
}

func RoleRequired(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := claimsOf(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}
		if r, _ := claims["role"].(string); r != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: " + role + " access required",
			})
		}
		return c.Next()
	}
}

func AdminRequired() fiber.Handler {
	return RoleRequired(models.RoleAdmin)
}

func TechnicianRequired() fiber.Handler {
	return RoleRequired(models.RoleTechnician)
}

func UserRequired() fiber.Handler {
	return RoleRequired(models.RoleUser)
}
