package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/inkpress/inkwell/internal/models"
	"github.com/inkpress/inkwell/pkg/utils"
)

// CheckPerm ensures the authenticated user holds every listed permission.
// Must run after Protected so user_id is present in locals.
func CheckPerm(opt Options, perms ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("user_id").(string)
		if !ok || userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		user, err := models.GetUserBy(c.Context(), opt.Rclient, opt.DB, "id = ?", []interface{}{uuid.MustParse(userID)}, "Role", "Role.Permissions")
		if err != nil {
			opt.Logger.Warn(c.Context()).WithFields("user_id", userID).Logs("Failed to load user for permission check")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		permissions := GetPermissions(user)

		for _, required := range perms {
			if required == "" {
				continue
			}
			if !utils.Contains(permissions, required) {
				opt.Logger.Warn(c.Context()).WithFields(
					"user_id", userID,
					"required_perm", required,
				).Logs("Insufficient permissions")
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error":  "Insufficient permissions",
					"status": fiber.StatusForbidden,
				})
			}
		}

		opt.Logger.Debug(c.Context()).WithFields("user_id", userID).Logs("Permission authorized")
		return c.Next()
	}
}

// GetPermissions extracts permission names into a []string.
func GetPermissions(u *models.User) []string {
	if u == nil || len(u.Role.Permissions) == 0 {
		return []string{}
	}
	permissions := make([]string, len(u.Role.Permissions))
	for i, perm := range u.Role.Permissions {
		permissions[i] = perm.Name
	}
	return permissions
}
