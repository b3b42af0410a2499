package auth

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/inkpress/inkwell/internal/models"
)

// Protected authenticates the request from the access token cookie,
// transparently refreshing expired tokens via the refresh token.
func Protected(opt Options) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := c.Cookies("access_token")
		refreshToken := c.Cookies("refresh_token")

		if accessToken != "" && opt.Rclient.Exists(c.Context(), "blacklist:access:"+accessToken).Val() > 0 {
			opt.Logger.Warn(c.Context()).Logs("Attempted use of blacklisted access token")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Access token has been invalidated",
			})
		}
		if refreshToken != "" && opt.Rclient.Exists(c.Context(), "blacklist:refresh:"+refreshToken).Val() > 0 {
			opt.Logger.Warn(c.Context()).Logs("Attempted use of blacklisted refresh token")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Refresh token has been invalidated",
			})
		}

		if accessToken == "" {
			newAccessToken, err := handleTokenRefresh(c, opt, refreshToken)
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token refresh failed"})
			}
			accessToken = newAccessToken
		}

		claims, err := VerifyToken(accessToken)
		if err != nil {
			if err == ErrExpiredToken {
				newAccessToken, rerr := handleTokenRefresh(c, opt, refreshToken)
				if rerr != nil {
					return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token refresh failed"})
				}
				accessToken = newAccessToken
				claims, err = VerifyToken(accessToken)
			}
			if err != nil {
				opt.Logger.Warn(c.Context()).WithFields("error", err).Logs("Access token invalid")
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid access token",
				})
			}
		}

		user, err := models.GetUserBy(c.Context(), opt.Rclient, opt.DB, "id = ?", []interface{}{claims.UserID})
		if err != nil {
			opt.Logger.Warn(c.Context()).WithFields("user_id", claims.UserID).Logs("User not found")
			c.ClearCookie("access_token")
			c.ClearCookie("refresh_token")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "User not found",
			})
		}

		if claims.RoleID != user.RoleID.String() {
			opt.Logger.Warn(c.Context()).WithFields("user_id", user.ID, "token_role", claims.RoleID, "user_role", user.RoleID).Logs("Role mismatch")
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Role mismatch",
			})
		}

		c.Locals("user_id", claims.UserID)

		opt.Logger.Info(c.Context()).WithFields("user_id", claims.UserID).Logs(fmt.Sprintf("User authenticated for route: %s", c.Path()))
		return c.Next()
	}
}

// OptionalAuth resolves the requesting identity when a valid access token is
// present but lets anonymous requests through untouched.
func OptionalAuth(opt Options) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := c.Cookies("access_token")
		if accessToken == "" {
			return c.Next()
		}

		if opt.Rclient.Exists(c.Context(), "blacklist:access:"+accessToken).Val() > 0 {
			return c.Next()
		}

		claims, err := VerifyToken(accessToken)
		if err != nil {
			return c.Next()
		}

		c.Locals("user_id", claims.UserID)
		return c.Next()
	}
}

// handleTokenRefresh rotates the refresh token and issues a new access token.
func handleTokenRefresh(c *fiber.Ctx, opt Options, refreshToken string) (string, error) {
	if refreshToken == "" {
		opt.Logger.Warn(c.Context()).Logs("Refresh token missing")
		return "", ErrInvalidToken
	}

	refreshKey := "refresh:" + refreshToken
	refreshDataJSON, err := opt.Rclient.Get(c.Context(), refreshKey).Result()
	if err != nil || refreshDataJSON == "" {
		opt.Logger.Warn(c.Context()).Logs("Invalid/expired refresh token")
		return "", ErrInvalidToken
	}

	var refreshData map[string]interface{}
	if err := json.Unmarshal([]byte(refreshDataJSON), &refreshData); err != nil {
		opt.Logger.Error(c.Context()).WithFields("error", err).Logs("Failed to parse refresh data")
		return "", ErrInvalidToken
	}

	userID, ok := refreshData["user_id"].(string)
	if !ok || userID == "" {
		opt.Logger.Warn(c.Context()).Logs("Invalid refresh token data")
		return "", ErrInvalidToken
	}

	if ip, ok := refreshData["ip"].(string); !ok || ip != c.IP() {
		opt.Logger.Warn(c.Context()).WithFields("user_id", userID).Logs("IP mismatch on refresh token")
		opt.Rclient.Del(c.Context(), refreshKey)
		return "", ErrInvalidToken
	}

	user, err := models.GetUserBy(c.Context(), opt.Rclient, opt.DB, "id = ?", []interface{}{uuid.MustParse(userID)})
	if err != nil {
		opt.Logger.Warn(c.Context()).WithFields("user_id", userID).Logs("User not found")
		c.ClearCookie("access_token")
		c.ClearCookie("refresh_token")
		return "", ErrInvalidToken
	}

	newAccessToken, err := GenerateAccessToken(user.ID.String(), user.RoleID.String())
	if err != nil {
		opt.Logger.Error(c.Context()).WithFields("error", err).Logs("Failed to generate access token")
		return "", err
	}
	newRefreshToken := GenerateRefreshToken()

	newRefreshData := map[string]interface{}{
		"user_id": user.ID.String(),
		"ip":      c.IP(),
	}
	newRefreshJSON, _ := json.Marshal(newRefreshData)
	opt.Rclient.Set(c.Context(), "refresh:"+newRefreshToken, newRefreshJSON, 7*24*time.Hour)
	opt.Rclient.Del(c.Context(), refreshKey)

	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    newAccessToken,
		Expires:  time.Now().Add(15 * time.Minute),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Strict",
	})
	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    newRefreshToken,
		Expires:  time.Now().Add(7 * 24 * time.Hour),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Strict",
	})

	c.Locals("user_id", user.ID.String())

	opt.Logger.Info(c.Context()).WithFields("user_id", userID).Logs("Tokens refreshed")
	return newAccessToken, nil
}
