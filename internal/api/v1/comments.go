package v1

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/inkpress/inkwell/internal/models"
	"github.com/inkpress/inkwell/pkg/utils"
)

func CreateComment(c *fiber.Ctx) error {
	type CommentInput struct {
		Content         string     `json:"content" validate:"required,min=2,max=2000"`
		ParentCommentID *uuid.UUID `json:"parent_comment_id" validate:"omitempty"`
	}

	authorID, err := requesterID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	articleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid article id",
		})
	}

	ci := new(CommentInput)
	if err := utils.StrictBodyParser(c, &ci); err != nil {
		Logger.Warn(c.Context()).WithFields("error", err).Logs("Failed to parse comment body")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request format",
		})
	}

	if err := Validator.Validate(ci); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"details": err,
		})
	}

	// the article must exist and be visible before anyone comments on it
	if _, err := models.GetArticleBy(c.Context(), Redis, DB, "id = ?", []interface{}{articleID}); err != nil {
		return utils.SendError(c, err)
	}

	comment := &models.Comment{
		Content:         ci.Content,
		ArticleID:       articleID,
		AuthorID:        authorID,
		ParentCommentID: ci.ParentCommentID,
	}
	if err := models.CreateComment(c.Context(), Redis, DB, comment); err != nil {
		return utils.SendError(c, err)
	}

	Logger.Info(c.Context()).WithFields("comment_id", comment.ID, "article_id", articleID).Logs("Comment created")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Comment created successfully",
		"comment": comment,
	})
}

func ListComments(c *fiber.Ctx) error {
	articleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid article id",
		})
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	comments, err := models.GetComments(c.Context(), Redis, DB, articleID, page, limit)
	if err != nil {
		return utils.SendError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"comments": comments,
		"page":     page,
		"limit":    limit,
	})
}

func UpdateComment(c *fiber.Ctx) error {
	type UpdateInput struct {
		Content string `json:"content" validate:"required,min=2,max=2000"`
	}

	userID, err := requesterID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	commentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid comment id",
		})
	}

	ui := new(UpdateInput)
	if err := utils.StrictBodyParser(c, &ui); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request format",
		})
	}
	if err := Validator.Validate(ui); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"details": err,
		})
	}

	existing, err := models.GetCommentBy(c.Context(), Redis, DB, "id = ?", []interface{}{commentID})
	if err != nil {
		return utils.SendError(c, err)
	}
	if existing.AuthorID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You can only edit your own comments",
		})
	}

	comment, err := models.UpdateComment(c.Context(), Redis, DB, commentID, ui.Content)
	if err != nil {
		return utils.SendError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Comment updated successfully",
		"comment": comment,
	})
}

func DeleteComment(c *fiber.Ctx) error {
	userID, err := requesterID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	commentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid comment id",
		})
	}

	existing, err := models.GetCommentBy(c.Context(), Redis, DB, "id = ?", []interface{}{commentID})
	if err != nil {
		return utils.SendError(c, err)
	}

	user, err := models.GetUserBy(c.Context(), Redis, DB, "id = ?", []interface{}{userID}, "Role")
	if err != nil {
		return utils.SendError(c, err)
	}
	if existing.AuthorID != userID && user.Role.Name != "admin" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You can only delete your own comments",
		})
	}

	if err := models.DeleteComment(c.Context(), Redis, DB, commentID); err != nil {
		return utils.SendError(c, err)
	}

	Logger.Info(c.Context()).WithFields("comment_id", commentID, "user_id", userID).Logs("Comment deleted")

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Comment deleted successfully",
	})
}
