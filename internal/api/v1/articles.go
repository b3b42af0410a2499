package v1

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/inkpress/inkwell/internal/models"
	"github.com/inkpress/inkwell/pkg/utils"
)

func requesterID(c *fiber.Ctx) (uuid.UUID, error) {
	raw, ok := c.Locals("user_id").(string)
	if !ok || raw == "" {
		return uuid.Nil, utils.NewError(utils.ErrUnauthorized.Code, "Authentication required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, utils.NewError(utils.ErrUnauthorized.Code, "Invalid session")
	}
	return id, nil
}

func CreateArticle(c *fiber.Ctx) error {
	type ArticleInput struct {
		Title         string `json:"title" validate:"required,min=10,max=200"`
		Slug          string `json:"slug" validate:"omitempty,max=220,slug"`
		Content       string `json:"content" validate:"required,min=100"`
		Excerpt       string `json:"excerpt" validate:"omitempty,max=300"`
		FeaturedImage string `json:"featured_image_url" validate:"omitempty,url,max=500"`
		Status        string `json:"status" validate:"omitempty,oneof=draft published unpublished"`
	}

	authorID, err := requesterID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	ai := new(ArticleInput)
	if err := utils.StrictBodyParser(c, &ai); err != nil {
		Logger.Warn(c.Context()).WithFields("error", err).Logs("Failed to parse article body")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request format",
		})
	}

	if err := Validator.Validate(ai); err != nil {
		Logger.Warn(c.Context()).WithFields("errors", err).Logs("Article validation failed")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"details": err,
		})
	}

	article := &models.Article{
		Title:            ai.Title,
		Slug:             ai.Slug,
		Content:          ai.Content,
		Excerpt:          ai.Excerpt,
		FeaturedImageURL: ai.FeaturedImage,
		Status:           ai.Status,
		AuthorID:         authorID,
	}
	if ai.Status == "published" {
		article.Published = true
		now := time.Now()
		article.PublishedAt = &now
	}

	if err := models.CreateArticle(c.Context(), Redis, DB, article); err != nil {
		return utils.SendError(c, err)
	}

	Logger.Info(c.Context()).WithFields("article_id", article.ID, "author_id", authorID).Logs(fmt.Sprintf("Article created: %s", article.Slug))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Article created successfully",
		"article": article,
	})
}

func GetArticle(c *fiber.Ctx) error {
	s := c.Params("slug")
	if s == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Article slug is required",
		})
	}

	article, err := models.GetArticleBy(c.Context(), Redis, DB, "slug = ?", []interface{}{s}, "Author")
	if err != nil {
		return utils.SendError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"article": article,
	})
}

func ListArticles(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	filters := []string{}
	if c.Query("status") == "" {
		filters = append(filters, "status = 'published'")
	} else if utils.Contains([]string{"draft", "published", "unpublished"}, c.Query("status")) {
		filters = append(filters, fmt.Sprintf("status = '%s'", c.Query("status")))
	}

	articles, err := models.GetArticles(c.Context(), Redis, DB, page, limit, filters...)
	if err != nil {
		return utils.SendError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"articles": articles,
		"page":     page,
		"limit":    limit,
	})
}

func UpdateArticle(c *fiber.Ctx) error {
	type UpdateInput struct {
		Title         string `json:"title" validate:"omitempty,min=10,max=200"`
		Content       string `json:"content" validate:"omitempty,min=100"`
		Excerpt       string `json:"excerpt" validate:"omitempty,max=300"`
		FeaturedImage string `json:"featured_image_url" validate:"omitempty,url,max=500"`
		Status        string `json:"status" validate:"omitempty,oneof=draft published unpublished"`
	}

	userID, err := requesterID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	articleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid article id",
		})
	}

	ui := new(UpdateInput)
	if err := utils.StrictBodyParser(c, &ui); err != nil {
		Logger.Warn(c.Context()).WithFields("error", err).Logs("Failed to parse article update body")
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

	existing, err := models.GetArticleBy(c.Context(), Redis, DB, "id = ?", []interface{}{articleID})
	if err != nil {
		return utils.SendError(c, err)
	}
	if existing.AuthorID != userID {
		Logger.Warn(c.Context()).WithFields("article_id", articleID, "user_id", userID).Logs("Article update denied: not the author")
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You can only edit your own articles",
		})
	}

	opts := []models.ArticleOption{}
	if ui.Title != "" {
		opts = append(opts, models.WithArticleTitle(ui.Title))
	}
	if ui.Content != "" {
		opts = append(opts, models.WithArticleContent(ui.Content))
	}
	if ui.Excerpt != "" {
		opts = append(opts, models.WithArticleExcerpt(ui.Excerpt))
	}
	if ui.FeaturedImage != "" {
		opts = append(opts, models.WithArticleFeaturedImage(ui.FeaturedImage))
	}
	if ui.Status != "" {
		opts = append(opts, models.WithArticleStatus(ui.Status))
	}

	article, err := models.UpdateArticle(c.Context(), Redis, DB, articleID, opts...)
	if err != nil {
		return utils.SendError(c, err)
	}

	Logger.Info(c.Context()).WithFields("article_id", articleID).Logs("Article updated")

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Article updated successfully",
		"article": article,
	})
}

func DeleteArticle(c *fiber.Ctx) error {
	userID, err := requesterID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	articleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid article id",
		})
	}

	existing, err := models.GetArticleBy(c.Context(), Redis, DB, "id = ?", []interface{}{articleID})
	if err != nil {
		return utils.SendError(c, err)
	}

	user, err := models.GetUserBy(c.Context(), Redis, DB, "id = ?", []interface{}{userID}, "Role")
	if err != nil {
		return utils.SendError(c, err)
	}
	if existing.AuthorID != userID && user.Role.Name != "admin" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You can only delete your own articles",
		})
	}

	if err := models.DeleteArticle(c.Context(), Redis, DB, articleID); err != nil {
		return utils.SendError(c, err)
	}

	Logger.Info(c.Context()).WithFields("article_id", articleID, "user_id", userID).Logs("Article deleted")

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Article deleted successfully",
	})
}
