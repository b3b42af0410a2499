package models

import (
	"strings"
	"time"
)

func WithArticleTitle(title string) ArticleOption {
	return func(a *Article) {
		a.Title = strings.TrimSpace(title)
	}
}

func WithArticleSlug(s string) ArticleOption {
	return func(a *Article) {
		a.Slug = strings.ToLower(strings.TrimSpace(s))
	}
}

func WithArticleContent(content string) ArticleOption {
	return func(a *Article) {
		a.Content = strings.TrimSpace(content)
	}
}

func WithArticleExcerpt(excerpt string) ArticleOption {
	return func(a *Article) {
		a.Excerpt = strings.TrimSpace(excerpt)
	}
}

func WithArticleFeaturedImage(url string) ArticleOption {
	return func(a *Article) {
		a.FeaturedImageURL = url
	}
}

func WithArticleStatus(status string) ArticleOption {
	return func(a *Article) {
		a.Status = status
		a.Published = status == "published"
		if a.Published && a.PublishedAt == nil {
			now := time.Now()
			a.PublishedAt = &now
		} else if !a.Published {
			a.PublishedAt = nil
		}
	}
}
