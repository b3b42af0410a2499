package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type articleForm struct {
	Title string `json:"title" validate:"required,min=10"`
	Slug  string `json:"slug" validate:"omitempty,slug"`
	Email string `json:"email" validate:"omitempty,email"`
}

func TestValidatePassesValidInput(t *testing.T) {
	v := NewValidator()

	resp := v.Validate(articleForm{
		Title: "A perfectly fine title",
		Slug:  "a-perfectly-fine-title",
		Email: "author@inkwell.dev",
	})
	assert.Nil(t, resp)
}

func TestValidateReportsJSONFieldNames(t *testing.T) {
	v := NewValidator()

	resp := v.Validate(articleForm{Title: ""})
	require.NotNil(t, resp)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "title", resp.Errors[0].Field)
	assert.Contains(t, resp.Errors[0].Msg, "required")
}

func TestValidateSlugRule(t *testing.T) {
	v := NewValidator()

	cases := map[string]bool{
		"valid-slug-123": true,
		"also-valid":     true,
		"Invalid-Upper":  false,
		"-leading":       false,
		"trailing-":      false,
		"double--hyphen": false,
	}
	for slug, valid := range cases {
		resp := v.Validate(articleForm{Title: "A perfectly fine title", Slug: slug})
		if valid {
			assert.Nil(t, resp, "slug %q should pass", slug)
		} else {
			assert.NotNil(t, resp, "slug %q should fail", slug)
		}
	}
}
