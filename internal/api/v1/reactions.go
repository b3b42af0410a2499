package v1

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/inkpress/inkwell/internal/reactions"
	"github.com/inkpress/inkwell/pkg/utils"
)

func subjectFromParams(c *fiber.Ctx) (reactions.SubjectType, uuid.UUID, error) {
	st := reactions.SubjectType(c.Params("subjectType"))
	if !st.Valid() {
		return "", uuid.Nil, utils.NewError(utils.ErrBadRequest.Code, "Subject type must be article or comment")
	}
	subjectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return "", uuid.Nil, utils.NewError(utils.ErrBadRequest.Code, "Invalid subject id")
	}
	return st, subjectID, nil
}

// ListReactionKinds returns the reaction catalog.
func ListReactionKinds(c *fiber.Ctx) error {
	kinds, err := Reactions.Kinds(c.Context())
	if err != nil {
		return utils.SendError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"reactions": kinds,
	})
}

// GetReactionSummary returns per-kind counts for a subject, flagging the kind
// the requester currently holds. Works for anonymous readers too.
func GetReactionSummary(c *fiber.Ctx) error {
	st, subjectID, err := subjectFromParams(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	var requester *uuid.UUID
	if raw, ok := c.Locals("user_id").(string); ok && raw != "" {
		if id, perr := uuid.Parse(raw); perr == nil {
			requester = &id
		}
	}

	summary, err := Reactions.Summary(c.Context(), st, subjectID, requester)
	if err != nil {
		return utils.SendError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"subject_type": st,
		"subject_id":   subjectID,
		"summary":      summary,
	})
}

// AssignReaction sets the requester's reaction on a subject. A different
// existing reaction is replaced; repeating the held one is rejected.
func AssignReaction(c *fiber.Ctx) error {
	type ReactionInput struct {
		ReactionKindID uuid.UUID `json:"reaction_kind_id" validate:"required"`
	}

	userID, err := requesterID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	st, subjectID, err := subjectFromParams(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	ri := new(ReactionInput)
	if err := utils.StrictBodyParser(c, &ri); err != nil {
		Logger.Warn(c.Context()).WithFields("error", err).Logs("Failed to parse reaction body")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request format",
		})
	}
	if ri.ReactionKindID == uuid.Nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "reaction_kind_id is required",
		})
	}

	outcome, err := Reactions.AssignReaction(c.Context(), st, subjectID, userID, ri.ReactionKindID)
	if err != nil {
		return utils.SendError(c, err)
	}

	Logger.Info(c.Context()).
		WithFields("user_id", userID, "subject_type", st, "subject_id", subjectID, "outcome", outcome.Kind.String()).
		Logs(fmt.Sprintf("Reaction %s applied", outcome.Kind))

	status := fiber.StatusCreated
	message := "Reaction added"
	if outcome.Kind == reactions.OutcomeReplace {
		status = fiber.StatusOK
		message = "Reaction replaced"
	}

	resp := fiber.Map{
		"message":          message,
		"outcome":          outcome.Kind.String(),
		"reaction_kind_id": outcome.NewKindID,
	}
	if outcome.Kind == reactions.OutcomeReplace {
		resp["replaced_kind_id"] = outcome.OldKindID
	}
	return c.Status(status).JSON(resp)
}

// RemoveReaction clears the requester's reaction from a subject.
func RemoveReaction(c *fiber.Ctx) error {
	userID, err := requesterID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	st, subjectID, err := subjectFromParams(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	if err := Reactions.RemoveReaction(c.Context(), st, subjectID, userID); err != nil {
		return utils.SendError(c, err)
	}

	Logger.Info(c.Context()).
		WithFields("user_id", userID, "subject_type", st, "subject_id", subjectID).
		Logs("Reaction removed")

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Reaction removed",
	})
}
