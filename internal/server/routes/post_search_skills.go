package routes

import (
	"net/http"

	"github.com/nwsirlp/skillgraph/internal/server/middleware"
	"github.com/nwsirlp/skillgraph/pkg/match"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// SearchBySkillsHandler ranks candidates purely by coverage of the required
// skills, no embedding involved.
func SearchBySkillsHandler(c echo.Context) error {
	type searchSkillsBody struct {
		SkillIDs []string `json:"skill_ids" validate:"required,min=1"`
	}

	type searchSkillsResponse struct {
		Candidates []match.SkillCandidate `json:"candidates"`
	}

	data := new(searchSkillsBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	ctx := c.Request().Context()
	engine := c.(*middleware.AppContext).App.Matcher

	candidates := engine.CandidatesForRequiredSkills(ctx, data.SkillIDs)
	if candidates == nil {
		candidates = []match.SkillCandidate{}
	}

	return c.JSON(http.StatusOK, searchSkillsResponse{Candidates: candidates})
}
