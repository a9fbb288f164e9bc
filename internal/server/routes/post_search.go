package routes

import (
	"net/http"

	"github.com/nwsirlp/skillgraph/internal/server/middleware"
	"github.com/nwsirlp/skillgraph/pkg/match"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// SearchCandidatesHandler runs one hybrid matching query. The engine never
// errors; a degraded backend answers with an empty candidate list.
func SearchCandidatesHandler(c echo.Context) error {
	type searchBody struct {
		Query          string   `json:"query" validate:"required"`
		Department     string   `json:"department"`
		MinProficiency int      `json:"min_proficiency" validate:"gte=0,lte=5"`
		CertifiedOnly  bool     `json:"certified_only"`
		SkillIDs       []string `json:"skill_ids"`
		Limit          int      `json:"limit" validate:"gte=0,lte=100"`
	}

	data := new(searchBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	ctx := c.Request().Context()
	engine := c.(*middleware.AppContext).App.Matcher

	result := engine.Search(ctx, match.SearchParams{
		Query:          data.Query,
		Department:     data.Department,
		MinProficiency: data.MinProficiency,
		CertifiedOnly:  data.CertifiedOnly,
		SkillIDs:       data.SkillIDs,
		Limit:          data.Limit,
	})

	return c.JSON(http.StatusOK, result)
}
