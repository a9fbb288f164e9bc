package routes

import (
	"net/http"

	"github.com/nwsirlp/skillgraph/internal/server/middleware"
	"github.com/nwsirlp/skillgraph/pkg/common"
	"github.com/nwsirlp/skillgraph/pkg/logger"
	"github.com/nwsirlp/skillgraph/pkg/store"

	"github.com/labstack/echo/v4"
)

func GetSkillsHandler(c echo.Context) error {
	type getSkillsResponse struct {
		Skills []common.Skill `json:"skills"`
	}

	ctx := c.Request().Context()
	st := c.(*middleware.AppContext).App.Store

	skills, err := st.ListSkills(ctx, store.SkillFilter{
		Category:     c.QueryParam("category"),
		NameContains: c.QueryParam("name"),
	})
	if err != nil {
		logger.Error("Failed to list skills", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	if skills == nil {
		skills = []common.Skill{}
	}
	return c.JSON(http.StatusOK, getSkillsResponse{Skills: skills})
}
