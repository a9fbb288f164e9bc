package routes

import (
	"encoding/json"
	"net/http"

	"github.com/nwsirlp/skillgraph/internal/queue"
	"github.com/nwsirlp/skillgraph/internal/server/middleware"
	"github.com/nwsirlp/skillgraph/internal/util"
	"github.com/nwsirlp/skillgraph/pkg/common"
	"github.com/nwsirlp/skillgraph/pkg/logger"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

func CreateSkillHandler(c echo.Context) error {
	type createSkillBody struct {
		Name     string   `json:"name" validate:"required"`
		Category string   `json:"category"`
		Tags     []string `json:"tags"`
	}

	type createSkillResponse struct {
		Message string        `json:"message"`
		Skill   *common.Skill `json:"skill,omitempty"`
	}

	data := new(createSkillBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createSkillResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createSkillResponse{
			Message: "Invalid request body",
		})
	}

	id, err := util.NewSkillID()
	if err != nil {
		logger.Error("Failed to generate skill id", "err", err)
		return c.JSON(http.StatusInternalServerError, createSkillResponse{
			Message: "Internal server error",
		})
	}

	var tags []string
	for _, tag := range data.Tags {
		tag = util.CollapseSpaces(util.SanitizePostgresText(tag))
		if tag != "" {
			tags = append(tags, tag)
		}
	}

	skill := &common.Skill{
		ID:       id,
		Name:     util.CollapseSpaces(util.SanitizePostgresText(data.Name)),
		Category: util.CollapseSpaces(util.SanitizePostgresText(data.Category)),
		Tags:     tags,
	}
	if skill.Name == "" {
		return c.JSON(http.StatusBadRequest, createSkillResponse{
			Message: "Invalid request body",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App
	if err := app.Store.SaveSkill(ctx, skill); err != nil {
		logger.Error("Failed to save skill", "err", err)
		return c.JSON(http.StatusInternalServerError, createSkillResponse{
			Message: "Internal server error",
		})
	}

	if app.Queue != nil {
		payload, _ := json.Marshal(queue.EmbedJobMsg{
			Scope:    queue.ScopeSkills,
			SkillIDs: []string{skill.ID},
		})
		if err := queue.PublishFIFO(app.Queue, queue.EmbedQueue, payload); err != nil {
			logger.Warn("Failed to enqueue embed job", "skill_id", skill.ID, "err", err)
		}
	}

	return c.JSON(http.StatusCreated, createSkillResponse{
		Message: "Skill created",
		Skill:   skill,
	})
}
