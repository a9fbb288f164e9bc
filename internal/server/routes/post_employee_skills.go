package routes

import (
	"errors"
	"net/http"

	"github.com/nwsirlp/skillgraph/internal/server/middleware"
	"github.com/nwsirlp/skillgraph/internal/util"
	"github.com/nwsirlp/skillgraph/pkg/common"
	"github.com/nwsirlp/skillgraph/pkg/logger"
	"github.com/nwsirlp/skillgraph/pkg/store"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// AssignEmployeeSkillHandler writes a possession edge. Assigning a skill the
// employee already has replaces the edge.
func AssignEmployeeSkillHandler(c echo.Context) error {
	type assignSkillBody struct {
		SkillID     string  `json:"skill_id" validate:"required"`
		Proficiency int     `json:"proficiency" validate:"required,gte=1,lte=5"`
		Years       float64 `json:"years" validate:"gte=0"`
		Certified   bool    `json:"certified"`
	}

	type assignSkillResponse struct {
		Message    string                  `json:"message"`
		Possession *common.SkillPossession `json:"possession,omitempty"`
	}

	employeeID := c.Param("id")
	if !util.IsEmployeeID(employeeID) {
		return c.JSON(http.StatusBadRequest, assignSkillResponse{
			Message: "Invalid employee ID",
		})
	}

	data := new(assignSkillBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, assignSkillResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, assignSkillResponse{
			Message: "Invalid request body",
		})
	}

	ctx := c.Request().Context()
	st := c.(*middleware.AppContext).App.Store

	if _, err := st.GetEmployee(ctx, employeeID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, assignSkillResponse{
				Message: "Employee not found",
			})
		}
		logger.Error("Failed to load employee", "id", employeeID, "err", err)
		return c.JSON(http.StatusInternalServerError, assignSkillResponse{
			Message: "Internal server error",
		})
	}
	if _, err := st.GetSkill(ctx, data.SkillID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, assignSkillResponse{
				Message: "Skill not found",
			})
		}
		logger.Error("Failed to load skill", "id", data.SkillID, "err", err)
		return c.JSON(http.StatusInternalServerError, assignSkillResponse{
			Message: "Internal server error",
		})
	}

	possession := common.SkillPossession{
		EmployeeID:  employeeID,
		SkillID:     data.SkillID,
		Proficiency: data.Proficiency,
		Years:       data.Years,
		Certified:   data.Certified,
	}
	if err := st.SavePossession(ctx, possession); err != nil {
		logger.Error("Failed to save possession", "employee_id", employeeID, "skill_id", data.SkillID, "err", err)
		return c.JSON(http.StatusInternalServerError, assignSkillResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusCreated, assignSkillResponse{
		Message:    "Skill assigned",
		Possession: &possession,
	})
}
