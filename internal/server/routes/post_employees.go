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

// CreateEmployeeHandler creates an employee. The embedding is not computed
// inline; a backfill job is enqueued when the queue is configured.
func CreateEmployeeHandler(c echo.Context) error {
	type createEmployeeBody struct {
		Name            string `json:"name" validate:"required"`
		Department      string `json:"department"`
		Role            string `json:"role"`
		Bio             string `json:"bio"`
		YearsExperience int    `json:"years_experience" validate:"gte=0"`
	}

	type createEmployeeResponse struct {
		Message  string           `json:"message"`
		Employee *common.Employee `json:"employee,omitempty"`
	}

	data := new(createEmployeeBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createEmployeeResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createEmployeeResponse{
			Message: "Invalid request body",
		})
	}

	id, err := util.NewEmployeeID()
	if err != nil {
		logger.Error("Failed to generate employee id", "err", err)
		return c.JSON(http.StatusInternalServerError, createEmployeeResponse{
			Message: "Internal server error",
		})
	}

	employee := &common.Employee{
		ID:              id,
		Name:            util.CollapseSpaces(util.SanitizePostgresText(data.Name)),
		Department:      util.CollapseSpaces(util.SanitizePostgresText(data.Department)),
		Role:            util.CollapseSpaces(util.SanitizePostgresText(data.Role)),
		Bio:             util.SanitizePostgresText(data.Bio),
		YearsExperience: data.YearsExperience,
	}
	if employee.Name == "" {
		return c.JSON(http.StatusBadRequest, createEmployeeResponse{
			Message: "Invalid request body",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App
	if err := app.Store.SaveEmployee(ctx, employee); err != nil {
		logger.Error("Failed to save employee", "err", err)
		return c.JSON(http.StatusInternalServerError, createEmployeeResponse{
			Message: "Internal server error",
		})
	}

	if app.Queue != nil {
		payload, _ := json.Marshal(queue.EmbedJobMsg{
			Scope:       queue.ScopeEmployees,
			EmployeeIDs: []string{employee.ID},
		})
		if err := queue.PublishFIFO(app.Queue, queue.EmbedQueue, payload); err != nil {
			logger.Warn("Failed to enqueue embed job", "employee_id", employee.ID, "err", err)
		}
	}

	return c.JSON(http.StatusCreated, createEmployeeResponse{
		Message:  "Employee created",
		Employee: employee,
	})
}
