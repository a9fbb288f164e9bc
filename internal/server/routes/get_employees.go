package routes

import (
	"net/http"

	"github.com/nwsirlp/skillgraph/internal/server/middleware"
	"github.com/nwsirlp/skillgraph/pkg/common"
	"github.com/nwsirlp/skillgraph/pkg/logger"
	"github.com/nwsirlp/skillgraph/pkg/store"

	"github.com/labstack/echo/v4"
)

func GetEmployeesHandler(c echo.Context) error {
	type getEmployeesResponse struct {
		Employees []common.Employee `json:"employees"`
	}

	ctx := c.Request().Context()
	st := c.(*middleware.AppContext).App.Store

	employees, err := st.ListEmployees(ctx, store.EmployeeFilter{
		Department: c.QueryParam("department"),
		Role:       c.QueryParam("role"),
	})
	if err != nil {
		logger.Error("Failed to list employees", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	if employees == nil {
		employees = []common.Employee{}
	}
	return c.JSON(http.StatusOK, getEmployeesResponse{Employees: employees})
}
