package routes

import (
	"errors"
	"net/http"

	"github.com/nwsirlp/skillgraph/internal/server/middleware"
	"github.com/nwsirlp/skillgraph/internal/util"
	"github.com/nwsirlp/skillgraph/pkg/logger"
	"github.com/nwsirlp/skillgraph/pkg/store"

	"github.com/labstack/echo/v4"
)

// DeleteEmployeeHandler deletes an employee and its possession edges.
func DeleteEmployeeHandler(c echo.Context) error {
	id := c.Param("id")
	if !util.IsEmployeeID(id) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid employee ID"})
	}

	ctx := c.Request().Context()
	st := c.(*middleware.AppContext).App.Store

	if err := st.DeleteEmployee(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Employee not found"})
		}
		logger.Error("Failed to delete employee", "id", id, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Employee deleted"})
}
