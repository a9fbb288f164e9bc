package routes

import (
	"net/http"
	"strconv"

	"github.com/nwsirlp/skillgraph/internal/server/middleware"
	"github.com/nwsirlp/skillgraph/pkg/logger"
	"github.com/nwsirlp/skillgraph/pkg/store"
	"github.com/nwsirlp/skillgraph/pkg/viz"

	"github.com/labstack/echo/v4"
)

const (
	snapshotDefaultWidth  = 1200.0
	snapshotDefaultHeight = 800.0
	snapshotDefaultTicks  = 300
	snapshotMaxTicks      = 2000
)

// GetGraphSnapshotHandler renders a server-side SVG of the skill graph:
// build from the store, settle the simulation for a number of ticks, render
// one frame.
func GetGraphSnapshotHandler(c echo.Context) error {
	width := queryFloat(c, "width", snapshotDefaultWidth)
	height := queryFloat(c, "height", snapshotDefaultHeight)
	ticks := queryInt(c, "ticks", snapshotDefaultTicks)
	if width <= 0 || height <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid dimensions"})
	}
	if ticks < 0 || ticks > snapshotMaxTicks {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid tick count"})
	}

	ctx := c.Request().Context()
	st := c.(*middleware.AppContext).App.Store

	employees, err := st.ListEmployees(ctx, store.EmployeeFilter{})
	if err != nil {
		logger.Error("Failed to list employees", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	skills, err := st.ListSkills(ctx, store.SkillFilter{})
	if err != nil {
		logger.Error("Failed to list skills", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	possessions, err := st.ListPossessions(ctx)
	if err != nil {
		logger.Error("Failed to list possessions", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	g := viz.BuildGraph(employees, skills, possessions, width, height)
	svg := viz.Snapshot(g, viz.DefaultSimConfig(), width, height, ticks)

	return c.Blob(http.StatusOK, "image/svg+xml", []byte(svg))
}

func queryFloat(c echo.Context, name string, fallback float64) float64 {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
