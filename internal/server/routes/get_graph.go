package routes

import (
	"net/http"

	"github.com/nwsirlp/skillgraph/internal/server/middleware"
	"github.com/nwsirlp/skillgraph/pkg/logger"
	"github.com/nwsirlp/skillgraph/pkg/store"

	"github.com/labstack/echo/v4"
)

// GetGraphHandler returns the full node and edge payload the browser
// visualizer lays out client-side.
func GetGraphHandler(c echo.Context) error {
	type graphNode struct {
		ID       string `json:"id"`
		Label    string `json:"label"`
		Kind     string `json:"kind"`
		Category string `json:"category,omitempty"`
	}

	type graphEdge struct {
		Source      string `json:"source"`
		Target      string `json:"target"`
		Proficiency int    `json:"proficiency"`
		Certified   bool   `json:"certified"`
	}

	type getGraphResponse struct {
		Nodes []graphNode `json:"nodes"`
		Edges []graphEdge `json:"edges"`
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

	resp := getGraphResponse{
		Nodes: make([]graphNode, 0, len(employees)+len(skills)),
		Edges: make([]graphEdge, 0, len(possessions)),
	}
	known := make(map[string]struct{}, len(employees)+len(skills))

	for _, e := range employees {
		known[e.ID] = struct{}{}
		resp.Nodes = append(resp.Nodes, graphNode{
			ID:       e.ID,
			Label:    e.Name,
			Kind:     "employee",
			Category: e.Department,
		})
	}
	for _, s := range skills {
		known[s.ID] = struct{}{}
		resp.Nodes = append(resp.Nodes, graphNode{
			ID:       s.ID,
			Label:    s.Name,
			Kind:     "skill",
			Category: s.Category,
		})
	}
	for _, p := range possessions {
		// An edge can race a deletion; drop it rather than ship a dangling
		// reference to the client.
		if _, ok := known[p.EmployeeID]; !ok {
			continue
		}
		if _, ok := known[p.SkillID]; !ok {
			continue
		}
		resp.Edges = append(resp.Edges, graphEdge{
			Source:      p.EmployeeID,
			Target:      p.SkillID,
			Proficiency: p.Proficiency,
			Certified:   p.Certified,
		})
	}

	return c.JSON(http.StatusOK, resp)
}
