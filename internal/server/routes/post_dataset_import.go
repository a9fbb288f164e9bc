package routes

import (
	"encoding/json"
	"net/http"

	"github.com/nwsirlp/skillgraph/internal/queue"
	"github.com/nwsirlp/skillgraph/internal/server/middleware"
	"github.com/nwsirlp/skillgraph/pkg/dataset"
	"github.com/nwsirlp/skillgraph/pkg/logger"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// ImportDatasetHandler seeds the store from a dataset directory, either a
// local path or an S3 prefix. Broken rows are skipped and counted, never a
// failed import; the stats in the response say what was dropped.
func ImportDatasetHandler(c echo.Context) error {
	type importBody struct {
		Dir    string `json:"dir"`
		Prefix string `json:"prefix"`
		Embed  bool   `json:"embed"`
	}

	type importResponse struct {
		Message string             `json:"message"`
		Stats   *dataset.SeedStats `json:"stats,omitempty"`
	}

	data := new(importBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, importResponse{
			Message: "Invalid request body",
		})
	}
	if (data.Dir == "") == (data.Prefix == "") {
		return c.JSON(http.StatusBadRequest, importResponse{
			Message: "Exactly one of dir or prefix is required",
		})
	}

	app := c.(*middleware.AppContext).App

	var src dataset.Source
	if data.Dir != "" {
		src = dataset.NewFileSource(data.Dir)
	} else {
		if app.S3 == nil {
			return c.JSON(http.StatusBadRequest, importResponse{
				Message: "S3 is not configured",
			})
		}
		src = dataset.NewS3Source(app.S3, data.Prefix)
	}

	ctx := c.Request().Context()
	ds, err := dataset.Load(ctx, src)
	if err != nil {
		logger.Error("Failed to load dataset", "err", err)
		return c.JSON(http.StatusBadRequest, importResponse{
			Message: "Failed to load dataset",
		})
	}

	stats, err := dataset.Seed(ctx, app.Store, ds)
	if err != nil {
		logger.Error("Failed to seed dataset", "err", err)
		return c.JSON(http.StatusInternalServerError, importResponse{
			Message: "Internal server error",
		})
	}

	if data.Embed && app.Queue != nil {
		payload, _ := json.Marshal(queue.EmbedJobMsg{Scope: queue.ScopeAll})
		if err := queue.PublishFIFO(app.Queue, queue.EmbedQueue, payload); err != nil {
			logger.Warn("Failed to enqueue embed backfill", "err", err)
		}
	}

	return c.JSON(http.StatusOK, importResponse{
		Message: "Dataset imported",
		Stats:   &stats,
	})
}
