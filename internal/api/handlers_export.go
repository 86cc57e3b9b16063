package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/kombucha-eln/internal/services"
)

func (handler *Handler) ExperimentSnapshot(c *fiber.Ctx) error {
	experiment, err := handler.ownedExperiment(c)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	snapshot, err := handler.snapshotService.BuildExperimentSnapshot(c.UserContext(), experiment.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(snapshot)
}

// ExperimentReport renders the same HTML document that is sent to eLabFTW.
func (handler *Handler) ExperimentReport(c *fiber.Ctx) error {
	if handler.render == nil {
		return apiError(c, fiber.StatusNotImplemented, "report rendering is not configured")
	}
	experiment, err := handler.ownedExperiment(c)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	snapshot, err := handler.snapshotService.BuildExperimentSnapshot(c.UserContext(), experiment.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	document, err := handler.render(snapshot.Title, snapshot.Batches)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	if c.Query("download") == "1" {
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", exportFilename(snapshot.Title, snapshot.ID, "html")))
	}
	c.Type("html", "utf-8")
	return c.SendString(document)
}

func (handler *Handler) ExportSummary(c *fiber.Ctx) error {
	experiment, err := handler.ownedExperiment(c)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	summary, err := handler.exportService.BuildSummary(c.UserContext(), experiment.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(summary)
}

func (handler *Handler) ExportCSV(c *fiber.Ctx) error {
	experiment, err := handler.ownedExperiment(c)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	snapshot, rows, err := handler.exportService.BuildCSVRows(c.UserContext(), experiment.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	var output bytes.Buffer
	writer := csv.NewWriter(&output)
	if err := writer.Write(services.ExportCSVHeaders); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to build export")
	}
	for _, row := range rows {
		if err := writer.Write(row.Columns()); err != nil {
			return apiError(c, fiber.StatusInternalServerError, "failed to build export")
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to build export")
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", exportFilename(snapshot.Title, snapshot.ID, "csv")))
	return c.Send(output.Bytes())
}

func exportFilename(title string, experimentID uint, extension string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, strings.TrimSpace(title))
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "experiment"
	}
	return fmt.Sprintf("%s-%d.%s", slug, experimentID, extension)
}

func (handler *Handler) SyncExperiment(c *fiber.Ctx) error {
	return handler.runSync(c, false)
}

func (handler *Handler) RecreateRemoteExperiment(c *fiber.Ctx) error {
	return handler.runSync(c, true)
}

func (handler *Handler) runSync(c *fiber.Ctx, recreate bool) error {
	if handler.syncService == nil {
		return apiError(c, fiber.StatusNotImplemented, "eLabFTW sync is not configured")
	}
	experimentID, err := parseIDParam(c, "id")
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	sync := handler.syncService.Sync
	if recreate {
		sync = handler.syncService.Recreate
	}
	result, err := sync(c.UserContext(), scopeUserID(c), experimentID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(result)
}
