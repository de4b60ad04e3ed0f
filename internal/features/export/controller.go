package export

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type ExportController struct {
	ExportService ExportService
}

func NewExportController(exportService ExportService) *ExportController {
	return &ExportController{
		ExportService: exportService,
	}
}

// ExportDashboard godoc
// @Summary Export a session's dashboard to xlsx
// @Description Render the loaded dashboard, its filters, alerts and summaries into a workbook
// @Tags export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param session path string true "Session ID"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/sessions/{session}/export [get]
func (ctrl *ExportController) ExportDashboard(ctx *fiber.Ctx) error {
	data, filename, err := ctrl.ExportService.ExportDashboard(ctx.UserContext(), ctx.Params("session"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	return ctx.Send(data)
}
