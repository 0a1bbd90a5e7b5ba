package server

import (
	"fmt"

	"empleos/internal/middleware"
	"empleos/internal/models"
	"empleos/internal/service"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func reportQuery(c *fiber.Ctx) service.ReportQuery {
	return service.ReportQuery{
		GroupBy:  c.Query("group_by"),
		FromDate: c.Query("from_date"),
		ToDate:   c.Query("to_date"),
	}
}

// GetReport handles GET /api/admin/reports/:type
// @Summary Aggregate report
// @Description Time-bucketed counts plus summary totals. The default window is the last 30 days.
// @Tags reports
// @Produce json
// @Param type path string true "users, companies, jobs or applications"
// @Param group_by query string false "day, week or month"
// @Param from_date query string false "YYYY-MM-DD"
// @Param to_date query string false "YYYY-MM-DD, inclusive"
// @Success 200 {object} models.Report
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/reports/{type} [get]
func (s *Server) GetReport(c *fiber.Ctx) error {
	report, err := s.reportService.Build(c.UserContext(), models.ReportType(c.Params("type")), reportQuery(c))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(report)
}

// ExportReport handles GET /api/admin/reports/export/:type and streams the
// report as an xlsx workbook.
// @Summary Export a report as xlsx
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param type path string true "users, companies, jobs or applications"
// @Param group_by query string false "day, week or month"
// @Param from_date query string false "YYYY-MM-DD"
// @Param to_date query string false "YYYY-MM-DD, inclusive"
// @Success 200 {file} file
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/reports/export/{type} [get]
func (s *Server) ExportReport(c *fiber.Ctx) error {
	reportType := models.ReportType(c.Params("type"))
	data, filename, err := s.reportService.Export(c.UserContext(), reportType, reportQuery(c))
	if err != nil {
		return respond(c, err)
	}
	middleware.Logger.InfoContext(c.UserContext(), "report exported",
		"type", string(reportType), "bytes", len(data), "admin_id", actorID(c))

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(data)
}
