package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"go-dash/internal/engine/model"
	"go-dash/internal/features/dashboard"
	"go-dash/pkg/utils"
)

type ExportService interface {
	// ExportDashboard renders the session's loaded dashboard into an xlsx
	// workbook and returns the bytes plus a download filename.
	ExportDashboard(ctx context.Context, session string) ([]byte, string, error)
}

type ExportServiceImpl struct {
	DashboardService dashboard.DashboardService
}

func NewExportService(dashboardService dashboard.DashboardService) ExportService {
	return &ExportServiceImpl{
		DashboardService: dashboardService,
	}
}

func (s *ExportServiceImpl) ExportDashboard(ctx context.Context, session string) ([]byte, string, error) {
	eng := s.DashboardService.Engine(session)
	dash := eng.View.Dashboard()
	if dash == nil {
		return nil, "", fmt.Errorf("no dashboard loaded in session %s", session)
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	if err := writeLayoutSheet(f, headerStyle, dash); err != nil {
		return nil, "", err
	}
	if err := writeFiltersSheet(f, headerStyle, eng.View.Filters()); err != nil {
		return nil, "", err
	}
	if err := writeAlertsSheet(f, headerStyle, eng.View.Alerts()); err != nil {
		return nil, "", err
	}
	if err := writeSummariesSheet(f, headerStyle, eng.View.Summary().Summaries); err != nil {
		return nil, "", err
	}
	f.DeleteSheet("Sheet1")

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}
	return buffer.Bytes(), exportFilename(dash), nil
}

func writeLayoutSheet(f *excelize.File, headerStyle int, dash *model.Dashboard) error {
	const sheet = "Layout"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)

	writeHeader(f, sheet, headerStyle, []string{"Section", "Section Title", "Item", "Widget Type", "Widget Title", "Widget Ref", "Width", "Height"})

	row := 2
	if dash.Layout != nil {
		for si, section := range dash.Layout.Sections {
			for ii, item := range section.Items {
				if item.Widget == nil {
					continue
				}
				base := item.Widget.Common()
				writeRow(f, sheet, row, []interface{}{
					si, section.Header.Title, ii,
					string(item.Widget.Type()), base.Title, base.Ref.Key(),
					item.Size.GridWidth, item.Size.GridHeight,
				})
				row++
			}
		}
	}
	setColumnWidths(f, sheet, 8)
	return nil
}

func writeFiltersSheet(f *excelize.File, headerStyle int, filters []model.Filter) error {
	const sheet = "Filters"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	writeHeader(f, sheet, headerStyle, []string{"Kind", "Target", "Detail"})

	for i, filter := range filters {
		kind, target, detail := describeFilter(filter)
		writeRow(f, sheet, i+2, []interface{}{kind, target, detail})
	}
	setColumnWidths(f, sheet, 3)
	return nil
}

func writeAlertsSheet(f *excelize.File, headerStyle int, alerts []model.Alert) error {
	const sheet = "Alerts"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	writeHeader(f, sheet, headerStyle, []string{"Ref", "Widget", "Operator", "Threshold", "Triggered", "Created"})

	for i, alert := range alerts {
		writeRow(f, sheet, i+2, []interface{}{
			alert.Ref.Key(), alert.Widget.Key(),
			alert.Condition.Operator, alert.Condition.Threshold,
			alert.Triggered, alert.Created.Format("2006-01-02 15:04:05"),
		})
	}
	setColumnWidths(f, sheet, 6)
	return nil
}

func writeSummariesSheet(f *excelize.File, headerStyle int, summaries []model.Summary) error {
	const sheet = "Summaries"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	writeHeader(f, sheet, headerStyle, []string{"ID", "Created", "Content"})

	for i, summary := range summaries {
		writeRow(f, sheet, i+2, []interface{}{
			summary.ID, summary.Created.Format("2006-01-02 15:04:05"), summary.Content,
		})
	}
	setColumnWidths(f, sheet, 3)
	return nil
}

func writeHeader(f *excelize.File, sheet string, style int, columns []string) {
	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, col)
		f.SetCellStyle(sheet, cell, cell, style)
	}
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) {
	for i, val := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		f.SetCellValue(sheet, cell, val)
	}
}

func setColumnWidths(f *excelize.File, sheet string, columns int) {
	for i := 0; i < columns; i++ {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, 18)
	}
}

func describeFilter(filter model.Filter) (kind, target, detail string) {
	switch typed := filter.(type) {
	case *model.AttributeFilter:
		verb := "in"
		if typed.Negative {
			verb = "not in"
		}
		return "attribute", typed.DisplayForm.Key(), fmt.Sprintf("%s [%s]", verb, strings.Join(typed.Elements, ", "))
	case *model.DateFilter:
		if typed.IsAllTime() {
			return "date", typed.DataSet.Key(), "all time"
		}
		if typed.Type == model.DateFilterAbsolute {
			return "date", typed.DataSet.Key(), fmt.Sprintf("%s .. %s", typed.FromDate, typed.ToDate)
		}
		return "date", typed.DataSet.Key(), fmt.Sprintf("relative %s %s..%s", typed.Granularity, boundText(typed.From), boundText(typed.To))
	case *model.MeasureValueFilter:
		return "measureValue", typed.Measure.Key(), fmt.Sprintf("%s %v", typed.Operator, typed.Value)
	default:
		return "unknown", "", ""
	}
}

func boundText(bound *int) string {
	if bound == nil {
		return ""
	}
	return fmt.Sprintf("%d", *bound)
}

func exportFilename(dash *model.Dashboard) string {
	name := utils.Slugify(dash.Title)
	if name == "" {
		name = utils.Slugify(dash.Ref.Key())
	}
	return name + ".xlsx"
}
