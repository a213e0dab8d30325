package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/telemetry"
	"github.com/xuri/excelize/v2"
)

const (
	exportSheet       = "Attendance"
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportTimeLayout  = "15:04"
	defaultExportDays = 30
)

var exportHeader = []interface{}{
	"Date", "Employee Code", "Employee Name", "Status",
	"Check In", "Check In IP", "Check Out", "Check Out IP",
	"Work Minutes", "Notes", "Override Reason",
}

// Export implements attendance.AttendanceService. Without a range it covers
// the last 30 days.
func (s *AttendanceServiceImpl) Export(ctx context.Context, principal user.Principal, filter attendance.ExportFilter) (file attendance.ExportFile, err error) {
	ctx, span := s.start(ctx, "export", principal)
	defer func() { telemetry.RecordError(span, err); span.End() }()

	if err := principal.RequireAdmin(); err != nil {
		return attendance.ExportFile{}, err
	}
	if err := filter.Validate(); err != nil {
		return attendance.ExportFile{}, err
	}

	to := attendance.Day(s.clock.Now(), s.loc)
	if filter.To != nil {
		to = *filter.To
	}
	from := to.AddDate(0, 0, -(defaultExportDays - 1))
	if filter.From != nil {
		from = *filter.From
	}
	if err := attendance.ValidateExportRange(from, to); err != nil {
		return attendance.ExportFile{}, err
	}

	records, err := s.attendances.List(ctx, attendance.AttendanceFilter{From: &from, To: &to})
	if err != nil {
		return attendance.ExportFile{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	content, err := s.buildWorkbook(records)
	if err != nil {
		return attendance.ExportFile{}, fmt.Errorf("failed to build workbook: %w", err)
	}

	return attendance.ExportFile{
		Filename:    fmt.Sprintf("attendance_%s_%s.xlsx", from.Format("20060102"), to.Format("20060102")),
		ContentType: xlsxContentType,
		Content:     content,
	}, nil
}

func (s *AttendanceServiceImpl) buildWorkbook(records []attendance.Attendance) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return nil, err
	}

	header := exportHeader
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	lastCol, err := excelize.ColumnNumberToName(len(exportHeader))
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(exportSheet, "A1", lastCol+"1", bold); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(exportSheet, "A", lastCol, 16); err != nil {
		return nil, err
	}

	for i, r := range records {
		row := []interface{}{
			r.Date.Format("2006-01-02"),
			deref(r.EmployeeCode),
			deref(r.EmployeeName),
			string(r.Status),
			s.clockTime(r.CheckInTime),
			deref(r.CheckInIP),
			s.clockTime(r.CheckOutTime),
			deref(r.CheckOutIP),
			r.WorkMinutes,
			deref(r.Notes),
			deref(r.OverrideReason),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *AttendanceServiceImpl) clockTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(s.loc).Format(exportTimeLayout)
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
