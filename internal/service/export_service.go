package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/digital-diary-api/internal/dto"
	appErrors "github.com/noah-isme/digital-diary-api/pkg/errors"
	"github.com/noah-isme/digital-diary-api/pkg/export"
)

const studentHeader = "Student"

// ExportFormat enumerates the supported download formats.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatPDF  ExportFormat = "pdf"
	ExportFormatXLSX ExportFormat = "xlsx"
)

var exportContentTypes = map[ExportFormat]string{
	ExportFormatCSV:  "text/csv; charset=utf-8",
	ExportFormatPDF:  "application/pdf",
	ExportFormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// ParseExportFormat normalises a format query value, defaulting to CSV.
func ParseExportFormat(raw string) (ExportFormat, error) {
	format := ExportFormat(strings.ToLower(strings.TrimSpace(raw)))
	if format == "" {
		return ExportFormatCSV, nil
	}
	if _, ok := exportContentTypes[format]; !ok {
		return "", appErrors.Clone(appErrors.ErrValidation, "format must be one of csv, pdf, xlsx")
	}
	return format, nil
}

// ExportFile is a rendered grid ready to be streamed.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

type attendanceGridSource interface {
	Grid(ctx context.Context, teacherID string, scope dto.JournalScope) (*dto.AttendanceGrid, error)
}

type gradeGridSource interface {
	Grid(ctx context.Context, teacherID string, scope dto.JournalScope) (*dto.GradeGrid, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type xlsxRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportService renders journal grids as downloadable files.
type ExportService struct {
	attendance attendanceGridSource
	grades     gradeGridSource
	csv        csvRenderer
	pdf        pdfRenderer
	xlsx       xlsxRenderer
	metrics    *MetricsService
	logger     *zap.Logger
	now        func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers get defaults.
func NewExportService(attendance attendanceGridSource, grades gradeGridSource, metrics *MetricsService, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer, xlsx xlsxRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if xlsx == nil {
		xlsx = export.NewXLSXExporter("")
	}
	return &ExportService{
		attendance: attendance,
		grades:     grades,
		csv:        csv,
		pdf:        pdf,
		xlsx:       xlsx,
		metrics:    metrics,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Attendance renders the attendance grid of scope.
func (s *ExportService) Attendance(ctx context.Context, teacherID string, scope dto.JournalScope, format ExportFormat) (*ExportFile, error) {
	grid, err := s.attendance.Grid(ctx, teacherID, scope)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("Attendance %s", scope.ClassName)
	return s.render(recordKindAttendance, scope, format, AttendanceDataset(grid), title)
}

// Grades renders the grade grid of scope.
func (s *ExportService) Grades(ctx context.Context, teacherID string, scope dto.JournalScope, format ExportFormat) (*ExportFile, error) {
	grid, err := s.grades.Grid(ctx, teacherID, scope)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("%s %s", scope.Subject, scope.ClassName)
	return s.render(recordKindGrade, scope, format, GradeDataset(grid), title)
}

func (s *ExportService) render(kind string, scope dto.JournalScope, format ExportFormat, data export.Dataset, title string) (*ExportFile, error) {
	var (
		body []byte
		err  error
	)
	switch format {
	case ExportFormatCSV:
		body, err = s.csv.Render(data)
	case ExportFormatPDF:
		body, err = s.pdf.Render(data, title)
	case ExportFormatXLSX:
		body, err = s.xlsx.Render(data)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format "+string(format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	s.metrics.RecordExport(kind, string(format))
	s.logger.Debug("grid exported", zap.String("kind", kind), zap.String("format", string(format)), zap.Int("bytes", len(body)))

	return &ExportFile{
		Filename:    s.filename(kind, scope, format),
		ContentType: exportContentTypes[format],
		Body:        body,
	}, nil
}

func (s *ExportService) filename(kind string, scope dto.JournalScope, format ExportFormat) string {
	return fmt.Sprintf("%s_%s_%s_%s.%s", kind, sanitizeFilename(scope.Subject), sanitizeFilename(scope.ClassName), s.now().Format("20060102"), format)
}

// AttendanceDataset flattens an attendance grid: one row per student, one
// column per date holding the status symbol.
func AttendanceDataset(grid *dto.AttendanceGrid) export.Dataset {
	data := export.Dataset{Headers: append([]string{studentHeader}, grid.Dates...)}
	for _, row := range grid.Rows {
		record := map[string]string{studentHeader: row.Student.DisplayName()}
		for i, cell := range row.Cells {
			if cell != nil {
				record[grid.Dates[i]] = cell.Status
			}
		}
		data.Rows = append(data.Rows, record)
	}
	return data
}

// GradeDataset flattens a grade grid, joining same-day values with ", ".
func GradeDataset(grid *dto.GradeGrid) export.Dataset {
	data := export.Dataset{Headers: append([]string{studentHeader}, grid.Dates...)}
	for _, row := range grid.Rows {
		record := map[string]string{studentHeader: row.Student.DisplayName()}
		for i, grades := range row.Cells {
			values := make([]string, len(grades))
			for j, g := range grades {
				values[j] = strconv.Itoa(g.Value)
			}
			record[grid.Dates[i]] = strings.Join(values, ", ")
		}
		data.Rows = append(data.Rows, record)
	}
	return data
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "\"", "")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
