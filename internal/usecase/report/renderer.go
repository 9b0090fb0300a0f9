package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/johnquangdev/cyberon-reporter/internal/domain/entities"
	ucerrors "github.com/johnquangdev/cyberon-reporter/internal/usecase/errors"
)

// SheetName is the only worksheet of a report
const SheetName = "Посещаемость"

// Headers are the column titles of row 1, columns A to F
var Headers = []string{
	"Имя",
	"Присутствовал",
	"Базовые кибероны",
	"Кибероны активности",
	"Кибероны достижений",
	"Всего киберонов",
}

// ColumnWidths are the fixed widths of columns A to F
var ColumnWidths = map[string]float64{
	"A": 20,
	"B": 15,
	"C": 18,
	"D": 20,
	"E": 22,
	"F": 18,
}

const (
	presentYes = "Да"
	presentNo  = "Нет"
)

// Renderer turns attendance records into xlsx workbooks held in memory
type Renderer struct {
	logger *zap.Logger
}

// NewRenderer creates a renderer
func NewRenderer(logger *zap.Logger) *Renderer {
	return &Renderer{logger: logger}
}

// Render builds the report for record. Errors wrap ErrRender.
func (r *Renderer) Render(record *entities.AttendanceRecord) (*entities.ReportArtifact, error) {
	if record == nil {
		return nil, fmt.Errorf("%w: record is nil", ucerrors.ErrRender)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := r.fill(f, record); err != nil {
		return nil, fmt.Errorf("%w: %w", ucerrors.ErrRender, err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to write workbook: %w", ucerrors.ErrRender, err)
	}

	artifact := &entities.ReportArtifact{
		Filename:    Filename(record.Group, record.Date),
		ContentType: entities.XLSXContentType,
		Content:     buf.Bytes(),
	}

	if r.logger != nil {
		r.logger.Debug("📊 Report rendered",
			zap.String("filename", artifact.Filename),
			zap.Int("rows", len(record.Attendees)),
			zap.Int64("size", artifact.Size()),
		)
	}
	return artifact, nil
}

func (r *Renderer) fill(f *excelize.File, record *entities.AttendanceRecord) error {
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "F1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, a := range record.Attendees {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			a.Name,
			presence(a.WasPresent),
			a.Cyberons.Base,
			a.Cyberons.Activity,
			a.Cyberons.Achievement,
			a.Cyberons.Total,
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	for col, width := range ColumnWidths {
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("failed to set width of column %s: %w", col, err)
		}
	}
	return nil
}

func presence(present bool) string {
	if present {
		return presentYes
	}
	return presentNo
}
