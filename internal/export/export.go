// Package export produces the back-office Excel reports: a date-range
// slot schedule and the pricing table.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"drivebook/internal/domain"
	"drivebook/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

type Exporter struct {
	lister   domain.SlotLister
	pricing  domain.PricingStore
	courseID int64
	path     string
	logger   *zerolog.Logger
}

func New(lister domain.SlotLister, pricing domain.PricingStore, courseID int64, path string, logger *zerolog.Logger) *Exporter {
	return &Exporter{
		lister:   lister,
		pricing:  pricing,
		courseID: courseID,
		path:     path,
		logger:   logger,
	}
}

// ExportSchedule writes one row per slot for each date in the range and
// returns the file path. Days defaults to two weeks when non-positive.
func (e *Exporter) ExportSchedule(ctx context.Context, startDate time.Time, days int) (string, error) {
	if days <= 0 {
		days = models.DefaultScheduleExportDays
	}
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Schedule"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return "", fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	endDate := startDate.AddDate(0, 0, days-1)
	_ = f.SetCellValue(sheet, "A1", fmt.Sprintf("Schedule: %s - %s",
		startDate.Format(models.DateLayout), endDate.Format(models.DateLayout)))
	_ = f.MergeCell(sheet, "A1", "G1")

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheet, "A1", "A1", titleStyle)

	writeHeaderRow(f, sheet, 2, []string{"Date", "Start", "End", "Instructor", "Location", "Price", "Availability"})

	row := 3
	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		date := d.Format(models.DateLayout)
		slots, err := e.lister.ListSlotsForDate(ctx, date, e.courseID)
		if err != nil {
			e.logger.Warn().Err(err).Str("date", date).Msg("skipping date in schedule export")
			continue
		}
		for i := range slots {
			writeSlotRow(f, sheet, row, &slots[i])
			row++
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 14)
	_ = f.SetColWidth(sheet, "B", "C", 10)
	_ = f.SetColWidth(sheet, "D", "E", 22)
	_ = f.SetColWidth(sheet, "F", "G", 12)

	fileName := fmt.Sprintf("schedule_%s_to_%s.xlsx",
		startDate.Format(models.DateLayout), endDate.Format(models.DateLayout))
	filePath := filepath.Join(e.path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("save schedule export: %w", err)
	}

	e.logger.Info().Str("file_path", filePath).Int("rows", row-3).Msg("schedule export created")
	return filePath, nil
}

// ExportPricing writes the current pricing tiers and returns the path.
func (e *Exporter) ExportPricing(ctx context.Context) (string, error) {
	pricing, err := e.pricing.ListPricing(ctx)
	if err != nil {
		return "", fmt.Errorf("load pricing: %w", err)
	}
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Pricing"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return "", fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	writeHeaderRow(f, sheet, 1, []string{"ID", "Duration (hours)", "Price per slot", "Status"})

	for i, p := range pricing {
		row := i + 2
		_ = f.SetCellValue(sheet, cell(1, row), p.ID)
		_ = f.SetCellValue(sheet, cell(2, row), p.DurationHours)
		_ = f.SetCellValue(sheet, cell(3, row), p.PricePerSlot)
		status := "inactive"
		if p.Status == 1 {
			status = "active"
		}
		_ = f.SetCellValue(sheet, cell(4, row), status)
	}

	_ = f.SetColWidth(sheet, "A", "D", 16)

	filePath := filepath.Join(e.path, fmt.Sprintf("pricing_%s.xlsx", time.Now().Format(models.DateLayout)))
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("save pricing export: %w", err)
	}

	e.logger.Info().Str("file_path", filePath).Int("tiers", len(pricing)).Msg("pricing export created")
	return filePath, nil
}

func writeSlotRow(f *excelize.File, sheet string, row int, slot *models.AppointmentSlot) {
	_ = f.SetCellValue(sheet, cell(1, row), slot.Date)
	_ = f.SetCellValue(sheet, cell(2, row), slot.StartTime)
	_ = f.SetCellValue(sheet, cell(3, row), slot.EndTime)
	_ = f.SetCellValue(sheet, cell(4, row), slot.InstructorName)
	_ = f.SetCellValue(sheet, cell(5, row), slot.Location)
	_ = f.SetCellValue(sheet, cell(6, row), slot.PricePerSlot)

	availability := "available"
	switch {
	case slot.Status != models.SlotActive:
		availability = "inactive"
	case slot.IsBooked:
		availability = "booked"
	}
	_ = f.SetCellValue(sheet, cell(7, row), availability)
}

func writeHeaderRow(f *excelize.File, sheet string, row int, headers []string) {
	style, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, h := range headers {
		_ = f.SetCellValue(sheet, cell(i+1, row), h)
		_ = f.SetCellStyle(sheet, cell(i+1, row), cell(i+1, row), style)
	}
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
