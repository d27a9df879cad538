package export

import (
	"context"
	"errors"
	"testing"
	"time"

	"drivebook/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type stubLister struct {
	byDate map[string][]models.AppointmentSlot
}

func (s *stubLister) ListSlotsForDate(ctx context.Context, date string, courseID int64) ([]models.AppointmentSlot, error) {
	return s.byDate[date], nil
}

type stubPricing struct {
	tiers []models.SlotPricing
	err   error
}

func (s *stubPricing) ListPricing(ctx context.Context) ([]models.SlotPricing, error) {
	return s.tiers, s.err
}

func (s *stubPricing) CreatePricing(ctx context.Context, p *models.SlotPricing) (*models.SlotPricing, error) {
	return p, nil
}

func (s *stubPricing) UpdatePricing(ctx context.Context, p *models.SlotPricing) (*models.SlotPricing, error) {
	return p, nil
}

func (s *stubPricing) DeletePricing(ctx context.Context, id int64) error { return nil }

func TestExportSchedule(t *testing.T) {
	lister := &stubLister{byDate: map[string][]models.AppointmentSlot{
		"2025-01-10": {
			{ID: 1, Date: "2025-01-10", StartTime: "10:00:00", EndTime: "10:30:00",
				InstructorName: "J. Doe", Location: "Main campus", PricePerSlot: 25, Status: models.SlotActive},
			{ID: 2, Date: "2025-01-10", StartTime: "11:00:00", EndTime: "11:30:00",
				PricePerSlot: 25, Status: models.SlotActive, IsBooked: true},
		},
		"2025-01-11": {
			{ID: 3, Date: "2025-01-11", StartTime: "09:00:00", EndTime: "10:00:00",
				PricePerSlot: 45, Status: models.SlotInactive},
		},
	}}

	logger := zerolog.Nop()
	e := New(lister, &stubPricing{}, 0, t.TempDir(), &logger)

	start := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	path, err := e.ExportSchedule(context.Background(), start, 2)
	require.NoError(t, err)
	assert.Contains(t, path, "schedule_2025-01-10_to_2025-01-11.xlsx")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	get := func(cell string) string {
		v, err := f.GetCellValue("Schedule", cell)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "Date", get("A2"))
	assert.Equal(t, "2025-01-10", get("A3"))
	assert.Equal(t, "10:00:00", get("B3"))
	assert.Equal(t, "J. Doe", get("D3"))
	assert.Equal(t, "available", get("G3"))
	assert.Equal(t, "booked", get("G4"))
	assert.Equal(t, "2025-01-11", get("A5"))
	assert.Equal(t, "inactive", get("G5"))
}

func TestExportPricing(t *testing.T) {
	pricing := &stubPricing{tiers: []models.SlotPricing{
		{ID: 1, DurationHours: 0.5, PricePerSlot: 25, Status: 1},
		{ID: 2, DurationHours: 1, PricePerSlot: 45, Status: 0},
	}}

	logger := zerolog.Nop()
	e := New(&stubLister{}, pricing, 0, t.TempDir(), &logger)

	path, err := e.ExportPricing(context.Background())
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue("Pricing", "B2")
	require.NoError(t, err)
	assert.Equal(t, "0.5", v)

	v, err = f.GetCellValue("Pricing", "D2")
	require.NoError(t, err)
	assert.Equal(t, "active", v)

	v, err = f.GetCellValue("Pricing", "D3")
	require.NoError(t, err)
	assert.Equal(t, "inactive", v)
}

func TestExportPricing_LoadError(t *testing.T) {
	logger := zerolog.Nop()
	e := New(&stubLister{}, &stubPricing{err: errors.New("backend down")}, 0, t.TempDir(), &logger)

	_, err := e.ExportPricing(context.Background())
	assert.Error(t, err)
}
