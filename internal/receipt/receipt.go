// Package receipt renders a booking confirmation as a one-page PDF.
// Generation never fails on missing optional data; absent fields fall
// back to placeholder text.
package receipt

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"drivebook/internal/domain"
	"drivebook/internal/events"
	"drivebook/internal/metrics"
	"drivebook/internal/models"

	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog"
	qrcode "github.com/skip2/go-qrcode"
)

// ErrNotSuccessful a receipt was requested for a failed booking.
var ErrNotSuccessful = errors.New("receipt requires a successful booking")

const fallbackText = "N/A"

// instructionalNotes is printed on every receipt.
var instructionalNotes = []string{
	"Arrive at least 15 minutes before your scheduled start time.",
	"Bring your learner permit and a government-issued photo ID.",
	"Wear closed-toe shoes; sandals and heels are not permitted.",
	"Lessons cancelled less than 24 hours in advance are charged in full.",
}

type Generator struct {
	institution string
	outputDir   string
	verifyURL   string
	bus         domain.EventPublisher
	logger      *zerolog.Logger
}

var _ domain.ReceiptWriter = (*Generator)(nil)

func NewGenerator(institution, outputDir, verifyURL string, bus domain.EventPublisher, logger *zerolog.Logger) *Generator {
	if institution == "" {
		institution = "Driving School"
	}
	return &Generator{
		institution: institution,
		outputDir:   outputDir,
		verifyURL:   verifyURL,
		bus:         bus,
		logger:      logger,
	}
}

// FileName derives the deterministic artifact name from the booking id
// and the generation date.
func FileName(appointmentID int64, now time.Time) string {
	return fmt.Sprintf("receipt_%d_%s.pdf", appointmentID, now.Format(models.DateLayout))
}

// Render produces the PDF bytes for a successful booking.
func (g *Generator) Render(result *models.BookingResult, studentName string) ([]byte, error) {
	if result == nil || !result.Success {
		return nil, ErrNotSuccessful
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	pdf.SetAutoPageBreak(false, 0)

	// Header
	pdf.SetFont("Helvetica", "B", 20)
	pdf.Cell(0, 12, g.institution)
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, "Appointment Booking Receipt")
	pdf.Ln(12)

	pdf.SetDrawColor(220, 220, 220)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(8)

	// Summary box with QR on the right
	yStart := pdf.GetY()
	pdf.SetFillColor(245, 245, 245)
	pdf.Rect(15, yStart, 120, 40, "F")

	pdf.SetXY(20, yStart+6)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "BOOKING SUMMARY")
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Booking ID: %d", result.AppointmentID))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Status: %s", orFallback(result.Status)))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Booked on: %s", result.CreatedAt.Format("2006-01-02 15:04")))

	if qrBytes, err := qrcode.Encode(g.verifyTarget(result.AppointmentID), qrcode.Medium, 256); err == nil {
		pdf.RegisterImageOptionsReader("qr", gofpdf.ImageOptions{ImageType: "png"}, bytes.NewReader(qrBytes))
		pdf.ImageOptions("qr", 150, yStart, 40, 0, false, gofpdf.ImageOptions{ImageType: "png"}, 0, "")
	}

	pdf.SetY(yStart + 48)

	// Student
	g.section(pdf, "STUDENT")
	g.line(pdf, "Name", orFallback(studentName))
	pdf.Ln(4)

	// Schedule
	g.section(pdf, "SCHEDULE")
	g.line(pdf, "Date", orFallback(result.Slot.Date))
	g.line(pdf, "Time", scheduleTime(result.Slot))
	g.line(pdf, "Instructor", orFallback(result.Slot.InstructorName))
	g.line(pdf, "Location", orFallback(result.Slot.Location))
	pdf.Ln(4)

	// Payment
	g.section(pdf, "PAYMENT")
	g.line(pdf, "Amount paid", fmt.Sprintf("$%.2f", result.Slot.PricePerSlot))
	pdf.Ln(4)

	// Notes
	g.section(pdf, "BEFORE YOUR LESSON")
	pdf.SetFont("Helvetica", "", 10)
	for i, note := range instructionalNotes {
		pdf.Cell(0, 6, fmt.Sprintf("%d. %s", i+1, note))
		pdf.Ln(5)
	}

	// Footer
	pdf.Line(15, 280, 195, 280)
	pdf.SetY(283)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, fmt.Sprintf("%s - this receipt confirms your appointment.", g.institution), "", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}

// Save renders the receipt and writes it under the configured output
// directory, returning the full path.
func (g *Generator) Save(result *models.BookingResult, studentName string) (string, error) {
	data, err := g.Render(result, studentName)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create receipt directory: %w", err)
	}

	path := filepath.Join(g.outputDir, FileName(result.AppointmentID, time.Now()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write receipt: %w", err)
	}

	metrics.IncReceipt()
	g.logger.Info().Str("path", path).Int64("appointment_id", result.AppointmentID).Msg("receipt written")
	_ = g.bus.PublishJSON(events.EventReceiptGenerated, events.BookingEventPayload{
		AppointmentID: result.AppointmentID, Date: result.Slot.Date,
	})
	return path, nil
}

func (g *Generator) verifyTarget(appointmentID int64) string {
	if g.verifyURL != "" {
		return fmt.Sprintf("%s/%d", g.verifyURL, appointmentID)
	}
	return fmt.Sprintf("appointment:%d", appointmentID)
}

func (g *Generator) section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(0, 8, title, "", 1, "L", true, 0, "")
	pdf.Ln(2)
}

func (g *Generator) line(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("%s: %s", label, value))
	pdf.Ln(6)
}

func orFallback(v string) string {
	if v == "" {
		return fallbackText
	}
	return v
}

func scheduleTime(slot models.SlotSnapshot) string {
	if slot.StartTime == "" || slot.EndTime == "" {
		return fallbackText
	}
	return slot.StartTime + " - " + slot.EndTime
}
