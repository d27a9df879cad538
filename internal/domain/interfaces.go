package domain

import (
	"context"

	"drivebook/internal/models"
)

// SlotLister retrieves candidate slots for a calendar date. courseID
// narrows the listing when positive and is omitted otherwise.
type SlotLister interface {
	ListSlotsForDate(ctx context.Context, date string, courseID int64) ([]models.AppointmentSlot, error)
}

// BookingSubmitter sends a finished draft to the backend. A nil error
// with a result means the backend accepted the booking; a *BookingError
// (or transport error) means the attempt failed.
type BookingSubmitter interface {
	BookAppointment(ctx context.Context, req *models.BookingRequest) (*models.BookingResult, error)
	BookAsGuest(ctx context.Context, req *models.GuestBookingRequest) (*models.BookingResult, error)
}

// SlotAdmin covers the back-office slot maintenance endpoints.
type SlotAdmin interface {
	CreateSlot(ctx context.Context, slot *models.AppointmentSlot) (*models.AppointmentSlot, error)
	UpdateSlot(ctx context.Context, slot *models.AppointmentSlot) (*models.AppointmentSlot, error)
	DeleteSlot(ctx context.Context, id int64) error
}

// PricingStore covers the slot-pricing CRUD endpoints.
type PricingStore interface {
	ListPricing(ctx context.Context) ([]models.SlotPricing, error)
	CreatePricing(ctx context.Context, p *models.SlotPricing) (*models.SlotPricing, error)
	UpdatePricing(ctx context.Context, p *models.SlotPricing) (*models.SlotPricing, error)
	DeletePricing(ctx context.Context, id int64) error
}

// EventPublisher is the in-process bus surface used by the workflow.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// ReceiptWriter turns a successful booking into a downloadable artifact
// and returns the path it was written to.
type ReceiptWriter interface {
	Save(result *models.BookingResult, studentName string) (string, error)
}
