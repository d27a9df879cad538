package models

// Session states for the booking workflow. FormValid/FormInvalid are
// derived from the draft on every edit, not stored as states.
const (
	StateIdle         = "idle"
	StateSlotSelected = "slot_selected"
	StateSubmitting   = "submitting"
	StateSucceeded    = "succeeded"
	StateFailed       = "failed"
)

// Appointment statuses as reported by the backend.
const (
	AppointmentScheduled = "scheduled"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
)

const (
	// PricingCacheTTL lifetime of the cached slot-pricing list in Redis.
	PricingCacheTTL = 30 * 60 // 30 minutes in seconds

	// DateLayout calendar date format used across the backend API.
	DateLayout = "2006-01-02"

	// ClockLayout time-of-day format used on slot rows.
	ClockLayout = "15:04:05"

	// DefaultScheduleExportDays export range when none is given.
	DefaultScheduleExportDays = 14

	// DefaultRequestTimeout backend HTTP client timeout in seconds.
	DefaultRequestTimeout = 10
)
