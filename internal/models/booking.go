package models

import "time"

// SlotSnapshot is the immutable view of a slot embedded in a booking
// record. Optional fields may be empty; consumers substitute fallbacks.
type SlotSnapshot struct {
	Date           string  `json:"date"`
	StartTime      string  `json:"startTime"`
	EndTime        string  `json:"endTime"`
	InstructorName string  `json:"instructorName,omitempty"`
	Location       string  `json:"location,omitempty"`
	PricePerSlot   float64 `json:"pricePerSlot"`
}

// BookingRequest is the payload sent to the backend when booking a slot
// as an authenticated student.
type BookingRequest struct {
	AvailableAppointmentSlotID  int64   `json:"availableAppointmentSlotId"`
	HoursToConsume              float64 `json:"hoursToConsume"`
	AmountPaid                  float64 `json:"amountPaid"`
	Note                        string  `json:"note,omitempty"`
	PermitNumber                string  `json:"permitNumber"`
	LearnerPermitIssueDate      string  `json:"learnerPermitIssueDate"`
	PermitExpirationDate        string  `json:"permitExpirationDate"`
	DrivingExperience           string  `json:"drivingExperience"`
	IsLicenceFromAnotherCountry bool    `json:"isLicenceFromAnotherCountry"`
}

// GuestRegistration carries the account fields bundled with a guest
// booking, since the guest has no existing login.
type GuestRegistration struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phoneNumber"`
	Password  string `json:"password"`
}

// GuestBookingRequest is the combined booking-plus-registration payload
// for the appointments-with-registration endpoint.
type GuestBookingRequest struct {
	BookingRequest
	GuestRegistration
}

// BookingResult is the outcome of one submission attempt. AppointmentID
// is set only on success; ErrorMessage only on failure.
type BookingResult struct {
	Success       bool         `json:"success"`
	AppointmentID int64        `json:"appointmentId,omitempty"`
	Status        string       `json:"status,omitempty"`
	CreatedAt     time.Time    `json:"createdAt,omitempty"`
	Slot          SlotSnapshot `json:"appointmentSlot,omitempty"`
	ErrorMessage  string       `json:"errorMessage,omitempty"`
}

// SlotPricing is an admin-managed price tier keyed by slot duration.
type SlotPricing struct {
	ID            int64   `json:"id"`
	DurationHours float64 `json:"duration_hours"`
	PricePerSlot  float64 `json:"price_per_slot"`
	Status        int     `json:"status"`
}
