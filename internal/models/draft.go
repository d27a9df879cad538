package models

import "strings"

// FieldError is a per-field validation failure, keyed by the draft's
// JSON field name so the UI can attach it inline.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// BookingDraft is the in-progress form data for one booking attempt.
// It is owned by exactly one session and reset whenever the slot
// selection changes.
type BookingDraft struct {
	SelectedSlotID              int64  `json:"availableAppointmentSlotId"`
	Note                        string `json:"note,omitempty"`
	PermitNumber                string `json:"permitNumber"`
	LearnerPermitIssueDate      string `json:"learnerPermitIssueDate"` // YYYY-MM-DD
	PermitExpirationDate        string `json:"permitExpirationDate"`   // YYYY-MM-DD
	DrivingExperience           string `json:"drivingExperience"`
	IsLicenceFromAnotherCountry bool   `json:"isLicenceFromAnotherCountry"`
}

// Validate checks the required fields and returns one FieldError per
// violation. An empty result means the draft may be submitted.
func (d *BookingDraft) Validate() []FieldError {
	var errs []FieldError

	if strings.TrimSpace(d.PermitNumber) == "" {
		errs = append(errs, FieldError{Field: "permitNumber", Message: "permit number is required"})
	}
	if strings.TrimSpace(d.LearnerPermitIssueDate) == "" {
		errs = append(errs, FieldError{Field: "learnerPermitIssueDate", Message: "permit issue date is required"})
	}
	if strings.TrimSpace(d.PermitExpirationDate) == "" {
		errs = append(errs, FieldError{Field: "permitExpirationDate", Message: "permit expiration date is required"})
	}
	if strings.TrimSpace(d.DrivingExperience) == "" {
		errs = append(errs, FieldError{Field: "drivingExperience", Message: "driving experience is required"})
	}

	return errs
}

// Reset clears all user-entered fields while keeping the zero value
// usable for a fresh attempt.
func (d *BookingDraft) Reset() {
	*d = BookingDraft{}
}
