// Package session implements the booking workflow state machine:
// Idle -> SlotSelected -> Submitting -> Succeeded | Failed. One session
// owns one draft; nothing here is shared between sessions.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"drivebook/internal/backend"
	"drivebook/internal/domain"
	"drivebook/internal/events"
	"drivebook/internal/metrics"
	"drivebook/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrNoSlotSelected a draft edit or submission without a selected slot.
	ErrNoSlotSelected = errors.New("no slot selected")
	// ErrSlotNotBookable the chosen slot fails the offerability check.
	ErrSlotNotBookable = errors.New("slot is not bookable")
	// ErrInvalidDraft required draft fields are missing; see FieldErrors.
	ErrInvalidDraft = errors.New("draft failed validation")
	// ErrSubmissionInFlight a submission is already outstanding.
	ErrSubmissionInFlight = errors.New("submission already in flight")
	// ErrStaleAttempt the session was reset while the request was in flight.
	ErrStaleAttempt = errors.New("submission superseded by session reset")
	// ErrAwaitingAcknowledge a terminal outcome has not been acknowledged yet.
	ErrAwaitingAcknowledge = errors.New("previous outcome not acknowledged")
)

// BookingSession tracks one user's in-progress booking. Submissions are
// tagged with an attempt counter; a response whose attempt no longer
// matches the session is discarded rather than applied.
type BookingSession struct {
	mu          sync.Mutex
	id          string
	state       string
	slot        *models.AppointmentSlot
	hours       float64
	draft       models.BookingDraft
	fieldErrors []models.FieldError
	result      *models.BookingResult
	attempt     uint64

	submitter domain.BookingSubmitter
	bus       domain.EventPublisher
	logger    *zerolog.Logger
}

func New(submitter domain.BookingSubmitter, bus domain.EventPublisher, logger *zerolog.Logger) *BookingSession {
	return &BookingSession{
		id:        uuid.NewString(),
		state:     models.StateIdle,
		submitter: submitter,
		bus:       bus,
		logger:    logger,
	}
}

func (s *BookingSession) ID() string {
	return s.id
}

func (s *BookingSession) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SelectSlot moves the session to SlotSelected. Re-selecting the same
// slot keeps the draft; a different slot resets it. Terminal outcomes
// must be acknowledged first.
func (s *BookingSession) SelectSlot(slot *models.AppointmentSlot) error {
	if !slot.Bookable() {
		return ErrSlotNotBookable
	}
	hours, err := slot.HoursToConsume()
	if err != nil {
		return err
	}

	s.mu.Lock()
	switch s.state {
	case models.StateSubmitting:
		s.mu.Unlock()
		return ErrSubmissionInFlight
	case models.StateSucceeded, models.StateFailed:
		s.mu.Unlock()
		return ErrAwaitingAcknowledge
	}

	same := s.slot != nil && s.slot.ID == slot.ID && s.state == models.StateSlotSelected
	chosen := *slot
	s.slot = &chosen
	s.hours = hours
	if !same {
		s.draft.Reset()
		s.draft.SelectedSlotID = slot.ID
		s.fieldErrors = nil
	}
	s.state = models.StateSlotSelected
	date := slot.Date
	s.mu.Unlock()

	_ = s.bus.PublishJSON(events.EventSlotSelected, events.BookingEventPayload{
		SessionID: s.id, SlotID: slot.ID, Date: date, HoursToConsume: hours,
	})
	return nil
}

// Cancel resets the session to Idle from any state, discarding the
// draft. A response to an in-flight submission is ignored afterwards.
func (s *BookingSession) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempt++
	s.reset()
}

// Acknowledge consumes a terminal outcome: Succeeded goes back to Idle,
// Failed returns to SlotSelected with a cleared draft so the user can
// retry or pick another slot.
func (s *BookingSession) Acknowledge() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case models.StateSucceeded:
		s.reset()
		return nil
	case models.StateFailed:
		s.draft.Reset()
		s.draft.SelectedSlotID = s.slot.ID
		s.fieldErrors = nil
		s.result = nil
		s.state = models.StateSlotSelected
		return nil
	default:
		return errors.New("nothing to acknowledge in state " + s.state)
	}
}

// reset clears everything back to Idle. Caller holds the lock.
func (s *BookingSession) reset() {
	s.state = models.StateIdle
	s.slot = nil
	s.hours = 0
	s.draft.Reset()
	s.fieldErrors = nil
	s.result = nil
}

// Draft edits. Validity is recomputed on every change; the state never
// leaves SlotSelected while editing.

func (s *BookingSession) SetNote(v string) error { return s.edit(func(d *models.BookingDraft) { d.Note = v }) }

func (s *BookingSession) SetPermitNumber(v string) error {
	return s.edit(func(d *models.BookingDraft) { d.PermitNumber = v })
}

func (s *BookingSession) SetLearnerPermitIssueDate(v string) error {
	return s.edit(func(d *models.BookingDraft) { d.LearnerPermitIssueDate = v })
}

func (s *BookingSession) SetPermitExpirationDate(v string) error {
	return s.edit(func(d *models.BookingDraft) { d.PermitExpirationDate = v })
}

func (s *BookingSession) SetDrivingExperience(v string) error {
	return s.edit(func(d *models.BookingDraft) { d.DrivingExperience = v })
}

func (s *BookingSession) SetLicenceFromAnotherCountry(v bool) error {
	return s.edit(func(d *models.BookingDraft) { d.IsLicenceFromAnotherCountry = v })
}

func (s *BookingSession) edit(mutate func(*models.BookingDraft)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != models.StateSlotSelected {
		return ErrNoSlotSelected
	}
	mutate(&s.draft)
	s.fieldErrors = s.draft.Validate()
	return nil
}

// Draft returns a copy of the current draft.
func (s *BookingSession) Draft() models.BookingDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// DraftValid reports whether the draft would pass submission.
func (s *BookingSession) DraftValid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.draft.Validate()) == 0
}

// FieldErrors returns the per-field validation errors from the last
// edit or rejected submission.
func (s *BookingSession) FieldErrors() []models.FieldError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.FieldError(nil), s.fieldErrors...)
}

// HoursToConsume is the selected slot's duration in hours. The same
// value is shown in the summary and sent in the payload.
func (s *BookingSession) HoursToConsume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hours
}

// AmountDue is the selected slot's price.
func (s *BookingSession) AmountDue() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slot == nil {
		return 0
	}
	return s.slot.PricePerSlot
}

// Result returns the outcome of the last completed attempt, nil before
// the first submission and after acknowledgement.
func (s *BookingSession) Result() *models.BookingResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Submit sends the draft as an authenticated student. A validation
// failure is returned as ErrInvalidDraft without touching the network
// or the state. A completed attempt returns a BookingResult and nil;
// inspect Success for the outcome.
func (s *BookingSession) Submit(ctx context.Context) (*models.BookingResult, error) {
	req, attempt, snap, err := s.beginSubmission()
	if err != nil {
		return nil, err
	}

	result, submitErr := s.submitter.BookAppointment(ctx, req)
	return s.completeSubmission(attempt, snap, result, submitErr)
}

// SubmitAsGuest sends the draft bundled with account registration.
func (s *BookingSession) SubmitAsGuest(ctx context.Context, guest models.GuestRegistration) (*models.BookingResult, error) {
	req, attempt, snap, err := s.beginSubmission()
	if err != nil {
		return nil, err
	}

	result, submitErr := s.submitter.BookAsGuest(ctx, &models.GuestBookingRequest{
		BookingRequest:    *req,
		GuestRegistration: guest,
	})
	return s.completeSubmission(attempt, snap, result, submitErr)
}

func (s *BookingSession) beginSubmission() (*models.BookingRequest, uint64, models.SlotSnapshot, error) {
	s.mu.Lock()

	switch s.state {
	case models.StateSubmitting:
		s.mu.Unlock()
		return nil, 0, models.SlotSnapshot{}, ErrSubmissionInFlight
	case models.StateSlotSelected:
	default:
		s.mu.Unlock()
		return nil, 0, models.SlotSnapshot{}, ErrNoSlotSelected
	}

	if errs := s.draft.Validate(); len(errs) > 0 {
		s.fieldErrors = errs
		s.mu.Unlock()
		metrics.IncValidationRejection()
		return nil, 0, models.SlotSnapshot{}, ErrInvalidDraft
	}

	req := &models.BookingRequest{
		AvailableAppointmentSlotID:  s.slot.ID,
		HoursToConsume:              s.hours,
		AmountPaid:                  s.slot.PricePerSlot,
		Note:                        s.draft.Note,
		PermitNumber:                s.draft.PermitNumber,
		LearnerPermitIssueDate:      s.draft.LearnerPermitIssueDate,
		PermitExpirationDate:        s.draft.PermitExpirationDate,
		DrivingExperience:           s.draft.DrivingExperience,
		IsLicenceFromAnotherCountry: s.draft.IsLicenceFromAnotherCountry,
	}
	snap := s.slot.Snapshot()
	s.state = models.StateSubmitting
	s.attempt++
	attempt := s.attempt
	s.mu.Unlock()

	_ = s.bus.PublishJSON(events.EventBookingSubmitted, events.BookingEventPayload{
		SessionID: s.id, SlotID: req.AvailableAppointmentSlotID,
		HoursToConsume: req.HoursToConsume, AmountPaid: req.AmountPaid,
	})
	return req, attempt, snap, nil
}

func (s *BookingSession) completeSubmission(attempt uint64, snap models.SlotSnapshot, result *models.BookingResult, submitErr error) (*models.BookingResult, error) {
	s.mu.Lock()

	if s.attempt != attempt || s.state != models.StateSubmitting {
		s.mu.Unlock()
		s.logger.Debug().Str("session_id", s.id).Msg("discarding response for reset session")
		return nil, ErrStaleAttempt
	}

	if submitErr != nil {
		message := "Booking could not be completed. Please try again."
		var bookErr *backend.BookingError
		if errors.As(submitErr, &bookErr) {
			message = bookErr.UserMessage()
		}
		failed := &models.BookingResult{
			Success:      false,
			Status:       "failed",
			CreatedAt:    time.Now(),
			Slot:         snap,
			ErrorMessage: message,
		}
		s.result = failed
		s.state = models.StateFailed
		slotID := s.draft.SelectedSlotID
		s.mu.Unlock()

		metrics.IncBooking("failed")
		s.logger.Warn().Str("session_id", s.id).Str("error", message).Msg("booking failed")
		_ = s.bus.PublishJSON(events.EventBookingFailed, events.BookingEventPayload{
			SessionID: s.id, SlotID: slotID, ErrorMessage: message,
		})
		return failed, nil
	}

	if result.Slot == (models.SlotSnapshot{}) {
		result.Slot = snap
	}
	s.result = result
	s.state = models.StateSucceeded
	s.mu.Unlock()

	metrics.IncBooking("succeeded")
	s.logger.Info().Str("session_id", s.id).Int64("appointment_id", result.AppointmentID).Msg("booking succeeded")
	_ = s.bus.PublishJSON(events.EventBookingSucceeded, events.BookingEventPayload{
		SessionID: s.id, AppointmentID: result.AppointmentID, Date: result.Slot.Date,
	})
	return result, nil
}
