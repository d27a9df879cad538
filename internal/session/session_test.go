package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"drivebook/internal/backend"
	"drivebook/internal/events"
	"drivebook/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSubmitter struct {
	mock.Mock
}

func (m *mockSubmitter) BookAppointment(ctx context.Context, req *models.BookingRequest) (*models.BookingResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookingResult), args.Error(1)
}

func (m *mockSubmitter) BookAsGuest(ctx context.Context, req *models.GuestBookingRequest) (*models.BookingResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookingResult), args.Error(1)
}

func testSlot() *models.AppointmentSlot {
	return &models.AppointmentSlot{
		ID:           5,
		Date:         "2025-01-10",
		StartTime:    "10:00:00",
		EndTime:      "10:30:00",
		PricePerSlot: 25,
		Status:       models.SlotActive,
	}
}

func newSession(submitter *mockSubmitter) *BookingSession {
	logger := zerolog.Nop()
	return New(submitter, events.NewEventBus(), &logger)
}

func fillDraft(t *testing.T, s *BookingSession) {
	t.Helper()
	require.NoError(t, s.SetPermitNumber("P-12345"))
	require.NoError(t, s.SetLearnerPermitIssueDate("2024-06-01"))
	require.NoError(t, s.SetPermitExpirationDate("2026-06-01"))
	require.NoError(t, s.SetDrivingExperience("none"))
}

func TestSelectSlot(t *testing.T) {
	t.Run("MovesToSlotSelected", func(t *testing.T) {
		s := newSession(&mockSubmitter{})
		require.NoError(t, s.SelectSlot(testSlot()))
		assert.Equal(t, models.StateSlotSelected, s.State())
		assert.Equal(t, 0.5, s.HoursToConsume())
		assert.Equal(t, 25.0, s.AmountDue())
		assert.Equal(t, int64(5), s.Draft().SelectedSlotID)
	})

	t.Run("SameSlotKeepsDraft", func(t *testing.T) {
		s := newSession(&mockSubmitter{})
		require.NoError(t, s.SelectSlot(testSlot()))
		require.NoError(t, s.SetPermitNumber("P-1"))

		require.NoError(t, s.SelectSlot(testSlot()))
		assert.Equal(t, "P-1", s.Draft().PermitNumber)
	})

	t.Run("DifferentSlotResetsDraft", func(t *testing.T) {
		s := newSession(&mockSubmitter{})
		require.NoError(t, s.SelectSlot(testSlot()))
		require.NoError(t, s.SetPermitNumber("P-1"))

		other := testSlot()
		other.ID = 6
		other.StartTime = "11:00:00"
		other.EndTime = "12:00:00"
		require.NoError(t, s.SelectSlot(other))

		draft := s.Draft()
		assert.Empty(t, draft.PermitNumber)
		assert.Equal(t, int64(6), draft.SelectedSlotID)
		assert.Equal(t, 1.0, s.HoursToConsume())
	})

	t.Run("RejectsUnbookableSlot", func(t *testing.T) {
		s := newSession(&mockSubmitter{})

		booked := testSlot()
		booked.IsBooked = true
		assert.ErrorIs(t, s.SelectSlot(booked), ErrSlotNotBookable)

		free := testSlot()
		free.PricePerSlot = 0
		assert.ErrorIs(t, s.SelectSlot(free), ErrSlotNotBookable)

		assert.Equal(t, models.StateIdle, s.State())
	})

	t.Run("EditWithoutSelection", func(t *testing.T) {
		s := newSession(&mockSubmitter{})
		assert.ErrorIs(t, s.SetPermitNumber("P-1"), ErrNoSlotSelected)
	})
}

func TestSubmit_ValidationGate(t *testing.T) {
	submitter := &mockSubmitter{}
	s := newSession(submitter)
	require.NoError(t, s.SelectSlot(testSlot()))

	// permitNumber left empty
	require.NoError(t, s.SetLearnerPermitIssueDate("2024-06-01"))
	require.NoError(t, s.SetPermitExpirationDate("2026-06-01"))
	require.NoError(t, s.SetDrivingExperience("none"))

	_, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrInvalidDraft)

	// No network call, no state change, field error attached.
	submitter.AssertNotCalled(t, "BookAppointment", mock.Anything, mock.Anything)
	assert.Equal(t, models.StateSlotSelected, s.State())

	fieldErrs := s.FieldErrors()
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "permitNumber", fieldErrs[0].Field)
	assert.False(t, s.DraftValid())
}

func TestSubmit_EndToEndSuccess(t *testing.T) {
	submitter := &mockSubmitter{}
	var sent *models.BookingRequest
	submitter.On("BookAppointment", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			sent = args.Get(1).(*models.BookingRequest)
		}).
		Return(&models.BookingResult{
			Success:       true,
			AppointmentID: 42,
			Status:        models.AppointmentScheduled,
			CreatedAt:     time.Now(),
		}, nil)

	s := newSession(submitter)
	require.NoError(t, s.SelectSlot(testSlot()))
	fillDraft(t, s)
	require.NoError(t, s.SetNote("first lesson"))
	assert.True(t, s.DraftValid())

	result, err := s.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.StateSucceeded, s.State())
	assert.True(t, result.Success)
	assert.Equal(t, int64(42), result.AppointmentID)

	// Displayed and submitted duration must agree.
	require.NotNil(t, sent)
	assert.Equal(t, 0.5, sent.HoursToConsume)
	assert.Equal(t, 25.0, sent.AmountPaid)
	assert.Equal(t, "first lesson", sent.Note)
	assert.Equal(t, "P-12345", sent.PermitNumber)

	// Missing backend snapshot is filled from the selected slot.
	assert.Equal(t, "2025-01-10", result.Slot.Date)

	// Acknowledge clears everything back to Idle.
	require.NoError(t, s.Acknowledge())
	assert.Equal(t, models.StateIdle, s.State())
	assert.Nil(t, s.Result())
	assert.Equal(t, models.BookingDraft{}, s.Draft())
}

func TestSubmit_BackendFailure(t *testing.T) {
	submitter := &mockSubmitter{}
	submitter.On("BookAppointment", mock.Anything, mock.Anything).
		Return(nil, &backend.BookingError{Code: "409", Message: "slot already booked"})

	s := newSession(submitter)
	require.NoError(t, s.SelectSlot(testSlot()))
	fillDraft(t, s)

	result, err := s.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.StateFailed, s.State())
	assert.False(t, result.Success)
	assert.Equal(t, "slot already booked", result.ErrorMessage)
	assert.Equal(t, "2025-01-10", result.Slot.Date, "failed result keeps the slot snapshot")

	// Acknowledging a failure returns to SlotSelected with a fresh draft.
	require.NoError(t, s.Acknowledge())
	assert.Equal(t, models.StateSlotSelected, s.State())
	draft := s.Draft()
	assert.Empty(t, draft.PermitNumber)
	assert.Equal(t, int64(5), draft.SelectedSlotID)
	assert.Nil(t, s.Result())
}

func TestSubmit_AtMostOneInFlight(t *testing.T) {
	gate := make(chan struct{})
	submitter := &mockSubmitter{}
	submitter.On("BookAppointment", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-gate }).
		Return(&models.BookingResult{Success: true, AppointmentID: 1}, nil)

	s := newSession(submitter)
	require.NoError(t, s.SelectSlot(testSlot()))
	fillDraft(t, s)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = s.Submit(context.Background())
	}()

	require.Eventually(t, func() bool {
		return s.State() == models.StateSubmitting
	}, 2*time.Second, 10*time.Millisecond)

	_, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	assert.ErrorIs(t, s.SelectSlot(testSlot()), ErrSubmissionInFlight)

	close(gate)
	wg.Wait()
	assert.Equal(t, models.StateSucceeded, s.State())
}

func TestSubmit_CancelDiscardsLateResponse(t *testing.T) {
	gate := make(chan struct{})
	submitter := &mockSubmitter{}
	submitter.On("BookAppointment", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-gate }).
		Return(&models.BookingResult{Success: true, AppointmentID: 99}, nil)

	s := newSession(submitter)
	require.NoError(t, s.SelectSlot(testSlot()))
	fillDraft(t, s)

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background())
		done <- err
	}()

	require.Eventually(t, func() bool {
		return s.State() == models.StateSubmitting
	}, 2*time.Second, 10*time.Millisecond)

	// User closes the dialog while the request is in flight.
	s.Cancel()
	assert.Equal(t, models.StateIdle, s.State())

	close(gate)
	assert.ErrorIs(t, <-done, ErrStaleAttempt)

	// The late success must not surface anywhere.
	assert.Equal(t, models.StateIdle, s.State())
	assert.Nil(t, s.Result())
}

func TestSubmitAsGuest(t *testing.T) {
	submitter := &mockSubmitter{}
	var sent *models.GuestBookingRequest
	submitter.On("BookAsGuest", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			sent = args.Get(1).(*models.GuestBookingRequest)
		}).
		Return(&models.BookingResult{Success: true, AppointmentID: 7}, nil)

	s := newSession(submitter)
	require.NoError(t, s.SelectSlot(testSlot()))
	fillDraft(t, s)

	result, err := s.SubmitAsGuest(context.Background(), models.GuestRegistration{
		FirstName: "Ana", LastName: "Silva", Email: "ana@example.com",
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, models.StateSucceeded, s.State())
	require.NotNil(t, sent)
	assert.Equal(t, "ana@example.com", sent.Email)
	assert.Equal(t, int64(5), sent.AvailableAppointmentSlotID)
	assert.Equal(t, 0.5, sent.HoursToConsume)
}

func TestSubmit_WithoutSelection(t *testing.T) {
	s := newSession(&mockSubmitter{})
	_, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNoSlotSelected)
}

func TestAcknowledge_NothingPending(t *testing.T) {
	s := newSession(&mockSubmitter{})
	assert.Error(t, s.Acknowledge())
}

func TestCancel_FromSlotSelected(t *testing.T) {
	s := newSession(&mockSubmitter{})
	require.NoError(t, s.SelectSlot(testSlot()))
	require.NoError(t, s.SetPermitNumber("P-1"))

	s.Cancel()
	assert.Equal(t, models.StateIdle, s.State())
	assert.Equal(t, models.BookingDraft{}, s.Draft())
	assert.Zero(t, s.HoursToConsume())
}

func TestEvents_PublishedOnLifecycle(t *testing.T) {
	submitter := &mockSubmitter{}
	submitter.On("BookAppointment", mock.Anything, mock.Anything).
		Return(&models.BookingResult{Success: true, AppointmentID: 42}, nil)

	bus := events.NewEventBus()
	var seen []string
	for _, eventType := range []string{
		events.EventSlotSelected, events.EventBookingSubmitted, events.EventBookingSucceeded,
	} {
		et := eventType
		bus.Subscribe(et, func(e *events.Event) error {
			seen = append(seen, et)
			return nil
		})
	}

	logger := zerolog.Nop()
	s := New(submitter, bus, &logger)
	require.NoError(t, s.SelectSlot(testSlot()))
	fillDraft(t, s)
	_, err := s.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		events.EventSlotSelected, events.EventBookingSubmitted, events.EventBookingSucceeded,
	}, seen)
}
