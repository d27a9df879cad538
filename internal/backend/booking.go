package backend

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"drivebook/internal/domain"
	"drivebook/internal/models"
)

var _ domain.BookingSubmitter = (*Client)(nil)

// appointmentResponse is the backend's appointment record shape.
type appointmentResponse struct {
	ID        int64               `json:"id"`
	Status    string              `json:"status"`
	CreatedAt time.Time           `json:"createdAt"`
	Slot      models.SlotSnapshot `json:"appointmentSlot"`
}

// statusEnvelope is the non-standard wrapper the guest endpoint uses:
// HTTP 200 with status.code deciding the real outcome. Only
// status.code == "200" counts as success.
type statusEnvelope struct {
	Status struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"status"`
	Data json.RawMessage `json:"data"`
}

// BookAppointment books a slot for an authenticated student. Rejections
// come back as *BookingError carrying the server message.
func (c *Client) BookAppointment(ctx context.Context, req *models.BookingRequest) (*models.BookingResult, error) {
	endpoint := c.baseURL + "/appointments"

	var appt appointmentResponse
	if err := c.doJSON(ctx, "POST", endpoint, req, &appt); err != nil {
		return nil, asBookingError(err)
	}

	result := resultFromAppointment(&appt)
	c.logger.Info().Int64("appointment_id", result.AppointmentID).Msg("appointment booked")
	return result, nil
}

// BookAsGuest books a slot bundled with account registration. The guest
// endpoint wraps its payload in a status envelope; any code other than
// "200" is a failure even when the HTTP status is 200.
func (c *Client) BookAsGuest(ctx context.Context, req *models.GuestBookingRequest) (*models.BookingResult, error) {
	endpoint := c.baseURL + "/appointments-with-registration"

	var envelope statusEnvelope
	if err := c.doJSON(ctx, "POST", endpoint, req, &envelope); err != nil {
		return nil, asBookingError(err)
	}

	if envelope.Status.Code != "200" {
		c.logger.Warn().
			Str("code", envelope.Status.Code).
			Str("message", envelope.Status.Message).
			Msg("guest booking rejected")
		return nil, &BookingError{Code: envelope.Status.Code, Message: envelope.Status.Message}
	}

	var appt appointmentResponse
	if err := json.Unmarshal(envelope.Data, &appt); err != nil {
		return nil, &BookingError{Message: "unexpected guest booking payload"}
	}

	result := resultFromAppointment(&appt)
	c.logger.Info().Int64("appointment_id", result.AppointmentID).Msg("guest appointment booked")
	return result, nil
}

func resultFromAppointment(appt *appointmentResponse) *models.BookingResult {
	status := appt.Status
	if status == "" {
		status = models.AppointmentScheduled
	}
	createdAt := appt.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return &models.BookingResult{
		Success:       true,
		AppointmentID: appt.ID,
		Status:        status,
		CreatedAt:     createdAt,
		Slot:          appt.Slot,
	}
}

// asBookingError converts a transport or HTTP failure into the booking
// error taxonomy, pulling the server message out of the body when it is
// parseable.
func asBookingError(err error) error {
	var httpErr *httpError
	if !errors.As(err, &httpErr) {
		return &BookingError{Message: "could not reach the booking service"}
	}

	var body struct {
		Message string `json:"message"`
		Status  struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"status"`
	}
	if json.Unmarshal(httpErr.Body, &body) == nil {
		if body.Status.Message != "" {
			return &BookingError{Code: body.Status.Code, Message: body.Status.Message}
		}
		if body.Message != "" {
			return &BookingError{Message: body.Message}
		}
	}
	return &BookingError{Message: httpErr.Error()}
}
