package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"drivebook/internal/domain"
	"drivebook/internal/models"
)

var (
	_ domain.SlotLister = (*Client)(nil)
	_ domain.SlotAdmin  = (*Client)(nil)
)

// ListSlotsForDate fetches the candidate slots for an ISO date
// (YYYY-MM-DD). The backend answers either a bare array or a
// {data: [...]} wrapper depending on deployment; both are accepted.
// Failures come back as *FetchError for the retry panel.
func (c *Client) ListSlotsForDate(ctx context.Context, date string, courseID int64) ([]models.AppointmentSlot, error) {
	endpoint := fmt.Sprintf("%s/appointment-slots/date/%s", c.baseURL, url.PathEscape(date))
	if courseID > 0 {
		endpoint += "?courseId=" + url.QueryEscape(fmt.Sprint(courseID))
	}

	var raw json.RawMessage
	if err := c.doGet(ctx, endpoint, &raw); err != nil {
		c.logger.Error().Err(err).Str("date", date).Msg("slot listing failed")
		return nil, &FetchError{Message: "could not load appointment slots for " + date, Err: err}
	}

	slots, err := decodeSlotList(raw)
	if err != nil {
		return nil, &FetchError{Message: "unexpected slot listing payload", Err: err}
	}

	c.logger.Debug().Str("date", date).Int("count", len(slots)).Msg("slots fetched")
	return slots, nil
}

func decodeSlotList(raw json.RawMessage) ([]models.AppointmentSlot, error) {
	var slots []models.AppointmentSlot
	if err := json.Unmarshal(raw, &slots); err == nil {
		return slots, nil
	}

	var wrap struct {
		Data []models.AppointmentSlot `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrap); err != nil {
		return nil, err
	}
	if wrap.Data == nil {
		return nil, errors.New("payload is neither a slot array nor a data wrapper")
	}
	return wrap.Data, nil
}

// CreateSlot registers a new bookable window (admin only). The client's
// configured course id is attached to the request.
func (c *Client) CreateSlot(ctx context.Context, slot *models.AppointmentSlot) (*models.AppointmentSlot, error) {
	endpoint := c.baseURL + "/appointment-slots"
	body := slotPayload(slot, c.courseID)

	var created models.AppointmentSlot
	if err := c.doJSON(ctx, "POST", endpoint, body, &created); err != nil {
		return nil, fmt.Errorf("create slot: %w", err)
	}
	return &created, nil
}

// UpdateSlot rewrites an existing slot (admin only).
func (c *Client) UpdateSlot(ctx context.Context, slot *models.AppointmentSlot) (*models.AppointmentSlot, error) {
	endpoint := fmt.Sprintf("%s/appointment-slots/%d", c.baseURL, slot.ID)
	body := slotPayload(slot, c.courseID)

	var updated models.AppointmentSlot
	if err := c.doJSON(ctx, "PUT", endpoint, body, &updated); err != nil {
		return nil, fmt.Errorf("update slot %d: %w", slot.ID, err)
	}
	return &updated, nil
}

// DeleteSlot removes a slot (admin only). The backend answers 204.
func (c *Client) DeleteSlot(ctx context.Context, id int64) error {
	endpoint := fmt.Sprintf("%s/appointment-slots/%d", c.baseURL, id)
	if err := c.doDelete(ctx, endpoint); err != nil {
		return fmt.Errorf("delete slot %d: %w", id, err)
	}
	return nil
}

func slotPayload(slot *models.AppointmentSlot, courseID int64) map[string]any {
	body := map[string]any{
		"instructorId": slot.InstructorID,
		"date":         slot.Date,
		"startTime":    slot.StartTime,
		"endTime":      slot.EndTime,
	}
	if courseID > 0 {
		body["courseId"] = courseID
	}
	if slot.Location != "" {
		body["location"] = slot.Location
	}
	return body
}
