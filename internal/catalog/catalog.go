// Package catalog holds the per-date slot listing for the booking
// workflow: one fetched result set at a time, filtered down to the
// slots a student may actually book.
package catalog

import (
	"context"
	"errors"
	"sync"

	"drivebook/internal/domain"
	"drivebook/internal/metrics"
	"drivebook/internal/models"

	"github.com/rs/zerolog"
)

// ErrStaleResponse marks a listing that arrived after the user had
// already moved to another date. The result is discarded, not an
// actionable failure.
var ErrStaleResponse = errors.New("slot listing superseded by a newer date selection")

// AvailableSlots filters a listing down to the offerable subset:
// active, unbooked, positively priced. Pure and order-preserving.
func AvailableSlots(all []models.AppointmentSlot) []models.AppointmentSlot {
	var out []models.AppointmentSlot
	for i := range all {
		if all[i].Bookable() {
			out = append(out, all[i])
		}
	}
	return out
}

// SlotCatalog fetches and holds the slots for the currently selected
// date. Each date change bumps a generation counter; responses tagged
// with an older generation never populate the list.
type SlotCatalog struct {
	mu         sync.Mutex
	lister     domain.SlotLister
	courseID   int64
	logger     *zerolog.Logger
	generation uint64
	date       string
	slots      []models.AppointmentSlot
}

func New(lister domain.SlotLister, courseID int64, logger *zerolog.Logger) *SlotCatalog {
	return &SlotCatalog{
		lister:   lister,
		courseID: courseID,
		logger:   logger,
	}
}

// SelectDate switches the catalog to a date and fetches its slots.
// Changing the date discards the previous result set; a response for a
// superseded selection returns ErrStaleResponse and leaves the catalog
// untouched.
func (c *SlotCatalog) SelectDate(ctx context.Context, date string) ([]models.AppointmentSlot, error) {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.date = date
	c.slots = nil
	c.mu.Unlock()

	return c.fetch(ctx, date, gen)
}

// Refresh refetches the current date, typically after a successful
// booking so the taken slot disappears from the list.
func (c *SlotCatalog) Refresh(ctx context.Context) ([]models.AppointmentSlot, error) {
	c.mu.Lock()
	if c.date == "" {
		c.mu.Unlock()
		return nil, errors.New("no date selected")
	}
	c.generation++
	gen := c.generation
	date := c.date
	c.mu.Unlock()

	return c.fetch(ctx, date, gen)
}

func (c *SlotCatalog) fetch(ctx context.Context, date string, gen uint64) ([]models.AppointmentSlot, error) {
	slots, err := c.lister.ListSlotsForDate(ctx, date, c.courseID)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.logger.Debug().Str("date", date).Msg("discarding stale slot listing")
		return nil, ErrStaleResponse
	}
	if err != nil {
		metrics.IncSlotFetch("error")
		return nil, err
	}

	c.slots = slots
	metrics.IncSlotFetch("ok")
	return slots, nil
}

// CurrentDate returns the selected date, empty before any selection.
func (c *SlotCatalog) CurrentDate() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.date
}

// Slots returns the last fetched listing for the current date.
func (c *SlotCatalog) Slots() []models.AppointmentSlot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.AppointmentSlot(nil), c.slots...)
}

// Bookable returns the offerable subset of the current listing.
func (c *SlotCatalog) Bookable() []models.AppointmentSlot {
	return AvailableSlots(c.Slots())
}

// Find returns the slot with the given id from the current listing.
func (c *SlotCatalog) Find(id int64) (*models.AppointmentSlot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.slots {
		if c.slots[i].ID == id {
			slot := c.slots[i]
			return &slot, true
		}
	}
	return nil, false
}
