package models

import (
	"fmt"
	"math"
	"time"
)

// SlotStatus mirrors the backend's numeric status flag.
type SlotStatus int

const (
	SlotInactive SlotStatus = 0
	SlotActive   SlotStatus = 1
)

// AppointmentSlot is a bookable instructor time window on a given date.
// Field names follow the backend's JSON contract.
type AppointmentSlot struct {
	ID             int64      `json:"id"`
	Date           string     `json:"date"`      // YYYY-MM-DD
	StartTime      string     `json:"startTime"` // HH:MM:SS
	EndTime        string     `json:"endTime"`   // HH:MM:SS
	InstructorID   int64      `json:"instructorId"`
	InstructorName string     `json:"instructorName,omitempty"`
	Location       string     `json:"location,omitempty"`
	PricePerSlot   float64    `json:"pricePerSlot"`
	Status         SlotStatus `json:"status"`
	IsBooked       bool       `json:"isBooked"`
	CreatedAt      time.Time  `json:"createdAt,omitempty"`
	UpdatedAt      time.Time  `json:"updatedAt,omitempty"`
}

// Bookable reports whether the slot may be offered to a student:
// active, not yet taken, and carrying a positive price.
func (s *AppointmentSlot) Bookable() bool {
	return s.Status == SlotActive && !s.IsBooked && s.PricePerSlot > 0
}

// HoursToConsume returns the slot duration in hours, rounded to two
// decimal places. The same value is shown in the summary and sent in
// the booking payload.
func (s *AppointmentSlot) HoursToConsume() (float64, error) {
	start, err := parseClock(s.StartTime)
	if err != nil {
		return 0, fmt.Errorf("invalid startTime %q: %w", s.StartTime, err)
	}
	end, err := parseClock(s.EndTime)
	if err != nil {
		return 0, fmt.Errorf("invalid endTime %q: %w", s.EndTime, err)
	}
	if !end.After(start) {
		return 0, fmt.Errorf("endTime %q is not after startTime %q", s.EndTime, s.StartTime)
	}

	hours := end.Sub(start).Hours()
	return math.Round(hours*100) / 100, nil
}

// Snapshot captures the display fields of the slot for a booking record.
func (s *AppointmentSlot) Snapshot() SlotSnapshot {
	return SlotSnapshot{
		Date:           s.Date,
		StartTime:      s.StartTime,
		EndTime:        s.EndTime,
		InstructorName: s.InstructorName,
		Location:       s.Location,
		PricePerSlot:   s.PricePerSlot,
	}
}

func parseClock(v string) (time.Time, error) {
	t, err := time.Parse(ClockLayout, v)
	if err != nil {
		// Some admin tooling stores HH:MM only.
		t, err = time.Parse("15:04", v)
	}
	return t, err
}
