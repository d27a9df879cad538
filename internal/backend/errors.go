package backend

import "fmt"

// FetchError is a failed slot or pricing retrieval. Callers show the
// message and offer a manual retry; nothing retries automatically.
type FetchError struct {
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *FetchError) Unwrap() error { return e.Err }

// BookingError is a submission the backend rejected, for example a slot
// taken by a concurrent booker. Message carries the server-provided
// text when available.
type BookingError struct {
	Code    string
	Message string
}

func (e *BookingError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("booking rejected (%s): %s", e.Code, e.Message)
	}
	return "booking rejected: " + e.Message
}

// UserMessage returns the text to surface in the status dialog, falling
// back to a generic message when the server sent none.
func (e *BookingError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return "Booking could not be completed. Please choose another slot and try again."
}

// httpError carries a non-2xx response for callers to classify.
type httpError struct {
	StatusCode int
	Body       []byte
}

func (e *httpError) Error() string {
	return fmt.Sprintf("http %d", e.StatusCode)
}
