package model

import "time"

// TimestampLayout renders a capture time the way browsers do for Date.toISOString, which is
// what the fallback list has always contained.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Submission is the data a visitor enters into the contact form.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Record is a submission that could not be delivered and was kept in fallback storage
// instead. Timestamp holds the capture time in ISO-8601 format.
type Record struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// NewRecord annotates the submission with the capture time t.
func NewRecord(s Submission, t time.Time) Record {
	return Record{
		Name:      s.Name,
		Email:     s.Email,
		Message:   s.Message,
		Timestamp: t.UTC().Format(TimestampLayout),
	}
}

// Submission returns the three form fields of the record.
func (r Record) Submission() Submission {
	return Submission{Name: r.Name, Email: r.Email, Message: r.Message}
}

// CapturedAt parses the record's timestamp.
func (r Record) CapturedAt() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, r.Timestamp)
}
