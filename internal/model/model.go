package model

// CategoryContactForm is the category of every message received through the contact form.
const CategoryContactForm = "contact_form"

// ContactMessage is a message left through the website's contact form, as stored by the
// backend. Timestamp is an ISO-8601 string in UTC and Ttl the unix time after which the row
// may be purged.
type ContactMessage struct {
	Id        string `json:"id"        db:"id"`
	Category  string `json:"category"  db:"category"`
	Name      string `json:"name"      db:"name"`
	Email     string `json:"email"     db:"email"`
	Message   string `json:"message"   db:"message"`
	Timestamp string `json:"timestamp" db:"timestamp"`
	Ttl       int64  `json:"ttl"       db:"ttl"`
}
