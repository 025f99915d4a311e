package model

import "time"

// Contact message statuses.
const (
	MessageUnread  = "UNREAD"
	MessageRead    = "READ"
	MessageReplied = "REPLIED"
)

// ContactMessage is a row of the public contact-form mailbox.
type ContactMessage struct {
	ID        uint64    // contact_messages.id
	Name      string    // contact_messages.name
	Email     string    // contact_messages.email
	Subject   string    // contact_messages.subject
	Message   string    // contact_messages.message
	Status    string    // contact_messages.status
	CreatedAt time.Time // contact_messages.created_at
}
