package domain

import "time"

// CommentAuthorType indicates who authored a comment.
type CommentAuthorType string

const (
	AuthorTypeRequester CommentAuthorType = "REQUESTER"
	AuthorTypeAgent     CommentAuthorType = "AGENT"
	AuthorTypeSystem    CommentAuthorType = "SYSTEM"
)

// TicketComment captures the conversation thread of a ticket.
type TicketComment struct {
	ID         string
	TicketID   string
	AuthorType CommentAuthorType
	Body       string
	CreatedAt  time.Time
}
