// Package models defines the domain types for jotbot.
package models

import "time"

// Message is one inbound text message accepted from the messaging API.
// It lives only for the duration of a single poll iteration.
type Message struct {
	// Sender is the display name of the author; may be empty when the
	// platform reports no user.
	Sender string
	// SentAt is the UTC send time reported by the platform.
	SentAt time.Time
	// Text is the plain-text body.
	Text string
}
