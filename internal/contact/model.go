// Package contact accepts and lists contact-form messages.
package contact

import "time"

type Message struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Input is a validated submission.
type Input struct {
	Name    string
	Email   string
	Message string
}
