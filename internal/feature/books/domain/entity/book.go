// Package entity defines the domain entities for the books feature.
package entity

import "time"

// Book is a catalogue entry.
type Book struct {
	ID        string
	Name      string
	Author    string
	Price     float64
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BookInput carries the client-editable fields of a book.
type BookInput struct {
	Name     string
	Author   string
	Price    float64
	Quantity int
}
