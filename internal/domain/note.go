// Package domain contains the core data types for the notes application.
// This package has no dependencies on the storage or HTTP layers and is
// imported by every other internal package (repo, service, handler).
package domain

import "time"

// Note is a single article. Slug is derived from Title once, when the note
// is created, and never changes afterwards even if the title is edited.
// AuthorID is nil when the note has no author or the author was deleted.
type Note struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Image       *string   `json:"image,omitempty"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	IsPublished bool      `json:"is_published"`
	Category    Category  `json:"category"`
	Tags        []Tag     `json:"tags"`
	AuthorID    *int64    `json:"author_id,omitempty"`
	AuthorName  *string   `json:"author,omitempty"`
}

// NoteInput is the writable part of a note, as submitted through the
// create and update forms. The json names double as form field names.
type NoteInput struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Content     string  `json:"content"`
	Image       *string `json:"image,omitempty" validate:"omitempty,max=255"`
	IsPublished bool    `json:"is_published"`
	CategoryID  int64   `json:"category" validate:"required,gt=0"`
	TagIDs      []int64 `json:"tags" validate:"dive,gt=0"`
}

// Visibility selects which notes a query may return.
type Visibility int

const (
	// Published restricts results to notes with is_published = true.
	// Every public listing and detail lookup uses this scope.
	Published Visibility = iota
	// All returns notes regardless of publication state (editors only).
	All
)

// NoteFilter narrows a note listing. Empty slugs mean "no filter".
type NoteFilter struct {
	Visibility   Visibility
	CategorySlug string
	TagSlug      string
}
