package domain

import "time"

// ExportRow is a single row in the full-data export: one row per note,
// regardless of publication state.
//
// Tags is a slice of slugs for the note, ordered alphabetically.
// Callers that need a joined string (e.g. CSV) should join with "|".
type ExportRow struct {
	NoteID       int64
	Title        string
	Slug         string
	IsPublished  bool
	CategorySlug string
	Author       string // empty when the note has no author
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Tags         []string
}
