package domain

// Tag is a label that can be attached to any number of notes.
// Identity is determined by Slug. Deleting a tag detaches it from its notes
// but never deletes the notes themselves.
type Tag struct {
	ID   int64  `json:"id"`
	Tag  string `json:"tag"`
	Slug string `json:"slug"`
}

// TagCount is a tag annotated with the number of published notes carrying it.
type TagCount struct {
	Tag
	Total int64 `json:"total"`
}
