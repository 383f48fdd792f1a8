package domain

// Category groups notes. Every note belongs to exactly one category and a
// category cannot be deleted while any note still references it.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CategoryCount is a category annotated with the number of published notes
// it holds. Used for the sidebar.
type CategoryCount struct {
	Category
	Total int64 `json:"total"`
}
