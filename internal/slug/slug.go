// Package slug derives URL-safe, unique identifiers from note titles.
package slug

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	gosimpleslug "github.com/gosimple/slug"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/text/unicode/norm"
)

// MaxLength is the longest slug the notes table accepts.
const MaxLength = 255

// placeholderAlphabet keeps generated tokens lowercase so they survive Slugify.
const placeholderAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// nonAlphanumeric also catches the underscores gosimple/slug lets through.
var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a title to a URL-safe slug. Any script is transliterated
// to ASCII with gosimple/slug (unidecode tables).
// "Hello, World!" -> "hello-world".
// "Первая поездка" -> "pervaia-poezdka".
// "你好世界" -> "ni-hao-shi-jie".
// The result is at most MaxLength bytes and may be empty.
func Slugify(title string) string {
	// Fold compatibility forms (ligatures, full-width letters) first.
	s := gosimpleslug.Make(norm.NFKC.String(title))
	s = nonAlphanumeric.ReplaceAllString(strings.ToLower(s), "-")
	s = strings.Trim(s, "-")
	return truncate(s, MaxLength)
}

// truncate cuts s to at most n bytes without leaving a trailing dash.
// Slugs are pure ASCII at this point so byte slicing is safe.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimRight(s[:n], "-")
}

// ExistsFunc reports whether slug is already taken.
type ExistsFunc func(ctx context.Context, slug string) (bool, error)

// Generator produces unique slugs by probing an existence check and appending
// a numeric suffix on collision. Uniqueness is only as strong as the check:
// concurrent writers can still race, and the unique index is the final word.
type Generator struct {
	exists ExistsFunc
}

// NewGenerator returns a Generator backed by the given existence check.
func NewGenerator(exists ExistsFunc) *Generator {
	return &Generator{exists: exists}
}

// Generate returns a slug for title that the existence check reports as free.
// An empty title (or one with no sluggable characters) gets a random
// "note-xxxxxxxx" placeholder instead of an error.
// Collisions are resolved as base, base-2, base-3, ...
func (g *Generator) Generate(ctx context.Context, title string) (string, error) {
	base := Slugify(title)
	if base == "" {
		token, err := gonanoid.Generate(placeholderAlphabet, 8)
		if err != nil {
			return "", fmt.Errorf("slug.Generate: placeholder: %w", err)
		}
		base = "note-" + token
	}

	candidate := base
	for n := 2; ; n++ {
		taken, err := g.exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("slug.Generate: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		suffix := "-" + strconv.Itoa(n)
		candidate = truncate(base, MaxLength-len(suffix)) + suffix
	}
}
