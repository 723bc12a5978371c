// Package post holds the unit of syndication and the ordering helpers shared by
// the crawler, the store and the publishers.
package post

import "fmt"

// StatusSeparator joins title and link in published statuses
const StatusSeparator = " — "

// Post is one blog entry. The (Title, Link) pair is its identity.
type Post struct {
	Title string `json:"title" db:"title"`
	Link  string `json:"link" db:"link"`
}

// String returns the "title: link" form used in listings.
func (p Post) String() string {
	return fmt.Sprintf("%s: %s", p.Title, p.Link)
}

// Status returns the text published to social feeds.
func (p Post) Status() string {
	return p.Title + StatusSeparator + p.Link
}

// Dedupe drops repeated (Title, Link) pairs keeping the first occurrence.
// Posts sharing only a title or only a link are distinct and kept.
func Dedupe(posts []Post) []Post {
	seen := make(map[Post]struct{}, len(posts))
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// OldestFirst returns a reversed copy of posts in archive order (newest first).
func OldestFirst(posts []Post) []Post {
	out := make([]Post, len(posts))
	for i, p := range posts {
		out[len(posts)-1-i] = p
	}
	return out
}
