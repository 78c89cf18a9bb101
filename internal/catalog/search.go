package catalog

import (
	"strings"

	"github.com/FaizaanMd/cinema-booking/internal/model"
)

// SearchQuery defines filters and pagination for searching movies.  Empty
// filters match everything; Title and Genre match case-insensitive
// substrings.  Page is 1-based.
type SearchQuery struct {
	Title    string
	Genre    string
	Showtime string
	Page     int
	PageSize int
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Normalize clamps paging to sane bounds and trims the filters.
func (q SearchQuery) Normalize() SearchQuery {
	q.Title = strings.ToLower(strings.TrimSpace(q.Title))
	q.Genre = strings.ToLower(strings.TrimSpace(q.Genre))
	q.Showtime = strings.TrimSpace(q.Showtime)
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
	return q
}

// Search returns one page of matching movies in catalog order and the
// total number of matches.
func (c *Catalog) Search(q SearchQuery) ([]model.Movie, int) {
	q = q.Normalize()
	matched := make([]model.Movie, 0)
	for _, m := range c.movies {
		if q.Title != "" && !strings.Contains(strings.ToLower(m.Title), q.Title) {
			continue
		}
		if q.Genre != "" && !hasGenre(m, q.Genre) {
			continue
		}
		if q.Showtime != "" && !m.HasShowtime(q.Showtime) {
			continue
		}
		matched = append(matched, m)
	}
	total := len(matched)
	// compare page numbers first; (Page-1)*PageSize overflows for huge pages
	pages := (total + q.PageSize - 1) / q.PageSize
	if q.Page > pages {
		return []model.Movie{}, total
	}
	start := (q.Page - 1) * q.PageSize
	end := min(start+q.PageSize, total)
	return matched[start:end], total
}

func hasGenre(m model.Movie, genre string) bool {
	for _, g := range m.Genre {
		if strings.Contains(strings.ToLower(g), genre) {
			return true
		}
	}
	return false
}
