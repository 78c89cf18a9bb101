// Package catalog holds the read-only movie catalog.  The booking flow and
// the public browse endpoints look movies up here; nothing in the service
// writes to it after construction.
package catalog

import (
	"errors"
	"fmt"

	"github.com/FaizaanMd/cinema-booking/internal/model"
)

// ErrMovieNotFound is returned when a movie id is not in the catalog.
// Handlers translate it into a 404 response.
var ErrMovieNotFound = errors.New("movie not found")

// Catalog is an ordered, immutable set of movies keyed by id.
type Catalog struct {
	movies []model.Movie
	index  map[string]int
}

// New builds a catalog from movies, keeping their order.  Duplicate ids
// and layouts without rows or seats are rejected.
func New(movies []model.Movie) (*Catalog, error) {
	c := &Catalog{
		movies: make([]model.Movie, 0, len(movies)),
		index:  make(map[string]int, len(movies)),
	}
	for _, m := range movies {
		if m.ID == "" {
			return nil, errors.New("catalog: movie without id")
		}
		if _, dup := c.index[m.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate movie id %q", m.ID)
		}
		if m.SeatingLayout.Rows <= 0 || m.SeatingLayout.SeatsPerRow <= 0 {
			return nil, fmt.Errorf("catalog: movie %q has an empty seating layout", m.ID)
		}
		c.index[m.ID] = len(c.movies)
		c.movies = append(c.movies, m)
	}
	return c, nil
}

// Default returns the catalog shipped with the service.
func Default() *Catalog {
	c, err := New(defaultMovies)
	if err != nil {
		panic(err)
	}
	return c
}

// GetMovieByID returns the movie with the given id or ErrMovieNotFound.
func (c *Catalog) GetMovieByID(id string) (model.Movie, error) {
	i, ok := c.index[id]
	if !ok {
		return model.Movie{}, fmt.Errorf("%w: %s", ErrMovieNotFound, id)
	}
	return c.movies[i], nil
}

// GetAllMovies returns every movie in catalog order.  The returned slice
// is a copy; callers may reorder it freely.
func (c *Catalog) GetAllMovies() []model.Movie {
	out := make([]model.Movie, len(c.movies))
	copy(out, c.movies)
	return out
}

var defaultMovies = []model.Movie{
	{
		ID:          "1",
		Title:       "Avatar: The Way of Water",
		Description: "Jake Sully and Ney'tiri have formed a family and are doing everything to stay together.",
		Synopsis:    "Set more than a decade after the events of the first film, Avatar: The Way of Water begins to tell the story of the Sully family (Jake, Neytiri, and their kids), the trouble that follows them, the lengths they go to keep each other safe, the battles they fight to stay alive, and the tragedies they endure.",
		Poster:      "https://images.pexels.com/photos/7991579/pexels-photo-7991579.jpeg",
		Duration:    "3h 12min",
		Genre:       []string{"Action", "Adventure", "Sci-Fi"},
		Rating:      "PG-13",
		Showtimes:   []string{"10:00 AM", "2:00 PM", "6:00 PM", "9:30 PM"},
		Price:       250,
		SeatingLayout: model.SeatingLayout{
			Rows: 10, SeatsPerRow: 12,
			ReservedSeats: []string{"A1", "A2", "B5", "C3", "D7", "E8"},
		},
	},
	{
		ID:          "2",
		Title:       "Top Gun: Maverick",
		Description: "After thirty years, Maverick is still pushing the envelope as a top naval aviator.",
		Synopsis:    "After more than thirty years of service as one of the Navy's top aviators, Pete 'Maverick' Mitchell is where he belongs, pushing the envelope as a courageous test pilot and dodging the advancement in rank that would ground him.",
		Poster:      "https://images.pexels.com/photos/8111357/pexels-photo-8111357.jpeg",
		Duration:    "2h 17min",
		Genre:       []string{"Action", "Drama"},
		Rating:      "PG-13",
		Showtimes:   []string{"11:00 AM", "3:00 PM", "7:00 PM", "10:00 PM"},
		Price:       220,
		SeatingLayout: model.SeatingLayout{
			Rows: 10, SeatsPerRow: 12,
			ReservedSeats: []string{"A3", "B1", "B2", "C8", "D4", "F6"},
		},
	},
	{
		ID:          "3",
		Title:       "Black Panther: Wakanda Forever",
		Description: "The people of Wakanda fight to protect their home from intervening world powers.",
		Synopsis:    "Queen Ramonda, Shuri, M'Baku, Okoye and the Dora Milaje fight to protect their nation from intervening world powers in the wake of King T'Challa's death. As the Wakandans strive to embrace their next chapter, the heroes must band together with the help of War Dog Nakia and Everett Ross and forge a new path for the kingdom of Wakanda.",
		Poster:      "https://images.pexels.com/photos/8111280/pexels-photo-8111280.jpeg",
		Duration:    "2h 41min",
		Genre:       []string{"Action", "Adventure", "Drama"},
		Rating:      "PG-13",
		Showtimes:   []string{"12:00 PM", "4:00 PM", "8:00 PM"},
		Price:       280,
		SeatingLayout: model.SeatingLayout{
			Rows: 10, SeatsPerRow: 12,
			ReservedSeats: []string{"A4", "A5", "C2", "D9", "E1", "G7"},
		},
	},
	{
		ID:          "4",
		Title:       "Spider-Man: No Way Home",
		Description: "Spider-Man's identity is revealed and he asks Doctor Strange for help.",
		Synopsis:    "With Spider-Man's identity now revealed, Peter asks Doctor Strange for help. When a spell goes wrong, dangerous foes from other worlds start to appear, forcing Peter to discover what it truly means to be Spider-Man.",
		Poster:      "https://images.pexels.com/photos/7991225/pexels-photo-7991225.jpeg",
		Duration:    "2h 28min",
		Genre:       []string{"Action", "Adventure", "Fantasy"},
		Rating:      "PG-13",
		Showtimes:   []string{"1:00 PM", "5:00 PM", "9:00 PM"},
		Price:       300,
		SeatingLayout: model.SeatingLayout{
			Rows: 10, SeatsPerRow: 12,
			ReservedSeats: []string{"B3", "B4", "C6", "D2", "E5", "F9"},
		},
	},
}
