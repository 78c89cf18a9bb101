package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/FaizaanMd/cinema-booking/internal/catalog"
	"github.com/FaizaanMd/cinema-booking/internal/model"
	"github.com/FaizaanMd/cinema-booking/internal/seatmap"
)

// CatalogHandler serves the read-only movie catalog.
type CatalogHandler struct {
	Catalog *catalog.Catalog
}

// NewCatalogHandler panics on a nil catalog.
func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	if cat == nil {
		panic("nil catalog passed to NewCatalogHandler")
	}
	return &CatalogHandler{Catalog: cat}
}

// ListMovies handles GET /v1/movies.
func (h *CatalogHandler) ListMovies(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"items": h.Catalog.GetAllMovies()})
}

// GetMovie handles GET /v1/movies/:id.
func (h *CatalogHandler) GetMovie(c echo.Context) error {
	m, err := h.Catalog.GetMovieByID(c.Param("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// SearchMovies handles GET /v1/search/movies.  Query parameters: title,
// genre, showtime, page (default 1) and page_size (default 20, max 100).
func (h *CatalogHandler) SearchMovies(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	ps, _ := strconv.Atoi(c.QueryParam("page_size"))
	q := catalog.SearchQuery{
		Title:    c.QueryParam("title"),
		Genre:    c.QueryParam("genre"),
		Showtime: c.QueryParam("showtime"),
		Page:     page,
		PageSize: ps,
	}.Normalize()

	items, total := h.Catalog.Search(q)
	return c.JSON(http.StatusOK, echo.Map{
		"data":      items,
		"total":     total,
		"page":      q.Page,
		"page_size": q.PageSize,
	})
}

// seatMapView is the rendered hall for one movie.
type seatMapView struct {
	MovieID       string          `json:"movieId"`
	Price         int             `json:"price"`
	Rows          []model.SeatRow `json:"rows"`
	SelectedSeats []string        `json:"selectedSeats"`
	TotalPrice    int             `json:"totalPrice"`
}

// GetSeats handles GET /v1/movies/:id/seats.  The optional ?selected=
// parameter is a comma separated list of seat ids to mark as selected, so
// a client can preview a selection without a booking session.
func (h *CatalogHandler) GetSeats(c echo.Context) error {
	m, err := h.Catalog.GetMovieByID(c.Param("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	selected := splitSeats(c.QueryParam("selected"))
	for _, id := range selected {
		if !seatmap.InLayout(id, m.SeatingLayout) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown seat " + id})
		}
	}
	view, err := renderSeats(m, selected)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func renderSeats(m model.Movie, selected []string) (seatMapView, error) {
	rows, err := seatmap.Grid(m.SeatingLayout, selected)
	if err != nil {
		return seatMapView{}, err
	}
	reserved := seatmap.NewSet(m.SeatingLayout.ReservedSeats...)
	seen := seatmap.Set{}
	kept := make([]string, 0, len(selected))
	for _, id := range selected {
		if !reserved.Has(id) && !seen.Has(id) {
			seen[id] = struct{}{}
			kept = append(kept, id)
		}
	}
	return seatMapView{
		MovieID:       m.ID,
		Price:         m.Price,
		Rows:          rows,
		SelectedSeats: kept,
		TotalPrice:    m.Price * len(kept),
	}, nil
}

func splitSeats(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.ToUpper(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
