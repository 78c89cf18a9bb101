package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/FaizaanMd/cinema-booking/internal/model"
	"github.com/FaizaanMd/cinema-booking/internal/reservation"
)

// ReservationRepo stores reservations in the reservations table.  Seats
// are kept as a JSON array so a reservation is always a single row.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

var _ reservation.Storage = (*ReservationRepo)(nil)

const schema = `CREATE TABLE IF NOT EXISTS reservations (
  seq            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
  id             VARCHAR(64)  NOT NULL,
  movie_id       VARCHAR(64)  NOT NULL,
  movie_title    VARCHAR(255) NOT NULL,
  movie_poster   VARCHAR(1024) NOT NULL DEFAULT '',
  showtime       VARCHAR(32)  NOT NULL,
  seats          JSON         NOT NULL,
  customer_name  VARCHAR(255) NOT NULL,
  customer_email VARCHAR(255) NOT NULL,
  customer_phone VARCHAR(32)  NOT NULL,
  total_price    INT          NOT NULL,
  booking_date   DATE         NOT NULL,
  status         ENUM('confirmed','cancelled') NOT NULL DEFAULT 'confirmed',
  created_at     DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE KEY uq_reservations_id (id),
  KEY idx_reservations_email (customer_email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// EnsureSchema creates the reservations table when it does not exist.
func (r *ReservationRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

const columns = `id, movie_id, movie_title, movie_poster, showtime, seats,
  customer_name, customer_email, customer_phone, total_price, booking_date, status`

// Insert writes res.  A duplicate id yields reservation.ErrDuplicateID.
func (r *ReservationRepo) Insert(ctx context.Context, res model.Reservation) error {
	seats, err := json.Marshal(res.Seats)
	if err != nil {
		return err
	}
	const q = `INSERT INTO reservations (` + columns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, q,
		res.ID, res.MovieID, res.MovieTitle, res.MoviePoster, res.Showtime, string(seats),
		res.CustomerName, res.CustomerEmail, res.CustomerPhone, res.TotalPrice,
		res.BookingDate, string(res.Status),
	)
	if isDuplicate(err) {
		return fmt.Errorf("%w: %s", reservation.ErrDuplicateID, res.ID)
	}
	return err
}

// List returns every row in insertion order.
func (r *ReservationRepo) List(ctx context.Context) ([]model.Reservation, error) {
	const q = `SELECT ` + columns + ` FROM reservations ORDER BY seq`
	return r.query(ctx, q)
}

// FindByEmail matches customer_email ignoring case.  The caller trims.
func (r *ReservationRepo) FindByEmail(ctx context.Context, email string) ([]model.Reservation, error) {
	const q = `SELECT ` + columns + ` FROM reservations WHERE LOWER(customer_email) = LOWER(?) ORDER BY seq`
	return r.query(ctx, q, email)
}

// Get loads one reservation.  The bool is false when no row matches.
func (r *ReservationRepo) Get(ctx context.Context, id string) (model.Reservation, bool, error) {
	const q = `SELECT ` + columns + ` FROM reservations WHERE id = ?`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return model.Reservation{}, false, nil
	}
	if err != nil {
		return model.Reservation{}, false, err
	}
	return res, true, nil
}

// UpdateStatus sets the status column.  Setting the current value again
// still counts as found.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id string, status model.ReservationStatus) (bool, error) {
	const q = `UPDATE reservations SET status = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, string(status), id); err != nil {
		return false, err
	}
	// MySQL reports zero affected rows when the value did not change, so
	// existence is checked separately.
	return r.exists(ctx, id)
}

// Remove deletes the row.
func (r *ReservationRepo) Remove(ctx context.Context, id string) (bool, error) {
	const q = `DELETE FROM reservations WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *ReservationRepo) exists(ctx context.Context, id string) (bool, error) {
	const q = `SELECT 1 FROM reservations WHERE id = ? LIMIT 1`
	var one int
	err := r.db.QueryRowContext(ctx, q, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *ReservationRepo) query(ctx context.Context, q string, args ...interface{}) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(s rowScanner) (model.Reservation, error) {
	var (
		res         model.Reservation
		seats       []byte
		bookingDate time.Time
		status      string
	)
	err := s.Scan(
		&res.ID, &res.MovieID, &res.MovieTitle, &res.MoviePoster, &res.Showtime, &seats,
		&res.CustomerName, &res.CustomerEmail, &res.CustomerPhone, &res.TotalPrice,
		&bookingDate, &status,
	)
	if err != nil {
		return model.Reservation{}, err
	}
	if err := json.Unmarshal(seats, &res.Seats); err != nil {
		return model.Reservation{}, fmt.Errorf("%w: %s seats: %v", ErrCorruptRow, res.ID, err)
	}
	res.BookingDate = bookingDate.Format(model.DateLayout)
	res.Status = model.ReservationStatus(status)
	return res, nil
}
