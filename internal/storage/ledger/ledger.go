package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vophuhao/tour-cam-trai-sub001/internal/logger"
	"github.com/vophuhao/tour-cam-trai-sub001/internal/search"
)

var ErrMissingDSN = errors.New("missing postgres dsn")

type Config struct {
	L           *logger.Logger
	DSN         string
	AutoMigrate bool
}

// bookingRow is the relational form of a booking.
type bookingRow struct {
	ID         string    `gorm:"primaryKey;size:64"`
	SiteID     string    `gorm:"size:64;not null;index:idx_bookings_site_stay,priority:1"`
	PropertyID string    `gorm:"size:64;index"`
	GuestID    string    `gorm:"size:64"`
	CheckIn    time.Time `gorm:"not null;index:idx_bookings_site_stay,priority:2"`
	CheckOut   time.Time `gorm:"not null"`
	Status     string    `gorm:"size:16;not null;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (bookingRow) TableName() string {
	return "bookings"
}

func fromBooking(b *search.Booking) bookingRow {
	return bookingRow{
		ID:         b.ID,
		SiteID:     b.SiteID,
		PropertyID: b.PropertyID,
		GuestID:    b.GuestID,
		CheckIn:    b.CheckIn.UTC(),
		CheckOut:   b.CheckOut.UTC(),
		Status:     string(b.Status),
	}
}

func (r bookingRow) toBooking() search.Booking {
	return search.Booking{
		ID:         r.ID,
		SiteID:     r.SiteID,
		PropertyID: r.PropertyID,
		GuestID:    r.GuestID,
		CheckIn:    r.CheckIn.UTC(),
		CheckOut:   r.CheckOut.UTC(),
		Status:     search.BookingStatus(r.Status),
	}
}

// Ledger is a postgres-backed booking store.
type Ledger struct {
	l  *logger.Logger
	db *gorm.DB
}

func Open(conf Config) (*Ledger, error) {
	if conf.DSN == "" {
		return nil, ErrMissingDSN
	}

	db, err := gorm.Open(postgres.Open(conf.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if conf.AutoMigrate {
		if err := migrate(db); err != nil {
			return nil, err
		}
	}

	return newLedger(conf.L, db), nil
}

// migrate creates the bookings table. The connection is closed when it fails.
func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&bookingRow{}); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}

		return fmt.Errorf("migrate bookings: %w", err)
	}

	return nil
}

func newLedger(l *logger.Logger, db *gorm.DB) *Ledger {
	if l == nil {
		l = logger.Discard()
	}

	return &Ledger{l: l, db: db}
}

func (lg *Ledger) Close() error {
	sqlDB, err := lg.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close postgres: %w", err)
	}

	return nil
}

// SaveBookings upserts bookings by id.
func (lg *Ledger) SaveBookings(ctx context.Context, bookings []*search.Booking) error {
	if len(bookings) == 0 {
		return nil
	}

	rows := make([]bookingRow, 0, len(bookings))
	for _, b := range bookings {
		rows = append(rows, fromBooking(b))
	}

	err := lg.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(&rows, 100).Error //nolint:gomnd
	if err != nil {
		return fmt.Errorf("save bookings: %w", err)
	}

	lg.l.LogDebugf("Saved %d bookings to the ledger", len(rows))

	return nil
}

func (lg *Ledger) FindBookings(ctx context.Context, q search.BookingQuery) ([]search.Booking, error) {
	if len(q.SiteIDs) == 0 {
		return nil, nil
	}

	var rows []bookingRow
	if err := lg.db.WithContext(ctx).Scopes(overlapping(q)).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find bookings: %w", err)
	}

	out := make([]search.Booking, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toBooking())
	}

	return out, nil
}

// overlapping narrows to bookings on the given sites whose stay may intersect
// the range. Exact overlap is checked by the caller.
func overlapping(q search.BookingQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("site_id IN ?", q.SiteIDs)

		if len(q.Statuses) > 0 {
			statuses := make([]string, 0, len(q.Statuses))
			for _, s := range q.Statuses {
				statuses = append(statuses, string(s))
			}

			db = db.Where("status IN ?", statuses)
		}

		return db.Where("check_in < ? AND check_out > ?", q.Range.CheckOut, q.Range.CheckIn)
	}
}
