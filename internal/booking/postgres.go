package booking

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dispatch/internal/trip"
)

// PostgresStore persists bookings in PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, b *Booking) error {
	tripJSON, err := marshalTrip(b.Trip)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
        INSERT INTO bookings (
            id, phone, pickup_location, dropoff_location, pickup_time,
            passengers, luggage, special_requests, trip, status, version,
            created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5,
            $6, $7, $8, $9, $10, $11,
            $12, $13
        )`,
		b.ID,
		b.Phone,
		b.Slots.PickupLocation,
		b.Slots.DropoffLocation,
		b.Slots.PickupTime,
		b.Slots.Passengers,
		b.Slots.Luggage,
		b.Slots.SpecialRequests,
		tripJSON,
		string(b.Status),
		b.Version,
		b.CreatedAt,
		b.UpdatedAt,
	)
	return err
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Booking, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id, phone, pickup_location, dropoff_location, pickup_time,
               passengers, luggage, special_requests, trip, status, version,
               created_at, updated_at
        FROM bookings
        WHERE id = $1`, id,
	)
	return scanBooking(row)
}

func (s *PostgresStore) Update(ctx context.Context, b *Booking, expectedVersion int) (bool, error) {
	tag, err := s.db.Exec(ctx, `
        UPDATE bookings
        SET pickup_location = $1,
            dropoff_location = $2,
            pickup_time = $3,
            passengers = $4,
            luggage = $5,
            special_requests = $6,
            status = $7,
            version = $8,
            updated_at = $9
        WHERE id = $10 AND version = $11`,
		b.Slots.PickupLocation,
		b.Slots.DropoffLocation,
		b.Slots.PickupTime,
		b.Slots.Passengers,
		b.Slots.Luggage,
		b.Slots.SpecialRequests,
		string(b.Status),
		b.Version,
		b.UpdatedAt,
		b.ID,
		expectedVersion,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresStore) ActiveByPhone(ctx context.Context, phone string) (*Booking, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id, phone, pickup_location, dropoff_location, pickup_time,
               passengers, luggage, special_requests, trip, status, version,
               created_at, updated_at
        FROM bookings
        WHERE phone = $1 AND status IN ('pending','confirmed')
        ORDER BY created_at DESC
        LIMIT 1`, phone,
	)
	return scanBooking(row)
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	var pickup, dropoff, pickupTime, luggage, specials sql.NullString
	var passengers sql.NullInt32
	var tripJSON []byte

	err := row.Scan(
		&b.ID, &b.Phone, &pickup, &dropoff, &pickupTime,
		&passengers, &luggage, &specials, &tripJSON, &b.Status, &b.Version,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(tripJSON) > 0 {
		var res trip.Resolution
		if err := json.Unmarshal(tripJSON, &res); err != nil {
			return nil, fmt.Errorf("decode trip snapshot: %w", err)
		}
		b.Trip = &res
	}

	b.Slots.PickupLocation = toStrPtr(pickup)
	b.Slots.DropoffLocation = toStrPtr(dropoff)
	b.Slots.PickupTime = toStrPtr(pickupTime)
	b.Slots.Luggage = toStrPtr(luggage)
	b.Slots.SpecialRequests = toStrPtr(specials)
	if passengers.Valid {
		n := int(passengers.Int32)
		b.Slots.Passengers = &n
	}
	return &b, nil
}

func toStrPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func marshalTrip(res *trip.Resolution) ([]byte, error) {
	if res == nil {
		return nil, nil
	}
	out, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("encode trip snapshot: %w", err)
	}
	return out, nil
}
