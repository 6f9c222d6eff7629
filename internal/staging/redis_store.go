package staging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/appointment"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "guest_booking:"

// RedisGuestStore keeps staged guest bookings under a per-session key with
// a TTL. Expired entries are simply gone.
type RedisGuestStore struct {
	client *redis.Client
}

func NewRedisGuestStore(client *redis.Client) *RedisGuestStore {
	return &RedisGuestStore{client: client}
}

func (s *RedisGuestStore) Put(ctx context.Context, sessionID string, b *appointment.GuestBooking, ttl time.Duration) error {
	payload, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encoding guest booking: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+sessionID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("storing guest booking: %w", err)
	}
	return nil
}

// Take uses GETDEL so two registrations racing on one session cannot both
// receive the booking.
func (s *RedisGuestStore) Take(ctx context.Context, sessionID string) (*appointment.GuestBooking, error) {
	raw, err := s.client.GetDel(ctx, keyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, appointment.ErrGuestBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading guest booking: %w", err)
	}

	var b appointment.GuestBooking
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("decoding guest booking: %w", err)
	}
	return &b, nil
}
