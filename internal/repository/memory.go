package repository

import (
	"context"
	"sync"
	"time"

	"huddle/internal/models"
)

// MemoryScheduleCache is the in-process fallback for the Redis cache.
type MemoryScheduleCache struct {
	mu         sync.RWMutex
	days       map[string]memoryEntry
	rateLimits map[string]rateLimitEntry
	ttl        time.Duration
}

type memoryEntry struct {
	bookings  []models.Booking
	roomID    string
	expiresAt time.Time
}

func NewMemoryScheduleCache(ttl time.Duration) *MemoryScheduleCache {
	return &MemoryScheduleCache{
		days:       make(map[string]memoryEntry),
		rateLimits: make(map[string]rateLimitEntry),
		ttl:        ttl,
	}
}

func (m *MemoryScheduleCache) GetDay(ctx context.Context, roomID string, day time.Time) ([]models.Booking, bool, error) {
	m.mu.RLock()
	entry, ok := m.days[dayKey(roomID, day)]
	m.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false, nil
	}
	return entry.bookings, true, nil
}

func (m *MemoryScheduleCache) SetDay(ctx context.Context, roomID string, day time.Time, bookings []models.Booking) error {
	m.mu.Lock()
	m.days[dayKey(roomID, day)] = memoryEntry{
		bookings:  bookings,
		roomID:    roomID,
		expiresAt: time.Now().Add(m.ttl),
	}
	m.mu.Unlock()
	return nil
}

func (m *MemoryScheduleCache) InvalidateRoom(ctx context.Context, roomID string) error {
	m.mu.Lock()
	for key, entry := range m.days {
		if entry.roomID == roomID {
			delete(m.days, key)
		}
	}
	m.mu.Unlock()
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

// CheckRateLimit counts one request against the user's window. The whole
// read-modify-write runs under the lock so concurrent requests from the same
// user cannot lose increments.
func (m *MemoryScheduleCache) CheckRateLimit(ctx context.Context, userID string, limit int, window time.Duration) (bool, error) {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.rateLimits[userID]
	if !ok || now.After(entry.expiresAt) {
		entry = rateLimitEntry{count: 1, expiresAt: now.Add(window)}
	} else {
		entry.count++
	}
	m.rateLimits[userID] = entry

	return entry.count <= limit, nil
}
