package punishments

import (
	"context"
	"sort"
	"time"
)

// memStore is an in-memory RecordStore for exercising the issuer and
// reconciler without a database.
type memStore struct {
	records   map[string]Record
	order     []string
	insertErr error
	// failNextInserts forces ErrDuplicateID for the next n inserts.
	failNextInserts int
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]Record)}
}

func (m *memStore) Insert(ctx context.Context, record Record) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	if m.failNextInserts > 0 {
		m.failNextInserts--
		return ErrDuplicateID
	}
	if _, exists := m.records[record.ID]; exists {
		return ErrDuplicateID
	}
	m.records[record.ID] = record
	m.order = append(m.order, record.ID)
	return nil
}

func (m *memStore) Get(ctx context.Context, id string) (Record, error) {
	record, ok := m.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return record, nil
}

func (m *memStore) SetActive(ctx context.Context, id string, active bool) error {
	record, ok := m.records[id]
	if !ok {
		return ErrNotFound
	}
	record.Active = active
	m.records[id] = record
	return nil
}

func (m *memStore) SetExpiry(ctx context.Context, id string, expiry *time.Time) error {
	record, ok := m.records[id]
	if !ok {
		return ErrNotFound
	}
	record.Expiry = expiry
	m.records[id] = record
	return nil
}

func (m *memStore) SetReason(ctx context.Context, id string, reason string) error {
	record, ok := m.records[id]
	if !ok {
		return ErrNotFound
	}
	record.Reason = reason
	m.records[id] = record
	return nil
}

func (m *memStore) ActiveWithExpiry(ctx context.Context, limit int) ([]Record, error) {
	var result []Record
	for _, id := range m.order {
		record := m.records[id]
		if record.Active && record.Expiry != nil {
			result = append(result, record)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Expiry.Before(*result[j].Expiry)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *memStore) History(ctx context.Context, userID string, limit int) ([]Record, error) {
	var result []Record
	for _, id := range m.order {
		record := m.records[id]
		if record.UserID == userID {
			result = append(result, record)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].IssuedAt.After(result[j].IssuedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *memStore) ActiveByKind(ctx context.Context, userID string, kinds ...Kind) ([]Record, error) {
	var result []Record
	for _, id := range m.order {
		record := m.records[id]
		if !record.Active || record.UserID != userID {
			continue
		}
		for _, kind := range kinds {
			if record.Kind == kind {
				result = append(result, record)
				break
			}
		}
	}
	return result, nil
}

// inserted returns records in insertion order.
func (m *memStore) inserted() []Record {
	result := make([]Record, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, m.records[id])
	}
	return result
}

type manualClock struct {
	now time.Time
}

func (c *manualClock) Now() time.Time { return c.now }

func (c *manualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }
