package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rNintendoSwitch/MechaBowser-sub000/internal/punishments"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Insert stores a new punishment record. The kind is validated and the
// reason capped here so nothing downstream has to trust document shapes.
func (s *Store) Insert(ctx context.Context, record punishments.Record) error {
	if !record.Kind.Valid() {
		return fmt.Errorf("insert punishment: unknown kind %q", record.Kind)
	}
	record.Reason = punishments.TruncateReason(record.Reason)

	if _, err := s.puns.InsertOne(ctx, record); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return punishments.ErrDuplicateID
		}
		return fmt.Errorf("insert punishment: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (punishments.Record, error) {
	var record punishments.Record
	err := s.puns.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return punishments.Record{}, punishments.ErrNotFound
		}
		return punishments.Record{}, fmt.Errorf("get punishment %s: %w", id, err)
	}
	return record, nil
}

func (s *Store) SetActive(ctx context.Context, id string, active bool) error {
	result, err := s.puns.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"active": active}})
	if err != nil {
		return fmt.Errorf("set active on %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return punishments.ErrNotFound
	}
	return nil
}

func (s *Store) SetExpiry(ctx context.Context, id string, expiry *time.Time) error {
	update := bson.M{"$set": bson.M{"expiry": expiry}}
	if expiry == nil {
		update = bson.M{"$unset": bson.M{"expiry": ""}}
	}
	result, err := s.puns.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("set expiry on %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return punishments.ErrNotFound
	}
	return nil
}

func (s *Store) SetReason(ctx context.Context, id string, reason string) error {
	reason = punishments.TruncateReason(reason)
	result, err := s.puns.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"reason": reason}})
	if err != nil {
		return fmt.Errorf("set reason on %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return punishments.ErrNotFound
	}
	return nil
}

// ActiveWithExpiry returns up to limit active records that carry an expiry,
// oldest expiry first so the most overdue records are handled before the
// batch cap cuts off a large result set.
func (s *Store) ActiveWithExpiry(ctx context.Context, limit int) ([]punishments.Record, error) {
	filter := bson.M{
		"active": true,
		"expiry": bson.M{"$exists": true, "$ne": nil},
	}
	opts := options.Find().SetSort(bson.D{{Key: "expiry", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return s.findPunishments(ctx, filter, opts)
}

// History returns a user's records most-recent first, capped at limit.
func (s *Store) History(ctx context.Context, userID string, limit int) ([]punishments.Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return s.findPunishments(ctx, bson.M{"user": userID}, opts)
}

// ActiveByKind returns a user's active records of the given kinds.
func (s *Store) ActiveByKind(ctx context.Context, userID string, kinds ...punishments.Kind) ([]punishments.Record, error) {
	filter := bson.M{
		"user":   userID,
		"active": true,
		"type":   bson.M{"$in": kinds},
	}
	return s.findPunishments(ctx, filter, options.Find())
}

func (s *Store) findPunishments(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]punishments.Record, error) {
	cursor, err := s.puns.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find punishments: %w", err)
	}
	defer cursor.Close(ctx)

	var records []punishments.Record
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode punishments: %w", err)
	}
	return records, nil
}

// CountByKindSince counts records per kind issued at or after the cutoff.
func (s *Store) CountByKindSince(ctx context.Context, since time.Time) (map[punishments.Kind]int, error) {
	cursor, err := s.puns.Find(ctx, bson.M{"timestamp": bson.M{"$gte": since}})
	if err != nil {
		return nil, fmt.Errorf("count punishments: %w", err)
	}
	defer cursor.Close(ctx)

	counts := make(map[punishments.Kind]int)
	for cursor.Next(ctx) {
		var record punishments.Record
		if err := cursor.Decode(&record); err != nil {
			return nil, fmt.Errorf("decode punishment: %w", err)
		}
		counts[record.Kind]++
	}
	return counts, cursor.Err()
}
