package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rNintendoSwitch/MechaBowser-sub000/internal/profile"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Ensure creates an empty profile document if none exists yet.
func (s *Store) Ensure(ctx context.Context, userID string) error {
	update := bson.M{"$setOnInsert": bson.M{
		"roles":        []string{},
		"joins":        []time.Time{},
		"leaves":       []time.Time{},
		"name_history": []profile.NameEntry{},
	}}
	_, err := s.users.UpdateOne(ctx, bson.M{"_id": userID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("ensure user %s: %w", userID, err)
	}
	return nil
}

func (s *Store) GetProfile(ctx context.Context, userID string) (profile.Profile, error) {
	var p profile.Profile
	err := s.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return profile.Profile{}, profile.ErrNotFound
		}
		return profile.Profile{}, fmt.Errorf("get user %s: %w", userID, err)
	}
	return p, nil
}

func (s *Store) RecordJoin(ctx context.Context, userID string, at time.Time) error {
	_, err := s.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$push": bson.M{"joins": at}})
	if err != nil {
		return fmt.Errorf("record join %s: %w", userID, err)
	}
	return nil
}

func (s *Store) RecordLeave(ctx context.Context, userID string, at time.Time) error {
	_, err := s.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$push": bson.M{"leaves": at}})
	if err != nil {
		return fmt.Errorf("record leave %s: %w", userID, err)
	}
	return nil
}

func (s *Store) SetRoles(ctx context.Context, userID string, roles []string) error {
	if roles == nil {
		roles = []string{}
	}
	_, err := s.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{"roles": roles}})
	if err != nil {
		return fmt.Errorf("set roles %s: %w", userID, err)
	}
	return nil
}

func (s *Store) AppendName(ctx context.Context, userID string, entry profile.NameEntry) error {
	_, err := s.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$push": bson.M{"name_history": entry}})
	if err != nil {
		return fmt.Errorf("append name %s: %w", userID, err)
	}
	return nil
}
