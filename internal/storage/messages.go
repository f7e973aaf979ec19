package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrMessageNotFound is returned for messages the archive never saw.
var ErrMessageNotFound = errors.New("message not found")

type MessageEdit struct {
	Content   string    `bson:"content"`
	Timestamp time.Time `bson:"timestamp"`
}

// ArchivedMessage is one document in the messages collection. Content is
// captured on create so deletions can still be reported with their text.
type ArchivedMessage struct {
	ID          string        `bson:"_id"`
	AuthorID    string        `bson:"author"`
	ChannelID   string        `bson:"channel"`
	Content     string        `bson:"content"`
	Attachments []string      `bson:"attachments,omitempty"`
	Timestamp   time.Time     `bson:"timestamp"`
	Edits       []MessageEdit `bson:"edits,omitempty"`
	DeletedAt   *time.Time    `bson:"deleted_at,omitempty"`
}

// PreviousContent returns the message text as it read before the most
// recent recorded edit: the second-to-last edit when there are several,
// the create-time content otherwise.
func (m ArchivedMessage) PreviousContent() string {
	if len(m.Edits) > 1 {
		return m.Edits[len(m.Edits)-2].Content
	}
	return m.Content
}

func (s *Store) ArchiveMessage(ctx context.Context, msg ArchivedMessage) error {
	if _, err := s.messages.InsertOne(ctx, msg); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("archive message %s: %w", msg.ID, err)
	}
	return nil
}

func (s *Store) GetMessage(ctx context.Context, id string) (ArchivedMessage, error) {
	var msg ArchivedMessage
	err := s.messages.FindOne(ctx, bson.M{"_id": id}).Decode(&msg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ArchivedMessage{}, ErrMessageNotFound
		}
		return ArchivedMessage{}, fmt.Errorf("get message %s: %w", id, err)
	}
	return msg, nil
}

func (s *Store) RecordMessageEdit(ctx context.Context, id, content string, at time.Time) error {
	edit := MessageEdit{Content: content, Timestamp: at}
	result, err := s.messages.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$push": bson.M{"edits": edit}})
	if err != nil {
		return fmt.Errorf("record edit %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrMessageNotFound
	}
	return nil
}

func (s *Store) MarkMessageDeleted(ctx context.Context, id string, at time.Time) error {
	result, err := s.messages.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"deleted_at": at}})
	if err != nil {
		return fmt.Errorf("mark deleted %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrMessageNotFound
	}
	return nil
}
