package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/citybureau/zba-events/internal/event"
	"github.com/citybureau/zba-events/internal/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps events in a MongoDB collection, one document per event ID
type MongoStore struct {
	client *mongo.Client
	events *mongo.Collection
}

type mongoEvent struct {
	ID        string       `bson:"_id"`
	StartDate string       `bson:"start_date"`
	Status    string       `bson:"status"`
	Event     *event.Event `bson:"event"`
	UpdatedAt time.Time    `bson:"updated_at"`
}

// NewMongoStore connects to uri and prepares the collection
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("can't ping MongoDB: %w", err)
	}

	s := newMongoStore(client.Database(database).Collection(collection))
	s.client = client

	if err := s.createIndexes(ctx); err != nil {
		logger.Warn("Creating MongoDB indexes failed", logger.Fields{"collection": collection, "error": err.Error()})
	}

	return s, nil
}

func newMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{events: coll}
}

func (s *MongoStore) createIndexes(ctx context.Context) error {
	_, err := s.events.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "start_date", Value: 1}},
	})
	return err
}

// Upsert replaces the document for evt.ID, inserting it when missing
func (s *MongoStore) Upsert(ctx context.Context, evt *event.Event) (bool, error) {
	doc := mongoEvent{
		ID:        evt.ID,
		StartDate: evt.Start.Date.String(),
		Status:    string(evt.Status),
		Event:     evt,
		UpdatedAt: time.Now().UTC(),
	}

	res, err := s.events.ReplaceOne(ctx, bson.M{"_id": evt.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return false, fmt.Errorf("failed to upsert event %s: %w", evt.ID, err)
	}
	return res.UpsertedCount > 0, nil
}

// Get loads the stored copy of an event
func (s *MongoStore) Get(ctx context.Context, id string) (*event.Event, error) {
	var doc mongoEvent
	err := s.events.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load event %s: %w", id, err)
	}
	return doc.Event, nil
}

// Upcoming returns stored events starting on or after from, ordered by date
func (s *MongoStore) Upcoming(ctx context.Context, from event.Date) ([]*event.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.events.Find(ctx, bson.M{"start_date": bson.M{"$gte": from.String()}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}

	var docs []mongoEvent
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}

	events := make([]*event.Event, 0, len(docs))
	for _, doc := range docs {
		events = append(events, doc.Event)
	}
	return events, nil
}

func (s *MongoStore) Close() error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
