package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/eventgraph/internal/server/repositories/comments"
	"github.com/dmitrijs2005/eventgraph/internal/server/repositories/events"
	"github.com/dmitrijs2005/eventgraph/internal/server/repositories/users"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

// DefaultMongoDatabase is used when the URI names no database.
const DefaultMongoDatabase = "eventgraph"

// MongoRepositoryManager vends MongoDB-backed repositories for one database.
type MongoRepositoryManager struct {
	client   *mongo.Client
	db       *mongo.Database
	users    *users.MongoRepository
	events   *events.MongoRepository
	comments *comments.MongoRepository
}

// OpenMongo connects to uri and pings the primary.
func OpenMongo(ctx context.Context, uri string) (*MongoRepositoryManager, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, fmt.Errorf("parse mongodb uri: %w", err)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	name := cs.Database
	if name == "" {
		name = DefaultMongoDatabase
	}
	return NewMongoRepositoryManager(client, client.Database(name)), nil
}

// NewMongoRepositoryManager wraps a connected client; client may be nil in
// tests that only exercise the database handle.
func NewMongoRepositoryManager(client *mongo.Client, db *mongo.Database) *MongoRepositoryManager {
	return &MongoRepositoryManager{
		client:   client,
		db:       db,
		users:    users.NewMongoRepository(db),
		events:   events.NewMongoRepository(db),
		comments: comments.NewMongoRepository(db),
	}
}

func (m *MongoRepositoryManager) Users() users.Repository       { return m.users }
func (m *MongoRepositoryManager) Events() events.Repository     { return m.events }
func (m *MongoRepositoryManager) Comments() comments.Repository { return m.comments }
func (m *MongoRepositoryManager) Engine() string                { return EngineMongo }

// indexes lists the indexes every collection needs, keyed by collection.
func indexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		users.CollectionName: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("email_unique")},
			{Keys: bson.D{{Key: "seq", Value: 1}}, Options: options.Index().SetName("seq")},
		},
		events.CollectionName: {
			{Keys: bson.D{{Key: "date", Value: -1}, {Key: "seq", Value: 1}}, Options: options.Index().SetName("date_seq")},
			{Keys: bson.D{{Key: "createdBy", Value: 1}}, Options: options.Index().SetName("created_by")},
			{Keys: bson.D{{Key: "attendees", Value: 1}}, Options: options.Index().SetName("attendees")},
		},
		comments.CollectionName: {
			{Keys: bson.D{{Key: "event", Value: 1}, {Key: "createdAt", Value: 1}, {Key: "seq", Value: 1}}, Options: options.Index().SetName("event_created")},
			{Keys: bson.D{{Key: "author", Value: 1}, {Key: "createdAt", Value: 1}, {Key: "seq", Value: 1}}, Options: options.Index().SetName("author_created")},
		},
	}
}

// RunMigrations creates the indexes; creating an existing index is a no-op.
func (m *MongoRepositoryManager) RunMigrations(ctx context.Context) error {
	for _, coll := range []string{users.CollectionName, events.CollectionName, comments.CollectionName} {
		if _, err := m.db.Collection(coll).Indexes().CreateMany(ctx, indexes()[coll]); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}

func (m *MongoRepositoryManager) Ping(ctx context.Context) error {
	return m.db.Client().Ping(ctx, readpref.Primary())
}

func (m *MongoRepositoryManager) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}
