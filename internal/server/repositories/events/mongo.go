package events

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/dmitrijs2005/eventgraph/internal/common"
	"github.com/dmitrijs2005/eventgraph/internal/mongox"
	"github.com/dmitrijs2005/eventgraph/internal/server/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the Mongo collection holding events.
const CollectionName = "events"

var mongoSort = bson.D{{Key: "date", Value: -1}, {Key: "seq", Value: 1}}

type eventDoc struct {
	ID          primitive.ObjectID   `bson:"_id"`
	Title       string               `bson:"title"`
	Description *string              `bson:"description,omitempty"`
	Date        time.Time            `bson:"date"`
	CreatedBy   primitive.ObjectID   `bson:"createdBy"`
	Attendees   []primitive.ObjectID `bson:"attendees"`
	CreatedAt   time.Time            `bson:"createdAt"`
	Seq         int64                `bson:"seq"`
}

func (d *eventDoc) model() *models.Event {
	return &models.Event{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Date:        d.Date.UTC(),
		CreatedBy:   d.CreatedBy.Hex(),
		Attendees:   mongox.Hexes(d.Attendees),
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

type MongoRepository struct {
	db  *mongo.Database
	col *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{db: db, col: db.Collection(CollectionName)}
}

func (r *MongoRepository) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	creator, ok := mongox.ParseID(event.CreatedBy)
	if !ok {
		return nil, fmt.Errorf("%w: creator", common.ErrorNotFound)
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	seq, err := mongox.NextSeq(ctx, r.db, CollectionName)
	if err != nil {
		return nil, err
	}

	doc := eventDoc{
		ID:          primitive.NewObjectID(),
		Title:       event.Title,
		Description: event.Description,
		Date:        event.Date,
		CreatedBy:   creator,
		Attendees:   []primitive.ObjectID{},
		CreatedAt:   event.CreatedAt,
		Seq:         seq,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	event.ID = doc.ID.Hex()
	event.Attendees = []string{}
	return event, nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	oid, ok := mongox.ParseID(id)
	if !ok {
		return nil, common.ErrorNotFound
	}

	var doc eventDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if mongox.IsNoDocuments(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc.model(), nil
}

func (r *MongoRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.Event, error) {
	oids := mongox.ParseIDs(ids)
	if len(oids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}}, options.Find())
}

func (r *MongoRepository) List(ctx context.Context, filter models.EventFilter, limit, offset int) ([]*models.Event, error) {
	opts := options.Find().
		SetSort(mongoSort).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	return r.find(ctx, searchFilter(filter), opts)
}

func (r *MongoRepository) Count(ctx context.Context, filter models.EventFilter) (int, error) {
	n, err := r.col.CountDocuments(ctx, searchFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return int(n), nil
}

func (r *MongoRepository) AddAttendee(ctx context.Context, eventID, userID string) (*models.Event, error) {
	eoid, ok := mongox.ParseID(eventID)
	if !ok {
		return nil, common.ErrorNotFound
	}
	uoid, ok := mongox.ParseID(userID)
	if !ok {
		return nil, common.ErrorNotFound
	}

	var doc eventDoc
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": eoid},
		bson.M{"$addToSet": bson.M{"attendees": uoid}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if mongox.IsNoDocuments(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc.model(), nil
}

func (r *MongoRepository) ListByUser(ctx context.Context, userID string) ([]*models.Event, error) {
	uoid, ok := mongox.ParseID(userID)
	if !ok {
		return nil, nil
	}
	filter := bson.M{"$or": bson.A{
		bson.M{"createdBy": uoid},
		bson.M{"attendees": uoid},
	}}
	return r.find(ctx, filter, options.Find().SetSort(mongoSort))
}

func (r *MongoRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Event, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer cur.Close(ctx)

	var result []*models.Event
	for cur.Next(ctx) {
		var doc eventDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, doc.model())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func searchFilter(filter models.EventFilter) bson.M {
	term := filter.Term()
	if term == "" {
		return bson.M{}
	}
	return bson.M{"title": primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}}
}
