package comments

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/eventgraph/internal/common"
	"github.com/dmitrijs2005/eventgraph/internal/mongox"
	"github.com/dmitrijs2005/eventgraph/internal/server/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the Mongo collection holding comments.
const CollectionName = "comments"

var mongoSort = bson.D{{Key: "createdAt", Value: 1}, {Key: "seq", Value: 1}}

type commentDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	Text      string             `bson:"text"`
	CreatedAt time.Time          `bson:"createdAt"`
	Author    primitive.ObjectID `bson:"author"`
	Event     primitive.ObjectID `bson:"event"`
	Seq       int64              `bson:"seq"`
}

func (d *commentDoc) model() *models.Comment {
	return &models.Comment{
		ID:        d.ID.Hex(),
		Text:      d.Text,
		CreatedAt: d.CreatedAt.UTC(),
		AuthorID:  d.Author.Hex(),
		EventID:   d.Event.Hex(),
	}
}

// MongoRepository has no foreign keys to lean on; callers check that the
// event exists before Create.
type MongoRepository struct {
	db  *mongo.Database
	col *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{db: db, col: db.Collection(CollectionName)}
}

func (r *MongoRepository) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	event, ok := mongox.ParseID(comment.EventID)
	if !ok {
		return nil, common.ErrorNotFound
	}
	author, ok := mongox.ParseID(comment.AuthorID)
	if !ok {
		return nil, common.ErrorNotFound
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}

	seq, err := mongox.NextSeq(ctx, r.db, CollectionName)
	if err != nil {
		return nil, err
	}

	doc := commentDoc{
		ID:        primitive.NewObjectID(),
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt,
		Author:    author,
		Event:     event,
		Seq:       seq,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	comment.ID = doc.ID.Hex()
	return comment, nil
}

func (r *MongoRepository) ListByEvent(ctx context.Context, eventID string) ([]*models.Comment, error) {
	oid, ok := mongox.ParseID(eventID)
	if !ok {
		return nil, nil
	}
	return r.find(ctx, bson.M{"event": oid})
}

func (r *MongoRepository) ListByAuthor(ctx context.Context, authorID string) ([]*models.Comment, error) {
	oid, ok := mongox.ParseID(authorID)
	if !ok {
		return nil, nil
	}
	return r.find(ctx, bson.M{"author": oid})
}

func (r *MongoRepository) ListByEvents(ctx context.Context, eventIDs []string) (map[string][]*models.Comment, error) {
	grouped := make(map[string][]*models.Comment)
	oids := mongox.ParseIDs(eventIDs)
	if len(oids) == 0 {
		return grouped, nil
	}

	list, err := r.find(ctx, bson.M{"event": bson.M{"$in": oids}})
	if err != nil {
		return nil, err
	}
	for _, c := range list {
		grouped[c.EventID] = append(grouped[c.EventID], c)
	}
	return grouped, nil
}

func (r *MongoRepository) find(ctx context.Context, filter bson.M) ([]*models.Comment, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(mongoSort))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer cur.Close(ctx)

	var result []*models.Comment
	for cur.Next(ctx) {
		var doc commentDoc
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
