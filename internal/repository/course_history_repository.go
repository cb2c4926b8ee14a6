package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sophiemoustard/compani-api-sub005/internal/models"
)

type courseHistoryDocument struct {
	ID        primitive.ObjectID        `bson:"_id,omitempty"`
	CourseID  string                    `bson:"course"`
	Action    string                    `bson:"action"`
	CreatedBy string                    `bson:"createdBy"`
	CreatedAt time.Time                 `bson:"createdAt"`
	Slot      *models.HistorySlot       `bson:"slot,omitempty"`
	Update    *models.HistorySlotUpdate `bson:"update,omitempty"`
	TraineeID *string                   `bson:"trainee,omitempty"`
	CompanyID *string                   `bson:"company,omitempty"`
}

func (d courseHistoryDocument) toModel() models.CourseHistory {
	return models.CourseHistory{
		ID:        d.ID.Hex(),
		CourseID:  d.CourseID,
		Action:    models.CourseHistoryAction(d.Action),
		CreatedBy: d.CreatedBy,
		CreatedAt: d.CreatedAt,
		Slot:      d.Slot,
		Update:    d.Update,
		TraineeID: d.TraineeID,
		CompanyID: d.CompanyID,
	}
}

// CourseHistoryRepository stores course histories in an append-only collection.
// It exposes no update or delete.
type CourseHistoryRepository struct {
	c *mongo.Collection
}

// NewCourseHistoryRepository constructs the repository over the given collection.
func NewCourseHistoryRepository(c *mongo.Collection) *CourseHistoryRepository {
	return &CourseHistoryRepository{c: c}
}

// EnsureIndexes creates the indexes backing course listings and membership replay.
func (r *CourseHistoryRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "course", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "course", Value: 1}, {Key: "trainee", Value: 1}, {Key: "action", Value: 1}}},
	}
	if _, err := r.c.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create course history indexes: %w", err)
	}
	return nil
}

// Insert appends an entry and fills its ID.
func (r *CourseHistoryRepository) Insert(ctx context.Context, history *models.CourseHistory) error {
	doc := courseHistoryDocument{
		ID:        primitive.NewObjectID(),
		CourseID:  history.CourseID,
		Action:    string(history.Action),
		CreatedBy: history.CreatedBy,
		CreatedAt: history.CreatedAt,
		Slot:      history.Slot,
		Update:    history.Update,
		TraineeID: history.TraineeID,
		CompanyID: history.CompanyID,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	if _, err := r.c.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert course history: %w", err)
	}
	history.ID = doc.ID.Hex()
	history.CreatedAt = doc.CreatedAt
	return nil
}

// List returns the course's entries matching the filter, newest first unless Ascending is set.
// Ties on createdAt are broken by insertion order.
func (r *CourseHistoryRepository) List(ctx context.Context, filter models.CourseHistoryFilter) ([]models.CourseHistory, error) {
	query := bson.M{"course": filter.CourseID}
	switch {
	case filter.Before != nil && filter.BeforeID != "":
		id, err := primitive.ObjectIDFromHex(filter.BeforeID)
		if err != nil {
			return nil, fmt.Errorf("parse history cursor: %w", err)
		}
		query["$or"] = bson.A{
			bson.M{"createdAt": bson.M{"$lt": *filter.Before}},
			bson.M{"createdAt": *filter.Before, "_id": bson.M{"$lt": id}},
		}
	case filter.Before != nil:
		query["createdAt"] = bson.M{"$lt": *filter.Before}
	}
	if len(filter.Actions) > 0 {
		actions := make([]string, len(filter.Actions))
		for i, a := range filter.Actions {
			actions[i] = string(a)
		}
		query["action"] = bson.M{"$in": actions}
	}
	if len(filter.TraineeIDs) > 0 {
		query["trainee"] = bson.M{"$in": filter.TraineeIDs}
	}

	direction := -1
	if filter.Ascending {
		direction = 1
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: direction}, {Key: "_id", Value: direction}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.c.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find course histories: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []courseHistoryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode course histories: %w", err)
	}
	histories := make([]models.CourseHistory, len(docs))
	for i, d := range docs {
		histories[i] = d.toModel()
	}
	return histories, nil
}
