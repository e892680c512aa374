package appointments

import (
	"context"
	"fmt"

	"github.com/swand-12/saloon-backend-admin/internal/db"
	"github.com/swand-12/saloon-backend-admin/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository is the only owner of persisted appointments. A non-empty from
// status turns UpdateStatus and Delete into conditional operations; a record
// in another status is reported as mongo.ErrNoDocuments / false.
type Repository interface {
	Create(ctx context.Context, item models.Appointment) error
	ListByStatus(ctx context.Context, status models.Status, order ListOrder) ([]models.Appointment, error)
	UpdateStatus(ctx context.Context, id string, from, to models.Status) (models.Appointment, error)
	Delete(ctx context.Context, id string, from models.Status) (bool, error)
}

// CollectionSource is satisfied by *db.Handle.
type CollectionSource interface {
	Collection(ctx context.Context, name string) (*mongo.Collection, error)
	Invalidate(err error)
}

type MongoRepository struct {
	src CollectionSource
}

func NewRepository(src CollectionSource) *MongoRepository {
	return &MongoRepository{src: src}
}

func (r *MongoRepository) collection(ctx context.Context) (*mongo.Collection, error) {
	return r.src.Collection(ctx, db.AppointmentsCollection)
}

func (r *MongoRepository) Create(ctx context.Context, item models.Appointment) error {
	col, err := r.collection(ctx)
	if err != nil {
		return err
	}
	_, err = col.InsertOne(ctx, item)
	r.src.Invalidate(err)
	return err
}

func (r *MongoRepository) ListByStatus(ctx context.Context, status models.Status, order ListOrder) ([]models.Appointment, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("unknown status %q", status)
	}
	col, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}

	cursor, err := col.Find(ctx, statusFilter(status), findOptions(order))
	if err != nil {
		r.src.Invalidate(err)
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]models.Appointment, 0)
	for cursor.Next(ctx) {
		var item models.Appointment
		if err := cursor.Decode(&item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := cursor.Err(); err != nil {
		r.src.Invalidate(err)
		return nil, err
	}
	return items, nil
}

func (r *MongoRepository) UpdateStatus(ctx context.Context, id string, from, to models.Status) (models.Appointment, error) {
	col, err := r.collection(ctx)
	if err != nil {
		return models.Appointment{}, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"status": to}}

	var updated models.Appointment
	if err := col.FindOneAndUpdate(ctx, idFilter(id, from), update, opts).Decode(&updated); err != nil {
		r.src.Invalidate(err)
		return models.Appointment{}, err
	}
	return updated, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string, from models.Status) (bool, error) {
	col, err := r.collection(ctx)
	if err != nil {
		return false, err
	}
	res, err := col.DeleteOne(ctx, idFilter(id, from))
	if err != nil {
		r.src.Invalidate(err)
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func statusFilter(status models.Status) bson.M {
	return bson.M{"status": status}
}

// findOptions maps a ListOrder to its sort and limit.
func findOptions(order ListOrder) *options.FindOptions {
	opts := options.Find()
	switch order {
	case OrderSchedule:
		opts.SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}})
	case OrderRecent:
		opts.SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(RecentLimit)
	default:
		opts.SetSort(bson.D{{Key: "createdAt", Value: -1}})
	}
	return opts
}

func idFilter(id string, from models.Status) bson.M {
	filter := bson.M{"_id": id}
	if from != "" {
		filter["status"] = from
	}
	return filter
}
