package db

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const AppointmentsCollection = "appointments"

var ErrClosed = errors.New("mongo handle closed")

// Handle owns a single mongo client. It connects on first use, is reused
// across requests and reconnects on the next call after Invalidate.
type Handle struct {
	uri    string
	dbName string

	mu     sync.Mutex
	client *mongo.Client
	closed bool
}

func NewHandle(uri, dbName string) *Handle {
	return &Handle{uri: uri, dbName: dbName}
}

func (h *Handle) Database(ctx context.Context) (*mongo.Database, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrClosed
	}
	if h.client != nil {
		return h.client.Database(h.dbName), nil
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(h.uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	h.client = client
	return client.Database(h.dbName), nil
}

func (h *Handle) Collection(ctx context.Context, name string) (*mongo.Collection, error) {
	database, err := h.Database(ctx)
	if err != nil {
		return nil, err
	}
	return database.Collection(name), nil
}

// Invalidate drops the current client when err is a network error.
func (h *Handle) Invalidate(err error) {
	if err == nil || !mongo.IsNetworkError(err) {
		return
	}
	h.mu.Lock()
	client := h.client
	h.client = nil
	h.mu.Unlock()

	if client != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(ctx)
		}()
	}
}

func (h *Handle) Close(ctx context.Context) error {
	h.mu.Lock()
	client := h.client
	h.client = nil
	h.closed = true
	h.mu.Unlock()

	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

func EnsureIndexes(ctx context.Context, h *Handle) error {
	indexTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	col, err := h.Collection(indexTimeout, AppointmentsCollection)
	if err != nil {
		return err
	}

	_, err = col.Indexes().CreateMany(indexTimeout, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "date", Value: 1}, {Key: "time", Value: 1}},
		},
	})
	return err
}
