package storage

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"iitb-internet/internal/model"
)

type Mongo struct {
	client *mongo.Client
	col    *mongo.Collection
}

func NewMongo(ctx context.Context, uri, db, col string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	collection := client.Database(db).Collection(col)
	_, err = collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "time", Value: -1}},
	})
	if err != nil {
		client.Disconnect(ctx)
		return nil, errors.Wrap(err, "create time index")
	}

	return &Mongo{client: client, col: collection}, nil
}

func (m *Mongo) Record(ctx context.Context, e model.Event) error {
	_, err := m.col.InsertOne(ctx, e)
	return err
}

func (m *Mongo) Recent(ctx context.Context, n int64) ([]model.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "time", Value: -1}}).SetLimit(n)
	cursor, err := m.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []model.Event
	err = cursor.All(ctx, &events)
	return events, err
}

func (m *Mongo) Close() {
	m.client.Disconnect(context.Background())
}
