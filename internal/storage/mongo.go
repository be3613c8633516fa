package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo stores one MongoDB collection per entity collection. Documents keep
// the JSON body as a native subdocument under "doc".
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

type mongoDoc struct {
	ID  string   `bson:"_id"`
	Seq int64    `bson:"seq"`
	Doc bson.Raw `bson:"doc"`
}

func OpenMongo(ctx context.Context, uri, database string, timeout time.Duration) (*Mongo, error) {
	opts := options.Client().ApplyURI(uri).SetServerSelectionTimeout(timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &Mongo{client: client, db: client.Database(database)}, nil
}

func (m *Mongo) ReadAll(ctx context.Context, collection string) ([]Record, error) {
	cur, err := m.db.Collection(collection).Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []Record
	for cur.Next(ctx) {
		var d mongoDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		data, err := bson.MarshalExtJSON(d.Doc, false, false)
		if err != nil {
			return nil, fmt.Errorf("doc %s: %w", d.ID, err)
		}
		out = append(out, Record{ID: d.ID, Data: data})
	}
	return out, cur.Err()
}

func (m *Mongo) ReplaceAll(ctx context.Context, collection string, records []Record) error {
	coll := m.db.Collection(collection)
	docs := make([]any, 0, len(records))
	base := time.Now().UnixNano()
	for i, r := range records {
		doc, err := toBSON(r)
		if err != nil {
			return err
		}
		docs = append(docs, bson.D{
			{Key: "_id", Value: r.ID},
			{Key: "seq", Value: base + int64(i)},
			{Key: "doc", Value: doc},
		})
	}
	if _, err := coll.DeleteMany(ctx, bson.D{}); err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}
	_, err := coll.InsertMany(ctx, docs)
	return err
}

func (m *Mongo) Upsert(ctx context.Context, collection string, rec Record) error {
	doc, err := toBSON(rec)
	if err != nil {
		return err
	}
	update := bson.D{
		{Key: "$set", Value: bson.D{{Key: "doc", Value: doc}}},
		{Key: "$setOnInsert", Value: bson.D{{Key: "seq", Value: time.Now().UnixNano()}}},
	}
	_, err = m.db.Collection(collection).UpdateOne(ctx, bson.D{{Key: "_id", Value: rec.ID}}, update,
		options.Update().SetUpsert(true))
	return err
}

func (m *Mongo) Delete(ctx context.Context, collection, id string) (bool, error) {
	res, err := m.db.Collection(collection).DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (m *Mongo) Close() error { return m.client.Disconnect(context.Background()) }

func toBSON(r Record) (bson.D, error) {
	var doc bson.D
	if err := bson.UnmarshalExtJSON(r.Data, false, &doc); err != nil {
		return nil, fmt.Errorf("doc %s: %w", r.ID, err)
	}
	return doc, nil
}
