package book

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoRepo stores books as documents of a MongoDB collection. Identifiers
// are ObjectIDs exposed as their hex string.
type MongoRepo struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewMongoRepo(coll *mongo.Collection, timeout time.Duration) *MongoRepo {
	return &MongoRepo{coll: coll, timeout: timeout}
}

func (r *MongoRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *MongoRepo) Insert(ctx context.Context, doc Document) (Document, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	out := doc.withoutID()
	oid := primitive.NewObjectID()
	record := bson.M(out.Clone())
	record[FieldID] = oid

	if _, err := r.coll.InsertOne(ctx, record); err != nil {
		return nil, fmt.Errorf("insert book: %w", err)
	}
	out[FieldID] = oid.Hex()
	return out, nil
}

func (r *MongoRepo) Find(ctx context.Context, f Filter) ([]Document, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	cursor, err := r.coll.Find(ctx, mongoFilter(f))
	if err != nil {
		return nil, fmt.Errorf("find books: %w", err)
	}
	defer cursor.Close(ctx)

	var records []bson.M
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode books: %w", err)
	}
	out := make([]Document, 0, len(records))
	for _, rec := range records {
		out = append(out, fromBSON(rec))
	}
	return out, nil
}

func (r *MongoRepo) FindOne(ctx context.Context, f Filter) (Document, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return decodeSingle(r.coll.FindOne(ctx, mongoFilter(f)))
}

func (r *MongoRepo) UpdateByID(ctx context.Context, id string, patch Document) (Document, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.update(ctx, bson.M{FieldID: oid}, patch)
}

func (r *MongoRepo) UpdateOne(ctx context.Context, f Filter, patch Document) (Document, error) {
	return r.update(ctx, mongoFilter(f), patch)
}

func (r *MongoRepo) update(ctx context.Context, filter bson.M, patch Document) (Document, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	set := patch.withoutID()
	if len(set) == 0 {
		// $set rejects an empty document; an empty patch leaves the book as is.
		return decodeSingle(r.coll.FindOne(ctx, filter))
	}
	res := r.coll.FindOneAndUpdate(ctx, filter,
		bson.M{"$set": bson.M(set)},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	return decodeSingle(res)
}

func (r *MongoRepo) DeleteByID(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err = decodeSingle(r.coll.FindOneAndDelete(ctx, bson.M{FieldID: oid}))
	return err
}

func (r *MongoRepo) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.coll.Database().Client().Ping(ctx, readpref.Primary())
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid book id %q: %w", id, err)
	}
	return oid, nil
}

func decodeSingle(res *mongo.SingleResult) (Document, error) {
	var rec bson.M
	if err := res.Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return fromBSON(rec), nil
}

func mongoFilter(f Filter) bson.M {
	if f.IsZero() {
		return bson.M{}
	}
	if f.Contains() {
		return bson.M{f.Field(): bson.M{"$all": bson.A{f.Value()}}}
	}
	return bson.M{f.Field(): f.Value()}
}

// fromBSON converts a decoded record into plain Go values that encode
// naturally as JSON.
func fromBSON(rec bson.M) Document {
	out := make(Document, len(rec))
	for k, v := range rec {
		out[k] = plainValue(v)
	}
	return out
}

func plainValue(v any) any {
	switch val := v.(type) {
	case primitive.ObjectID:
		return val.Hex()
	case primitive.DateTime:
		return val.Time().UTC()
	case primitive.Decimal128:
		return val.String()
	case bson.M:
		return map[string]any(fromBSON(val))
	case bson.D:
		return map[string]any(fromBSON(val.Map()))
	case bson.A:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = plainValue(item)
		}
		return out
	}
	return v
}
