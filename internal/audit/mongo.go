package audit

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/annel0/blockverse-mods/internal/vec"
)

// MongoConfig contains connection settings for the MongoDB audit log.
type MongoConfig struct {
	URI        string // e.g. mongodb://localhost:27017
	Database   string // e.g. blockverse
	Collection string // e.g. edits
}

// MongoRecorder implements Recorder on MongoDB backend.
type MongoRecorder struct {
	client     *mongo.Client
	collection *mongo.Collection
	ctxTimeout time.Duration
}

type mongoRecord struct {
	ID      string    `bson:"_id"`
	Time    time.Time `bson:"time"`
	Actor   string    `bson:"actor"`
	Op      string    `bson:"op"`
	Min     [3]int    `bson:"min"`
	Max     [3]int    `bson:"max"`
	Block   string    `bson:"block,omitempty"`
	From    string    `bson:"from,omitempty"`
	Changed int       `bson:"changed"`
	Error   string    `bson:"error,omitempty"`
}

// NewMongoRecorder establishes connection and returns recorder.
func NewMongoRecorder(ctx context.Context, cfg MongoConfig) (*MongoRecorder, error) {
	if cfg.URI == "" {
		cfg.URI = "mongodb://localhost:27017"
	}
	if cfg.Database == "" {
		cfg.Database = "blockverse"
	}
	if cfg.Collection == "" {
		cfg.Collection = "edits"
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("audit: mongo connect: %w", err)
	}
	// ping
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("audit: mongo ping: %w", err)
	}

	r := &MongoRecorder{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		ctxTimeout: 5 * time.Second,
	}
	if err := r.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return r, nil
}

func (r *MongoRecorder) ensureIndexes(ctx context.Context) error {
	timeIdx := mongo.IndexModel{
		Keys:    bson.D{{Key: "time", Value: -1}},
		Options: options.Index().SetName("time_desc"),
	}
	_, err := r.collection.Indexes().CreateOne(ctx, timeIdx)
	return err
}

// Record implements Recorder.
func (r *MongoRecorder) Record(ctx context.Context, rec Record) error {
	rec = normalize(rec)
	ctx, cancel := context.WithTimeout(ctx, r.ctxTimeout)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, mongoRecord{
		ID:      rec.ID.String(),
		Time:    rec.Time,
		Actor:   rec.Actor,
		Op:      rec.Op,
		Min:     [3]int{rec.Min.X, rec.Min.Y, rec.Min.Z},
		Max:     [3]int{rec.Max.X, rec.Max.Y, rec.Max.Z},
		Block:   rec.Block,
		From:    rec.From,
		Changed: rec.Changed,
		Error:   rec.Error,
	})
	if err != nil {
		return fmt.Errorf("audit: mongo insert: %w", err)
	}
	return nil
}

// Recent implements Recorder.
func (r *MongoRecorder) Recent(ctx context.Context, limit int) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, r.ctxTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "time", Value: -1}}).
		SetLimit(int64(normalizeLimit(limit)))
	cur, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("audit: mongo find: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoRecord
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("audit: mongo decode: %w", err)
	}

	out := make([]Record, 0, len(docs))
	for _, d := range docs {
		rec := Record{
			Time:    d.Time.UTC(),
			Actor:   d.Actor,
			Op:      d.Op,
			Min:     vec.Vec3{X: d.Min[0], Y: d.Min[1], Z: d.Min[2]},
			Max:     vec.Vec3{X: d.Max[0], Y: d.Max[1], Z: d.Max[2]},
			Block:   d.Block,
			From:    d.From,
			Changed: d.Changed,
			Error:   d.Error,
		}
		if err := rec.ID.UnmarshalText([]byte(d.ID)); err != nil {
			return nil, fmt.Errorf("audit: mongo id %q: %w", d.ID, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Close disconnects the client.
func (r *MongoRecorder) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), r.ctxTimeout)
	defer cancel()
	return r.client.Disconnect(ctx)
}
