package store

import (
	"context"
	"errors"

	"dockcall-backend/infra"
	"dockcall-backend/model"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collDrivers        = "drivers"
	collActiveCalls    = "called_drivers"
	collFinalizedCalls = "finalized_calls"
	collActionHistory  = "action_history"
)

// MongoStore is the MongoDB-backed Store.
type MongoStore struct {
	logger  zerolog.Logger
	mongoDB *infra.MongoDB
}

func NewMongoStore(logger zerolog.Logger, mongoDB *infra.MongoDB) *MongoStore {
	return &MongoStore{
		logger:  logger.With().Str("module", "mongo_store").Logger(),
		mongoDB: mongoDB,
	}
}

func (s *MongoStore) ListDrivers(ctx context.Context) ([]model.Driver, error) {
	coll := s.mongoDB.GetCollection(collDrivers)

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var drivers []model.Driver
	if err := cursor.All(ctx, &drivers); err != nil {
		return nil, err
	}
	return drivers, nil
}

func (s *MongoStore) GetDriver(ctx context.Context, id string) (*model.Driver, error) {
	coll := s.mongoDB.GetCollection(collDrivers)

	var driver model.Driver
	err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&driver)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

func (s *MongoStore) UpsertDriver(ctx context.Context, driver *model.Driver) error {
	coll := s.mongoDB.GetCollection(collDrivers)

	opts := options.Replace().SetUpsert(true)
	_, err := coll.ReplaceOne(ctx, bson.M{"_id": driver.ID}, driver, opts)
	if err != nil {
		s.logger.Error().Err(err).Str("driver_id", driver.ID).Msg("failed to upsert driver")
	}
	return err
}

func (s *MongoStore) DeleteDriver(ctx context.Context, id string) error {
	coll := s.mongoDB.GetCollection(collDrivers)

	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) CountDrivers(ctx context.Context) (int64, error) {
	return s.mongoDB.GetCollection(collDrivers).CountDocuments(ctx, bson.M{})
}

func (s *MongoStore) ListActiveCalls(ctx context.Context) ([]model.Call, error) {
	return s.listCalls(ctx, collActiveCalls, bson.D{{Key: "called_at", Value: -1}})
}

func (s *MongoStore) GetActiveCall(ctx context.Context, callID string) (*model.Call, error) {
	return s.getCall(ctx, collActiveCalls, callID)
}

func (s *MongoStore) FindActiveCallsByDriver(ctx context.Context, driverID string) ([]model.Call, error) {
	return s.findCallsByDriver(ctx, collActiveCalls, driverID)
}

func (s *MongoStore) InsertActiveCall(ctx context.Context, call *model.Call) error {
	_, err := s.mongoDB.GetCollection(collActiveCalls).InsertOne(ctx, call)
	return err
}

func (s *MongoStore) DeleteActiveCall(ctx context.Context, callID string) error {
	return s.deleteCall(ctx, collActiveCalls, callID)
}

func (s *MongoStore) DeleteActiveCallsByDriver(ctx context.Context, driverID string) error {
	_, err := s.mongoDB.GetCollection(collActiveCalls).DeleteMany(ctx, bson.M{"driver_id": driverID})
	return err
}

func (s *MongoStore) ListFinalizedCalls(ctx context.Context) ([]model.Call, error) {
	return s.listCalls(ctx, collFinalizedCalls, bson.D{{Key: "finalized_at", Value: -1}})
}

func (s *MongoStore) GetFinalizedCall(ctx context.Context, callID string) (*model.Call, error) {
	return s.getCall(ctx, collFinalizedCalls, callID)
}

func (s *MongoStore) FindFinalizedCallsByDriver(ctx context.Context, driverID string) ([]model.Call, error) {
	return s.findCallsByDriver(ctx, collFinalizedCalls, driverID)
}

func (s *MongoStore) InsertFinalizedCall(ctx context.Context, call *model.Call) error {
	_, err := s.mongoDB.GetCollection(collFinalizedCalls).InsertOne(ctx, call)
	return err
}

func (s *MongoStore) DeleteFinalizedCall(ctx context.Context, callID string) error {
	return s.deleteCall(ctx, collFinalizedCalls, callID)
}

func (s *MongoStore) DeleteFinalizedCallsByDriver(ctx context.Context, driverID string) error {
	_, err := s.mongoDB.GetCollection(collFinalizedCalls).DeleteMany(ctx, bson.M{"driver_id": driverID})
	return err
}

func (s *MongoStore) CountFinalizedCalls(ctx context.Context) (int64, error) {
	return s.mongoDB.GetCollection(collFinalizedCalls).CountDocuments(ctx, bson.M{})
}

func (s *MongoStore) InsertActionLog(ctx context.Context, entry *model.ActionLogEntry) error {
	_, err := s.mongoDB.GetCollection(collActionHistory).InsertOne(ctx, entry)
	if err != nil {
		s.logger.Error().Err(err).Str("action", entry.Action).Msg("failed to insert action log entry")
	}
	return err
}

func (s *MongoStore) ListActionLogs(ctx context.Context, limit int) ([]model.ActionLogEntry, error) {
	coll := s.mongoDB.GetCollection(collActionHistory)

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []model.ActionLogEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// TrimActionLogs deletes everything older than the newest max entries.
func (s *MongoStore) TrimActionLogs(ctx context.Context, max int) error {
	coll := s.mongoDB.GetCollection(collActionHistory)

	count, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if count <= int64(max) {
		return nil
	}

	// Collect the overflow ids explicitly; a timestamp boundary would
	// spare entries sharing the boundary instant and leave the history
	// above the cap.
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetSkip(int64(max)).
		SetProjection(bson.M{"_id": 1})
	cursor, err := coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var overflow []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &overflow); err != nil {
		return err
	}

	ids := make([]string, 0, len(overflow))
	for _, doc := range overflow {
		ids = append(ids, doc.ID)
	}

	_, err = coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return err
}

func (s *MongoStore) listCalls(ctx context.Context, collName string, sortSpec bson.D) ([]model.Call, error) {
	coll := s.mongoDB.GetCollection(collName)

	cursor, err := coll.Find(ctx, bson.M{}, options.Find().SetSort(sortSpec))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var calls []model.Call
	if err := cursor.All(ctx, &calls); err != nil {
		return nil, err
	}
	return calls, nil
}

func (s *MongoStore) findCallsByDriver(ctx context.Context, collName, driverID string) ([]model.Call, error) {
	coll := s.mongoDB.GetCollection(collName)

	cursor, err := coll.Find(ctx, bson.M{"driver_id": driverID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var calls []model.Call
	if err := cursor.All(ctx, &calls); err != nil {
		return nil, err
	}
	return calls, nil
}

func (s *MongoStore) getCall(ctx context.Context, collName, callID string) (*model.Call, error) {
	var call model.Call
	err := s.mongoDB.GetCollection(collName).FindOne(ctx, bson.M{"_id": callID}).Decode(&call)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &call, nil
}

func (s *MongoStore) deleteCall(ctx context.Context, collName, callID string) error {
	res, err := s.mongoDB.GetCollection(collName).DeleteOne(ctx, bson.M{"_id": callID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
