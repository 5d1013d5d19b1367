package repo

import (
	"context"
	"crypto/md5"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"kifu_editor/internal/bootstrap"
	"kifu_editor/internal/domain/record"
	errs "kifu_editor/internal/errors"
)

const (
	recordsCollection = "records"
	sgfKeyPrefix      = "sgf:"
	opTimeout         = 5 * time.Second
)

type RecordRepository struct {
	cfg   bootstrap.Config
	log   *zap.SugaredLogger
	redis *redis.Client
	mongo *mongo.Database
}

func NewRecordRepository(cfg bootstrap.Config, log *zap.SugaredLogger, redis *redis.Client, mongo *mongo.Database) *RecordRepository {
	return &RecordRepository{
		cfg:   cfg,
		log:   log,
		redis: redis,
		mongo: mongo,
	}
}

func (g *RecordRepository) GenerateRecordKeys(ctx context.Context) (key string, publicKey string, err error) {
	return generateRecordKeys(ctx, g.CheckPublicKeyIsUniq)
}

// кодов всего 100000, поэтому число попыток ограничено
const maxKeyAttempts = 10

func generateRecordKeys(ctx context.Context, isUniq func(context.Context, string) (bool, error)) (string, string, error) {
	for range maxKeyAttempts {
		if err := ctx.Err(); err != nil {
			return "", "", err
		}
		key := uuid.New().String()
		publicKey := generateHash(key)

		uniq, err := isUniq(ctx, publicKey)
		if err != nil {
			return "", "", fmt.Errorf("check public key %s: %w", publicKey, err)
		}
		if uniq {
			return key, publicKey, nil
		}
		// коллизия: берем новый секретный ключ
	}
	return "", "", fmt.Errorf("no free public key after %d attempts: %w", maxKeyAttempts, errs.ErrInternal)
}

// generateHash сворачивает ключ в пятизначный код для коротких ссылок
func generateHash(s string) string {
	h := md5.New()
	h.Write([]byte(s))
	hashBytes := h.Sum(nil)
	number := binary.BigEndian.Uint32(hashBytes[:4])
	code := number % 100000
	return fmt.Sprintf("%05d", code)
}

func (g *RecordRepository) CheckPublicKeyIsUniq(ctx context.Context, publicKey string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	collection := g.mongo.Collection(recordsCollection)
	filter := bson.M{
		"public_key": publicKey,
	}
	err := collection.FindOne(ctx, filter).Err()
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return true, nil
	case err != nil:
		return false, err
	}
	return false, nil
}

func (g *RecordRepository) PutRecordToMongoDatabase(ctx context.Context, rec record.Record) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	collection := g.mongo.Collection(recordsCollection)

	_, err := collection.InsertOne(ctx, rec)
	if err != nil {
		g.log.Errorf("failed to insert record to database: %v", err)
		return err
	}

	g.log.Infof("record inserted successfully with key: %s", rec.Key)
	return nil
}

func (g *RecordRepository) UpdateRecordSGF(ctx context.Context, key string, sgfText string, moves int, updatedAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	collection := g.mongo.Collection(recordsCollection)
	filter := bson.M{"key": key}
	update := bson.M{
		"$set": bson.M{
			"sgf":        sgfText,
			"moves":      moves,
			"updated_at": updatedAt,
		},
	}

	res, err := collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(false))
	if err != nil {
		g.log.Errorf("failed to update record %s: %v", key, err)
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("record %s: %w", key, errs.ErrRecordNotFound)
	}
	return nil
}

func (g *RecordRepository) GetRecordByKey(ctx context.Context, key string) (record.Record, error) {
	return g.findOne(ctx, bson.M{"key": key})
}

func (g *RecordRepository) GetRecordByPublicKey(ctx context.Context, publicKey string) (record.Record, error) {
	return g.findOne(ctx, bson.M{"public_key": publicKey})
}

func (g *RecordRepository) findOne(ctx context.Context, filter bson.M) (record.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var result record.Record
	err := g.mongo.Collection(recordsCollection).FindOne(ctx, filter).Decode(&result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return record.Record{}, errs.ErrRecordNotFound
	} else if err != nil {
		g.log.Error(err)
		return record.Record{}, err
	}
	return result, nil
}

// ListRecords отдает страницу записей, новые сверху. SGF в список не попадает.
func (g *RecordRepository) ListRecords(ctx context.Context, pageNum int) (*record.ListResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	pageLimit := g.cfg.PageLimitRecords
	if pageLimit <= 0 {
		pageLimit = 20
	}
	collection := g.mongo.Collection(recordsCollection)

	total, err := collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetSkip(int64((pageNum - 1) * pageLimit)).
		SetLimit(int64(pageLimit)).
		SetProjection(bson.M{"sgf": 0})

	cursor, err := collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := []record.Record{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}

	return &record.ListResponse{
		PageNum:    pageNum,
		TotalPages: int((total + int64(pageLimit) - 1) / int64(pageLimit)),
		Records:    records,
	}, nil
}

func (g *RecordRepository) DeleteRecord(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := g.mongo.Collection(recordsCollection).DeleteOne(ctx, bson.M{"key": key})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("record %s: %w", key, errs.ErrRecordNotFound)
	}
	g.log.Infof("record %s deleted", key)
	return nil
}

func (g *RecordRepository) SaveSGFToRedis(ctx context.Context, key string, sgfText string) error {
	return g.redis.Set(ctx, sgfKeyPrefix+key, sgfText, 0).Err()
}

func (g *RecordRepository) LoadSGFFromRedis(ctx context.Context, key string) (string, error) {
	return g.redis.Get(ctx, sgfKeyPrefix+key).Result()
}

func (g *RecordRepository) DeleteSGFFromRedis(ctx context.Context, key string) error {
	return g.redis.Del(ctx, sgfKeyPrefix+key).Err()
}
