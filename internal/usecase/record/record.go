package record

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"kifu_editor/internal/domain/record"
	errs "kifu_editor/internal/errors"
)

type RecordStore interface {
	GenerateRecordKeys(ctx context.Context) (key string, publicKey string, err error)
	PutRecordToMongoDatabase(ctx context.Context, rec record.Record) error
	UpdateRecordSGF(ctx context.Context, key string, sgfText string, moves int, updatedAt time.Time) error
	GetRecordByKey(ctx context.Context, key string) (record.Record, error)
	GetRecordByPublicKey(ctx context.Context, publicKey string) (record.Record, error)
	ListRecords(ctx context.Context, pageNum int) (*record.ListResponse, error)
	DeleteRecord(ctx context.Context, key string) error

	SaveSGFToRedis(ctx context.Context, key string, sgfText string) error
	LoadSGFFromRedis(ctx context.Context, key string) (string, error)
	DeleteSGFFromRedis(ctx context.Context, key string) error
}

// FileSource walks a directory tree of .sgf files.
type FileSource interface {
	WalkSGF(root string, fn func(path string, text string) error) error
}

type RecordUseCase struct {
	store     RecordStore
	files     FileSource
	log       *zap.SugaredLogger
	appName   string
	boardSize int
	now       func() time.Time
}

func NewRecordUseCase(store RecordStore, files FileSource, log *zap.SugaredLogger, appName string, boardSize int) *RecordUseCase {
	return &RecordUseCase{
		store:     store,
		files:     files,
		log:       log,
		appName:   appName,
		boardSize: boardSize,
		now:       time.Now,
	}
}

func (r *RecordUseCase) CreateRecord(ctx context.Context, req record.CreateRecordRequest) (record.CreateRecordResponse, error) {
	if req.BoardSize == 0 {
		req.BoardSize = r.boardSize
	}
	if req.BoardSize < 1 || req.BoardSize > maxBoardSize {
		return record.CreateRecordResponse{}, fmt.Errorf("board size %d: %w", req.BoardSize, errs.ErrOutOfRange)
	}
	now := r.now()
	doc := NewDocument(req, r.appName, now)
	return r.put(ctx, doc, "", now)
}

// ImportSGF stores SGF text as a new record. The text must decode, it is stored in canonical form.
func (r *RecordUseCase) ImportSGF(ctx context.Context, source string, text string) (record.CreateRecordResponse, error) {
	doc, err := Decode(text)
	if err != nil {
		return record.CreateRecordResponse{}, err
	}
	return r.put(ctx, doc, source, r.now())
}

func (r *RecordUseCase) put(ctx context.Context, doc *Document, source string, now time.Time) (record.CreateRecordResponse, error) {
	key, publicKey, err := r.store.GenerateRecordKeys(ctx)
	if err != nil {
		r.log.Errorf("failed to generate record keys: %v", err)
		return record.CreateRecordResponse{}, errs.ErrCreateRecordFailed
	}
	sgfText := Encode(doc)

	rec := record.Record{
		Key:         key,
		PublicKey:   publicKey,
		Title:       doc.Title(),
		BoardSize:   doc.Sequence.Size(),
		PlayerBlack: doc.Header.Value("PB"),
		PlayerWhite: doc.Header.Value("PW"),
		Komi:        doc.Komi(),
		Moves:       doc.Sequence.Len(),
		SGF:         sgfText,
		Source:      source,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if rec.Title == "" && source != "" {
		rec.Title = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}

	if err := r.store.PutRecordToMongoDatabase(ctx, rec); err != nil {
		r.log.Errorf("failed to put record %s: %v", key, err)
		return record.CreateRecordResponse{}, errs.ErrCreateRecordFailed
	}
	r.cache(ctx, key, sgfText)

	return record.CreateRecordResponse{Key: key, PublicKey: publicKey}, nil
}

// ImportDirectory walks dir and imports every .sgf file. A broken file is reported, not fatal.
func (r *RecordUseCase) ImportDirectory(ctx context.Context, dir string) (*record.ImportResponse, error) {
	resp := &record.ImportResponse{}
	err := r.files.WalkSGF(dir, func(path string, text string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		created, err := r.ImportSGF(ctx, path, text)
		if err != nil {
			if errors.Is(err, errs.ErrCreateRecordFailed) {
				return err
			}
			r.log.Warnf("skip %s: %v", path, err)
			resp.Failed = append(resp.Failed, path)
			return nil
		}
		resp.Imported = append(resp.Imported, created)
		return nil
	})
	if err != nil {
		return resp, err
	}
	r.log.Infof("imported %d records from %s, %d failed", len(resp.Imported), dir, len(resp.Failed))
	return resp, nil
}

// GetRecord returns the record with its current SGF, the cache wins over the stored copy.
func (r *RecordUseCase) GetRecord(ctx context.Context, key string) (record.Record, error) {
	rec, err := r.store.GetRecordByKey(ctx, key)
	if err != nil {
		return record.Record{}, err
	}
	if cached, err := r.store.LoadSGFFromRedis(ctx, key); err == nil && cached != "" {
		rec.SGF = cached
	}
	return rec, nil
}

func (r *RecordUseCase) GetRecordByPublicKey(ctx context.Context, publicKey string) (record.Record, error) {
	rec, err := r.store.GetRecordByPublicKey(ctx, publicKey)
	if err != nil {
		return record.Record{}, err
	}
	if cached, err := r.store.LoadSGFFromRedis(ctx, rec.Key); err == nil && cached != "" {
		rec.SGF = cached
	}
	return rec, nil
}

// OpenDocument loads and decodes the record behind key.
func (r *RecordUseCase) OpenDocument(ctx context.Context, key string) (*Document, error) {
	rec, err := r.GetRecord(ctx, key)
	if err != nil {
		return nil, err
	}
	doc, err := Decode(rec.SGF)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", key, err)
	}
	return doc, nil
}

// SaveDocument encodes doc and writes it to the database and the cache.
func (r *RecordUseCase) SaveDocument(ctx context.Context, key string, doc *Document) (string, error) {
	doc.Forget()
	sgfText := Encode(doc)
	if err := r.store.UpdateRecordSGF(ctx, key, sgfText, doc.Sequence.Len(), r.now()); err != nil {
		return "", err
	}
	r.cache(ctx, key, sgfText)
	return sgfText, nil
}

func (r *RecordUseCase) ListRecords(ctx context.Context, pageNum int) (*record.ListResponse, error) {
	if pageNum < 1 {
		pageNum = 1
	}
	return r.store.ListRecords(ctx, pageNum)
}

func (r *RecordUseCase) DeleteRecord(ctx context.Context, key string) error {
	if err := r.store.DeleteRecord(ctx, key); err != nil {
		return err
	}
	if err := r.store.DeleteSGFFromRedis(ctx, key); err != nil {
		r.log.Warnf("failed to drop cached sgf of %s: %v", key, err)
	}
	return nil
}

func (r *RecordUseCase) cache(ctx context.Context, key string, sgfText string) {
	// кэш не обязателен, база остается источником правды
	if err := r.store.SaveSGFToRedis(ctx, key, sgfText); err != nil {
		r.log.Warnf("failed to cache sgf of %s: %v", key, err)
	}
}
