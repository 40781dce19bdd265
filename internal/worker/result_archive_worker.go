package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-proctor/internal/config"
	"github.com/stemsi/exstem-proctor/internal/model"
)

const (
	BatchSize    = 50
	BatchTimeout = 2 * time.Second
	PollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
)

var archiveColumns = []string{
	"result_id", "user_name", "email", "correct", "total", "percentage",
	"warnings", "answers", "submitted_at",
}

// ResultArchiveWorker copies graded results from the Redis queue into the
// exam_results table in batches.
type ResultArchiveWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewResultArchiveWorker creates a new ResultArchiveWorker.
func NewResultArchiveWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *ResultArchiveWorker {
	return &ResultArchiveWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "result_archive_worker").Logger(),
	}
}

// Start drains the archive queue until ctx is cancelled, then flushes its buffer.
func (w *ResultArchiveWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ResultArchiveWorker started")

	buffer := make([]*model.ResultRecord, 0, BatchSize)
	lastFlushTime := time.Now()

	for {
		// 1. Flush on size or age
		if len(buffer) > 0 {
			if len(buffer) >= BatchSize || time.Since(lastFlushTime) >= BatchTimeout {
				w.flushSafe(ctx, buffer)
				buffer = buffer[:0]
				lastFlushTime = time.Now()
			}
		}

		// 2. Graceful shutdown
		select {
		case <-ctx.Done():
			w.shutdown(buffer)
			return
		default:
		}

		// 3. Fetch from Redis
		result, err := w.rdb.BLPop(ctx, PollTimeout, config.WorkerKey.PersistResultsQueue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				continue
			}
			w.log.Error().Err(err).Msg("Redis connection error, sleeping 3s")
			sleepCtx(ctx, 3*time.Second)
			continue
		}

		if len(result) < 2 {
			continue
		}

		var rec model.ResultRecord
		if err := json.Unmarshal([]byte(result[1]), &rec); err != nil {
			// Malformed payloads cannot succeed on retry.
			w.log.Error().Err(err).Str("data", result[1]).Msg("Discarding malformed JSON")
			continue
		}

		buffer = append(buffer, &rec)
	}
}

// flushSafe attempts bulk insert, then fallback insert, then requeue.
func (w *ResultArchiveWorker) flushSafe(ctx context.Context, batch []*model.ResultRecord) {
	if err := w.bulkInsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk insert failed, attempting row-by-row recovery")
		w.fallbackInsert(ctx, batch)
		return
	}
	w.log.Debug().Int("count", len(batch)).Msg("Archived results")
}

func (w *ResultArchiveWorker) bulkInsert(ctx context.Context, batch []*model.ResultRecord) error {
	rows := make([][]interface{}, 0, len(batch))
	for _, rec := range batch {
		row, err := archiveRow(rec)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	_, err := w.pool.CopyFrom(
		ctx,
		pgx.Identifier{"exam_results"},
		archiveColumns,
		pgx.CopyFromRows(rows),
	)
	return err
}

func (w *ResultArchiveWorker) fallbackInsert(ctx context.Context, batch []*model.ResultRecord) {
	requeueList := make([]*model.ResultRecord, 0)

	for _, rec := range batch {
		row, err := archiveRow(rec)
		if err != nil {
			w.log.Error().Err(err).Int("result_id", rec.ID).Msg("Dropping unencodable result")
			continue
		}

		// Rows already archived by a partially applied batch are skipped.
		_, err = w.pool.Exec(ctx,
			`INSERT INTO exam_results (result_id, user_name, email, correct, total, percentage, warnings, answers, submitted_at)
             VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8::jsonb, $9)
             ON CONFLICT (result_id, email, submitted_at) DO NOTHING`,
			row...,
		)
		if err != nil {
			w.log.Error().Err(err).Int("result_id", rec.ID).Msg("Insert failed, requeueing")
			requeueList = append(requeueList, rec)
		}
	}

	if len(requeueList) > 0 {
		w.requeue(ctx, requeueList)
	}
}

func (w *ResultArchiveWorker) requeue(ctx context.Context, items []*model.ResultRecord) {
	pipe := w.rdb.Pipeline()
	for _, rec := range items {
		data, _ := json.Marshal(rec)
		pipe.RPush(ctx, config.WorkerKey.PersistResultsQueue, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Msg("CRITICAL: Failed to requeue results to Redis. Archive rows lost; results.json is unaffected.")
		return
	}
	w.log.Info().Int("count", len(items)).Msg("Requeued failed results back to Redis")
	// Back off so a database outage does not spin the loop.
	sleepCtx(ctx, 2*time.Second)
}

func (w *ResultArchiveWorker) shutdown(buffer []*model.ResultRecord) {
	w.log.Info().Msg("Worker stopping, flushing remaining buffer...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if len(buffer) > 0 {
		w.flushSafe(shutdownCtx, buffer)
	}
}

// archiveRow orders a result's fields as archiveColumns.
func archiveRow(rec *model.ResultRecord) ([]interface{}, error) {
	warnings := rec.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	warningsJSON, err := json.Marshal(warnings)
	if err != nil {
		return nil, err
	}
	answers := rec.Answers
	if answers == nil {
		answers = []model.GradedAnswer{}
	}
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return nil, err
	}
	return []interface{}{
		rec.ID,
		rec.UserName,
		rec.Email,
		rec.Correct,
		rec.Total,
		rec.Percentage,
		string(warningsJSON),
		string(answersJSON),
		rec.SubmittedAt,
	}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
