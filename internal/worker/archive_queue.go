package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/exstem-proctor/internal/config"
	"github.com/stemsi/exstem-proctor/internal/model"
)

// ArchiveQueue pushes stored results onto the Redis list drained by
// ResultArchiveWorker.
type ArchiveQueue struct {
	rdb *redis.Client
}

func NewArchiveQueue(rdb *redis.Client) *ArchiveQueue {
	return &ArchiveQueue{rdb: rdb}
}

// Enqueue implements service.ResultArchiver.
func (q *ArchiveQueue) Enqueue(ctx context.Context, rec *model.ResultRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return q.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, data).Err()
}
