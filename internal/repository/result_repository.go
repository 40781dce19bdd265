package repository

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-proctor/internal/model"
)

// ResultsFile is the results document name inside the data dir.
const ResultsFile = "results.json"

// ResultRepository handles submitted attempts. Records are append-only.
type ResultRepository struct {
	doc *jsonDocument[model.ResultRecord]
}

// NewResultRepository opens (and creates, if missing) the results document.
func NewResultRepository(dataDir string, log zerolog.Logger) (*ResultRepository, error) {
	doc := newJSONDocument[model.ResultRecord](filepath.Join(dataDir, ResultsFile), log)
	if err := doc.ensure(nil); err != nil {
		return nil, err
	}
	return &ResultRepository{doc: doc}, nil
}

// List retrieves all results in submission order.
func (r *ResultRepository) List(ctx context.Context) ([]model.ResultRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.doc.read(), nil
}

// Append stores rec with ID set to the new collection length.
func (r *ResultRepository) Append(ctx context.Context, rec *model.ResultRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.doc.update(func(items []model.ResultRecord) ([]model.ResultRecord, error) {
		rec.ID = len(items) + 1
		return append(items, *rec), nil
	})
}
