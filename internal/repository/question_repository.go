package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-proctor/internal/model"
)

// QuestionsFile is the question bank document name inside the data dir.
const QuestionsFile = "questions.json"

// QuestionSeqFile holds the largest question ID ever issued, so IDs freed by
// deletes stay retired across restarts.
const QuestionSeqFile = "questions.seq"

// QuestionRepository handles question bank data access.
type QuestionRepository struct {
	doc *jsonDocument[model.Question]

	// highWater is the largest ID seen or issued, persisted in seqPath.
	idMu      sync.Mutex
	highWater int
	seqPath   string
	log       zerolog.Logger
}

// NewQuestionRepository opens (and seeds, if missing) the question bank.
func NewQuestionRepository(dataDir string, seed []model.Question, log zerolog.Logger) (*QuestionRepository, error) {
	doc := newJSONDocument[model.Question](filepath.Join(dataDir, QuestionsFile), log)
	if err := doc.ensure(seed); err != nil {
		return nil, err
	}

	r := &QuestionRepository{
		doc:     doc,
		seqPath: filepath.Join(dataDir, QuestionSeqFile),
		log:     log.With().Str("component", "question_repository").Logger(),
	}
	r.highWater = r.loadHighWater()
	r.observe(doc.read())
	return r, nil
}

// List retrieves the full bank in stored order.
func (r *QuestionRepository) List(ctx context.Context) ([]model.Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	questions := r.doc.read()
	r.observe(questions)
	return questions, nil
}

// GetByID retrieves a single question.
func (r *QuestionRepository) GetByID(ctx context.Context, id int) (*model.Question, error) {
	questions, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range questions {
		if questions[i].ID == id {
			return &questions[i], nil
		}
	}
	return nil, fmt.Errorf("question %d: %w", id, ErrNotFound)
}

// Create appends a question, assigning the next ID.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.doc.update(func(items []model.Question) ([]model.Question, error) {
		id, err := r.nextID(items)
		if err != nil {
			return nil, err
		}
		q.ID = id
		return append(items, *q), nil
	})
}

// Update replaces the question with q.ID.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.doc.update(func(items []model.Question) ([]model.Question, error) {
		for i := range items {
			if items[i].ID == q.ID {
				items[i] = *q
				return items, nil
			}
		}
		return nil, fmt.Errorf("question %d: %w", q.ID, ErrNotFound)
	})
}

// Delete removes a question and returns it.
func (r *QuestionRepository) Delete(ctx context.Context, id int) (*model.Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var removed *model.Question
	err := r.doc.update(func(items []model.Question) ([]model.Question, error) {
		for i := range items {
			if items[i].ID == id {
				q := items[i]
				removed = &q
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("question %d: %w", id, ErrNotFound)
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// nextID reserves the next ID and records it before the question is written,
// so a crash between the two burns an ID instead of reusing one.
func (r *QuestionRepository) nextID(items []model.Question) (int, error) {
	r.idMu.Lock()
	defer r.idMu.Unlock()

	next := r.highWater
	for _, q := range items {
		if q.ID > next {
			next = q.ID
		}
	}
	next++

	if err := os.WriteFile(r.seqPath, []byte(strconv.Itoa(next)+"\n"), 0o644); err != nil {
		return 0, fmt.Errorf("persist question id: %w", err)
	}
	r.highWater = next
	return next, nil
}

// loadHighWater reads the sequence file. A missing or unreadable file falls
// back to the IDs present in the bank.
func (r *QuestionRepository) loadHighWater() int {
	raw, err := os.ReadFile(r.seqPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			r.log.Warn().Err(err).Msg("Error reading question sequence file")
		}
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil || n < 0 {
		r.log.Warn().Str("content", string(raw)).Msg("Ignoring malformed question sequence file")
		return 0
	}
	return n
}

func (r *QuestionRepository) observe(items []model.Question) {
	r.idMu.Lock()
	defer r.idMu.Unlock()

	for _, q := range items {
		if q.ID > r.highWater {
			r.highWater = q.ID
		}
	}
}
