package service

import (
	"context"
	"errors"
	"math/rand/v2"

	"github.com/stemsi/exstem-proctor/internal/model"
	"github.com/stemsi/exstem-proctor/internal/repository"
)

// QuestionService handles question bank business logic.
type QuestionService struct {
	questionRepo *repository.QuestionRepository
	limit        int
}

// NewQuestionService creates a new QuestionService. limit caps the number of
// questions served per exam session; zero or less serves the whole bank.
func NewQuestionService(questionRepo *repository.QuestionRepository, limit int) *QuestionService {
	return &QuestionService{questionRepo: questionRepo, limit: limit}
}

// List retrieves the full bank, answers included. Admin only.
func (s *QuestionService) List(ctx context.Context) ([]model.Question, error) {
	return s.questionRepo.List(ctx)
}

// ListForExam returns the sanitized question set for one exam session: the
// whole bank in stored order, or a shuffled subset when a limit is set.
func (s *QuestionService) ListForExam(ctx context.Context) ([]model.SanitizedQuestion, error) {
	questions, err := s.questionRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.limit > 0 {
		questions = Sample(questions, s.limit)
	}

	sanitized := make([]model.SanitizedQuestion, len(questions))
	for i, q := range questions {
		sanitized[i] = q.Sanitize()
	}
	return sanitized, nil
}

// Create adds a question to the bank.
func (s *QuestionService) Create(ctx context.Context, req model.QuestionRequest) (*model.Question, error) {
	q := req.ToQuestion(0)
	if err := s.questionRepo.Create(ctx, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// Update replaces the question with the given ID.
func (s *QuestionService) Update(ctx context.Context, id int, req model.QuestionRequest) (*model.Question, error) {
	q := req.ToQuestion(id)
	if err := s.questionRepo.Update(ctx, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// Exists reports whether a question with the given ID is in the bank.
func (s *QuestionService) Exists(ctx context.Context, id int) (bool, error) {
	_, err := s.questionRepo.GetByID(ctx, id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// Delete removes a question and returns it.
func (s *QuestionService) Delete(ctx context.Context, id int) (*model.Question, error) {
	return s.questionRepo.Delete(ctx, id)
}

// Import appends questions in order, returning how many were stored before
// the first failure.
func (s *QuestionService) Import(ctx context.Context, reqs []model.QuestionRequest) (int, error) {
	for i, req := range reqs {
		if _, err := s.Create(ctx, req); err != nil {
			return i, err
		}
	}
	return len(reqs), nil
}

// Sample shuffles a copy of questions and keeps at most n of them.
func Sample(questions []model.Question, n int) []model.Question {
	shuffled := make([]model.Question, len(questions))
	copy(shuffled, questions)

	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if n <= 0 || n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
