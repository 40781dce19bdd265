package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-proctor/internal/model"
	"github.com/stemsi/exstem-proctor/internal/repository"
)

// ErrInvalidSubmission is returned for a payload missing identity or answers.
var ErrInvalidSubmission = errors.New("invalid submission payload")

// SubmittedMessage is echoed to the exam-taker on success.
const SubmittedMessage = "Exam submitted successfully"

// ResultArchiver receives every stored result for secondary persistence.
type ResultArchiver interface {
	Enqueue(ctx context.Context, rec *model.ResultRecord) error
}

// ScoringService grades submissions and persists results.
type ScoringService struct {
	questionRepo  *repository.QuestionRepository
	resultRepo    *repository.ResultRepository
	proctor       *ProctorService
	archiver      ResultArchiver
	reviewEnabled bool
	now           func() time.Time
	log           zerolog.Logger
}

// NewScoringService creates a new ScoringService. proctor and archiver may be nil.
func NewScoringService(
	questionRepo *repository.QuestionRepository,
	resultRepo *repository.ResultRepository,
	proctor *ProctorService,
	archiver ResultArchiver,
	reviewEnabled bool,
	log zerolog.Logger,
) *ScoringService {
	return &ScoringService{
		questionRepo:  questionRepo,
		resultRepo:    resultRepo,
		proctor:       proctor,
		archiver:      archiver,
		reviewEnabled: reviewEnabled,
		now:           time.Now,
		log:           log.With().Str("component", "scoring_service").Logger(),
	}
}

// Submit grades req against the current bank, stores the result and returns
// the score. Total is always the current bank size, so a partial answer set
// can only lower the score.
func (s *ScoringService) Submit(ctx context.Context, req model.SubmitRequest) (*model.SubmitResult, error) {
	if strings.TrimSpace(req.UserName) == "" || strings.TrimSpace(req.Email) == "" || req.Answers == nil {
		return nil, ErrInvalidSubmission
	}

	questions, err := s.questionRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	correct, graded := Grade(questions, req.Answers)
	total := len(questions)
	percentage := Percentage(correct, total)

	warnings := req.Warnings
	if warnings == nil {
		warnings = []string{}
	}

	rec := &model.ResultRecord{
		UserName:    req.UserName,
		Email:       req.Email,
		Correct:     correct,
		Total:       total,
		Percentage:  percentage,
		SubmittedAt: s.now().UTC(),
		Warnings:    warnings,
		Answers:     graded,
	}
	if err := s.resultRepo.Append(ctx, rec); err != nil {
		return nil, fmt.Errorf("store result: %w", err)
	}

	s.log.Info().
		Int("result_id", rec.ID).
		Str("email", rec.Email).
		Int("correct", correct).
		Int("total", total).
		Float64("percentage", percentage).
		Int("warnings", len(warnings)).
		Msg("Exam submitted and graded")

	s.afterSubmit(ctx, rec)

	res := &model.SubmitResult{
		Message:    SubmittedMessage,
		Correct:    correct,
		Total:      total,
		Percentage: percentage,
	}
	if s.reviewEnabled {
		res.Answers = graded
	}
	return res, nil
}

// afterSubmit fans the stored record out to the monitor and archive. Neither
// may fail a submission that is already on disk.
func (s *ScoringService) afterSubmit(ctx context.Context, rec *model.ResultRecord) {
	if s.proctor != nil {
		s.proctor.RecordSubmitted(ctx, rec)
	}
	if s.archiver != nil {
		if err := s.archiver.Enqueue(ctx, rec); err != nil {
			s.log.Warn().Err(err).Int("result_id", rec.ID).Msg("Failed to enqueue result for archive")
		}
	}
}

// ListResults returns every stored result.
func (s *ScoringService) ListResults(ctx context.Context) ([]model.ResultRecord, error) {
	return s.resultRepo.List(ctx)
}
