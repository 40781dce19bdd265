package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-proctor/internal/model"
	"github.com/stemsi/exstem-proctor/internal/response"
	"github.com/stemsi/exstem-proctor/internal/service"
	"github.com/stemsi/exstem-proctor/internal/validator"
)

// ExamHandler serves the exam-taker endpoints.
type ExamHandler struct {
	questionService *service.QuestionService
	scoringService  *service.ScoringService
	settings        model.ExamSettings
	log             zerolog.Logger
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(
	questionService *service.QuestionService,
	scoringService *service.ScoringService,
	settings model.ExamSettings,
	log zerolog.Logger,
) *ExamHandler {
	return &ExamHandler{
		questionService: questionService,
		scoringService:  scoringService,
		settings:        settings,
		log:             log.With().Str("component", "exam_handler").Logger(),
	}
}

// GetQuestions godoc
// GET /api/questions
// Returns the question set without correct answers, plus the exam policy.
func (h *ExamHandler) GetQuestions(c *gin.Context) {
	questions, err := h.questionService.ListForExam(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list questions for exam")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	settings := h.settings
	response.Success(c, http.StatusOK, model.QuestionsResponse{
		Questions: questions,
		Exam:      &settings,
	})
}

// Submit godoc
// POST /api/submit
// Grades a submission against the current bank and stores the result.
func (h *ExamHandler) Submit(c *gin.Context) {
	var req model.SubmitRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload, fields)
		return
	}

	result, err := h.scoringService.Submit(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSubmission) {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
		h.log.Error().Err(err).Str("email", req.Email).Msg("Failed to submit exam")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, result)
}
