package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-proctor/internal/model"
	"github.com/stemsi/exstem-proctor/internal/repository"
	"github.com/stemsi/exstem-proctor/internal/response"
	"github.com/stemsi/exstem-proctor/internal/service"
	"github.com/stemsi/exstem-proctor/internal/spreadsheet"
	"github.com/stemsi/exstem-proctor/internal/validator"
)

// maxImportBytes bounds an uploaded question workbook.
const maxImportBytes = 5 << 20

// QuestionHandler handles question bank management endpoints.
type QuestionHandler struct {
	questionService *service.QuestionService
	log             zerolog.Logger
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService, log zerolog.Logger) *QuestionHandler {
	return &QuestionHandler{
		questionService: questionService,
		log:             log.With().Str("component", "question_handler").Logger(),
	}
}

// ListQuestions godoc
// GET /api/admin/questions
// Lists the full bank, correct answers included.
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	questions, err := h.questionService.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list questions")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if questions == nil {
		questions = []model.Question{}
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// AddQuestion godoc
// POST /api/admin/questions
// Adds a question to the bank.
func (h *QuestionHandler) AddQuestion(c *gin.Context) {
	var req model.QuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidQuestion, fields)
		return
	}

	question, err := h.questionService.Create(c.Request.Context(), req)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create question")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	h.log.Info().Int("question_id", question.ID).Msg("Question created")
	response.Success(c, http.StatusCreated, gin.H{"question": question})
}

// UpdateQuestion godoc
// PUT /api/admin/questions/:id
// Replaces a question. An unknown ID is reported before the payload is checked.
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	id, ok := parseQuestionID(c.Param("id"))
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	exists, err := h.questionService.Exists(c.Request.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Int("question_id", id).Msg("Failed to look up question")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if !exists {
		response.Fail(c, http.StatusNotFound, response.ErrQuestionNotFound)
		return
	}

	var req model.QuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidQuestion, fields)
		return
	}

	question, err := h.questionService.Update(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrQuestionNotFound)
			return
		}
		h.log.Error().Err(err).Int("question_id", id).Msg("Failed to update question")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// DeleteQuestion godoc
// DELETE /api/admin/questions/:id
// Removes a question and returns it.
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id, ok := parseQuestionID(c.Param("id"))
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	deleted, err := h.questionService.Delete(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrQuestionNotFound)
			return
		}
		h.log.Error().Err(err).Int("question_id", id).Msg("Failed to delete question")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	h.log.Info().Int("question_id", id).Msg("Question deleted")
	response.Success(c, http.StatusOK, gin.H{"deleted": deleted})
}

// ImportQuestions godoc
// POST /api/admin/questions/import
// Appends questions from an uploaded .xlsx or .csv file (form field "file").
func (h *QuestionHandler) ImportQuestions(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	parsed, err := spreadsheet.ParseQuestions(file, header.Filename)
	if err != nil {
		if errors.Is(err, spreadsheet.ErrUnsupportedFormat) {
			response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
			return
		}
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload, map[string]string{"file": err.Error()})
		return
	}

	imported, err := h.questionService.Import(c.Request.Context(), parsed.Questions)
	if err != nil {
		h.log.Error().Err(err).Int("imported", imported).Msg("Question import stopped early")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	h.log.Info().
		Str("file", header.Filename).
		Int("imported", imported).
		Int("rejected", len(parsed.Errors)).
		Msg("Questions imported")

	response.Success(c, http.StatusOK, gin.H{
		"imported": imported,
		"total":    parsed.TotalProcessed,
		"errors":   parsed.Errors,
	})
}

// ExportQuestions godoc
// GET /api/admin/questions/export
// Downloads the bank as a workbook accepted by ImportQuestions.
func (h *QuestionHandler) ExportQuestions(c *gin.Context) {
	questions, err := h.questionService.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list questions")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	var buf bytes.Buffer
	if err := spreadsheet.ExportQuestions(&buf, questions); err != nil {
		h.log.Error().Err(err).Msg("Failed to build question workbook")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	sendWorkbook(c, "questions.xlsx", &buf)
}

func sendWorkbook(c *gin.Context, name string, buf *bytes.Buffer) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
