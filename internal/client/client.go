// Package client talks to the exam server on behalf of the terminal runner.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-proctor/internal/model"
	"github.com/stemsi/exstem-proctor/internal/response"
)

const defaultTimeout = 15 * time.Second

// HTTPError is a non-2xx answer from the server.
type HTTPError struct {
	Status    int
	Code      response.ErrCode
	Message   string
	RequestID string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s (%s)", e.Status, e.Message, e.Code)
}

// Client calls the exam API. It satisfies examsession.QuestionSource and
// examsession.Submitter.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// New creates a Client for the server at baseURL (e.g. http://localhost:3000).
func New(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		log:     log.With().Str("component", "exam_client").Logger(),
	}
}

// FetchExam loads the question set together with the exam policy.
func (c *Client) FetchExam(ctx context.Context) (*model.QuestionsResponse, error) {
	var out model.QuestionsResponse
	if err := c.do(ctx, http.MethodGet, "/api/questions", nil, &out); err != nil {
		return nil, err
	}
	if out.Questions == nil {
		out.Questions = []model.SanitizedQuestion{}
	}
	return &out, nil
}

// Questions implements examsession.QuestionSource.
func (c *Client) Questions(ctx context.Context) ([]model.SanitizedQuestion, error) {
	exam, err := c.FetchExam(ctx)
	if err != nil {
		return nil, err
	}
	return exam.Questions, nil
}

// Submit implements examsession.Submitter.
func (c *Client) Submit(ctx context.Context, req model.SubmitRequest) (*model.SubmitResult, error) {
	var out model.SubmitResult
	if err := c.do(ctx, http.MethodPost, "/api/submit", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("request_id", reqID).Str("path", path).Msg("Request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := &HTTPError{Status: resp.StatusCode, RequestID: reqID}
		var eb response.ErrorBody
		if json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&eb) == nil {
			httpErr.Code = eb.Code
			httpErr.Message = eb.Error
		}
		c.log.Warn().
			Str("request_id", reqID).
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("code", string(httpErr.Code)).
			Msg("Server rejected request")
		return httpErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
