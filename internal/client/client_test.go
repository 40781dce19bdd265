package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-proctor/internal/model"
	"github.com/stemsi/exstem-proctor/internal/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wsproto "github.com/stemsi/exstem-proctor/internal/websocket"
)

func TestFetchExam(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/questions", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		_ = json.NewEncoder(w).Encode(model.QuestionsResponse{
			Questions: []model.SanitizedQuestion{{ID: 1, Question: "2+2?", Options: []string{"1", "2", "3", "4"}}},
			Exam:      &model.ExamSettings{DurationSeconds: 600, MaxWarnings: 2},
		})
	}))
	defer srv.Close()

	c := New(srv.URL+"/", zerolog.Nop())
	exam, err := c.FetchExam(context.Background())
	require.NoError(t, err)
	require.Len(t, exam.Questions, 1)
	assert.Equal(t, 600, exam.Exam.DurationSeconds)

	qs, err := c.Questions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2+2?", qs[0].Question)
}

func TestQuestionsEmptyBank(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"questions":null}`))
	}))
	defer srv.Close()

	qs, err := New(srv.URL, zerolog.Nop()).Questions(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, qs)
	assert.Empty(t, qs)
}

func TestSubmit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/submit", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req model.SubmitRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ana@example.com", req.Email)
		assert.Len(t, req.Answers, 2)

		_ = json.NewEncoder(w).Encode(model.SubmitResult{
			Message: "Submitted", Correct: 1, Total: 2, Percentage: 50,
		})
	}))
	defer srv.Close()

	a, b := "A", "B"
	res, err := New(srv.URL, zerolog.Nop()).Submit(context.Background(), model.SubmitRequest{
		UserName: "Ana",
		Email:    "ana@example.com",
		Answers:  []model.Answer{{QuestionID: 1, SelectedOption: &a}, {QuestionID: 2, SelectedOption: &b}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Correct)
	assert.Equal(t, 50.0, res.Percentage)
}

func TestSubmitNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(response.ErrorBody{
			Error: "Invalid payload",
			Code:  response.ErrInvalidPayload,
		})
	}))
	defer srv.Close()

	_, err := New(srv.URL, zerolog.Nop()).Submit(context.Background(), model.SubmitRequest{})
	require.Error(t, err)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, response.ErrInvalidPayload, httpErr.Code)
	assert.Contains(t, err.Error(), "Invalid payload")
}

func TestSubmitServerDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, zerolog.Nop()).Submit(context.Background(), model.SubmitRequest{})
	require.Error(t, err)
}

func TestDialProctorSendsWarning(t *testing.T) {
	got := make(chan wsproto.WarningRequest, 1)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ws/exam", r.URL.Path)
		assert.Equal(t, "Ana", r.URL.Query().Get("name"))
		assert.Equal(t, "ana@example.com", r.URL.Query().Get("email"))

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var req wsproto.WarningRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		got <- req
		_ = conn.WriteJSON(wsproto.AckResponse{Event: wsproto.EventAck, WarningCount: req.Count})
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p, err := New(srv.URL, zerolog.Nop()).DialProctor(ctx, "Ana", "ana@example.com")
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.Warn("Window lost focus", 1))

	select {
	case req := <-got:
		assert.Equal(t, wsproto.ActionWarning, req.Action)
		assert.Equal(t, "Window lost focus", req.Reason)
		assert.Equal(t, 1, req.Count)
	case <-ctx.Done():
		t.Fatal("warning never reached the server")
	}

	assert.NoError(t, p.Close())
	assert.NoError(t, p.Close())
}
