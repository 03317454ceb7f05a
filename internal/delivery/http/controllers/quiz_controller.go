package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventregistry/internal/delivery/http/helpers"
	"eventregistry/internal/domain"
)

type QuizController struct {
	Logger  *slog.Logger
	Service domain.QuizService
}

func NewQuizController(logger *slog.Logger, svc domain.QuizService) *QuizController {
	return &QuizController{
		Logger:  logger,
		Service: svc,
	}
}

// TestOption is a public answer option: the correct flag is never exposed.
type TestOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// TestQuestion is a public question with its options.
type TestQuestion struct {
	ID      string       `json:"id"`
	Text    string       `json:"text"`
	Options []TestOption `json:"options"`
}

// TestView is the response body for GET /test/{registrationID}.
type TestView struct {
	EventTitle string         `json:"event_title"`
	Questions  []TestQuestion `json:"questions"`
}

// GetTestSuccessResponse is the success response envelope for GET /test/{registrationID} (200).
type GetTestSuccessResponse struct {
	Data  *TestView         `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// GetTest godoc
// @Summary Get the olympiad test for a paid registration
// @Description Returns the event's questions with answer options. Only available for olympiad events with a settled payment. A registration that already submitted gets its stored result back instead of the questions.
// @Tags test
// @Produce json
// @Param registrationID path string true "Registration ID"
// @Success 200 {object} controllers.GetTestSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not an olympiad or payment not settled)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /test/{registrationID} [get]
func (c *QuizController) GetTest(w http.ResponseWriter, r *http.Request) {
	registrationID := r.PathValue("registrationID")
	if registrationID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing registrationID")
		return
	}

	event, questions, err := c.Service.GetTest(r.Context(), registrationID)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadySubmitted) {
			result, rerr := c.Service.Result(r.Context(), registrationID)
			if rerr != nil {
				c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", rerr)
				helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, rerr.Error())
				return
			}
			helpers.WriteJSONSuccess(w, http.StatusOK, result)
			return
		}
		c.writeError(w, r, err)
		return
	}

	view := &TestView{
		EventTitle: event.Title,
		Questions:  make([]TestQuestion, 0, len(questions)),
	}
	for _, q := range questions {
		tq := TestQuestion{ID: q.ID, Text: q.Text, Options: make([]TestOption, 0, len(q.Options))}
		for _, opt := range q.Options {
			tq.Options = append(tq.Options, TestOption{ID: opt.ID, Text: opt.Text})
		}
		view.Questions = append(view.Questions, tq)
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}

// SubmitTestRequest is the request body for POST /test/{registrationID}.
type SubmitTestRequest struct {
	// Answers maps question id to the chosen answer option id.
	Answers map[string]string `json:"answers"`
}

// SubmitTestSuccessResponse is the success response envelope for POST /test/{registrationID} (200 or 201).
type SubmitTestSuccessResponse struct {
	Data  *domain.TestResult `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// SubmitTest godoc
// @Summary Submit olympiad test answers
// @Description Scores the submitted answers and stores the result. Idempotent: returns 201 with the new result on first submission, 200 with the stored result on any later one. A prior result is never overwritten. Unanswered questions and unknown option ids count as incorrect.
// @Tags test
// @Accept json
// @Produce json
// @Param registrationID path string true "Registration ID"
// @Param body body controllers.SubmitTestRequest true "Chosen answers"
// @Success 200 {object} controllers.SubmitTestSuccessResponse "Previously stored result"
// @Success 201 {object} controllers.SubmitTestSuccessResponse "New result"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /test/{registrationID} [post]
func (c *QuizController) SubmitTest(w http.ResponseWriter, r *http.Request) {
	registrationID := r.PathValue("registrationID")
	if registrationID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing registrationID")
		return
	}
	var req SubmitTestRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	result, created, err := c.Service.Submit(r.Context(), registrationID, req.Answers)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	if created {
		helpers.WriteJSONSuccess(w, http.StatusCreated, result)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

func (c *QuizController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "registration not found")
		return
	}
	if errors.Is(err, domain.ErrForbidden) {
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "test is not available for this registration")
		return
	}
	c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
}
