// internal/api/learning_handler.go
package api

import (
	"net/http"
	"strconv"
	"strings"
)

const maxResponseTimeSeconds = 300

// ── Request / Response types ────────────────────────────────────────────────

type LearningStepRequest struct {
	LearnerID        string   `json:"user_id"`
	AvailableLetters []string `json:"available_letters,omitempty"`
}

type AttemptRequest struct {
	LearnerID    string  `json:"user_id"`
	TargetLetter string  `json:"target_letter"`
	SpokenLetter string  `json:"spoken_letter"`
	ResponseTime float64 `json:"response_time"`
	SessionID    *string `json:"session_id,omitempty"`
}

type StartSessionRequest struct {
	LearnerID   string `json:"user_id"`
	SessionType string `json:"session_type,omitempty"`
}

type StartSessionResponse struct {
	SessionID string `json:"session_id"`
}

type EndSessionRequest struct {
	SessionID       string `json:"session_id"`
	TotalAttempts   int    `json:"total_attempts"`
	CorrectAttempts int    `json:"correct_attempts"`
}

type AddTimeRequest struct {
	LearnerID string  `json:"user_id"`
	Seconds   float64 `json:"seconds"`
}

// ── Handlers ────────────────────────────────────────────────────────────────

// getLearningStep godoc
// @Summary      Next learning step
// @Description  Chooses the pedagogical mode and the next letter to present.
// @Tags         learning
// @Accept       json
// @Produce      json
// @Param        request body LearningStepRequest true "learner and candidate letters"
// @Success      200 {object} engine.LearningStep
// @Router       /api/learning/step [post]
func (h *Handler) getLearningStep(w http.ResponseWriter, r *http.Request) {
	var req LearningStepRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.LearnerID) == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	step, err := h.engine.GetLearningStep(r.Context(), req.LearnerID, req.AvailableLetters)
	if h.handleStoreError(w, err, "learning step") {
		return
	}
	respondJSON(w, http.StatusOK, step)
}

// processAttempt godoc
// @Summary      Record a learning attempt
// @Description  Applies one response to the learner model and returns feedback.
// @Tags         learning
// @Accept       json
// @Produce      json
// @Param        request body AttemptRequest true "attempt"
// @Success      200 {object} engine.AttemptOutcome
// @Router       /api/learning/attempt [post]
func (h *Handler) processAttempt(w http.ResponseWriter, r *http.Request) {
	var req AttemptRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	learnerID := strings.TrimSpace(req.LearnerID)
	target := strings.TrimSpace(req.TargetLetter)
	spoken := strings.TrimSpace(req.SpokenLetter)
	if learnerID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}
	if target == "" || spoken == "" {
		http.Error(w, "target_letter and spoken_letter are required", http.StatusBadRequest)
		return
	}
	if req.ResponseTime < 0 || req.ResponseTime > maxResponseTimeSeconds {
		http.Error(w, "response_time must be between 0 and 300 seconds", http.StatusBadRequest)
		return
	}

	outcome, err := h.engine.ProcessAttempt(
		r.Context(), learnerID, target, spoken,
		req.ResponseTime, req.SessionID,
	)
	if h.handleStoreError(w, err, "attempt") {
		return
	}
	respondJSON(w, http.StatusOK, outcome)
}

// getLearnerStats godoc
// @Summary      Aggregate learner statistics
// @Tags         learning
// @Produce      json
// @Param        learnerID path string true "learner id"
// @Success      200 {object} engine.LearnerReport
// @Router       /api/learning/stats/{learnerID} [get]
func (h *Handler) getLearnerStats(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("learnerID")

	report, err := h.engine.GetLearnerStats(r.Context(), learnerID)
	if h.handleStoreError(w, err, "learner stats") {
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// getLearningInsights godoc
// @Summary      Qualitative learning insights
// @Tags         learning
// @Produce      json
// @Param        learnerID path string true "learner id"
// @Success      200 {object} engine.Insights
// @Router       /api/learning/insights/{learnerID} [get]
func (h *Handler) getLearningInsights(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("learnerID")

	insights, err := h.engine.GetLearningInsights(r.Context(), learnerID)
	if h.handleStoreError(w, err, "learning insights") {
		return
	}
	respondJSON(w, http.StatusOK, insights)
}

// GET /api/learning/attempts/{learnerID}
func (h *Handler) getRecentAttempts(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("learnerID")
	limit := queryInt(r, "limit", 20)

	attempts, err := h.engine.RecentAttempts(r.Context(), learnerID, limit)
	if h.handleStoreError(w, err, "attempts") {
		return
	}
	respondJSON(w, http.StatusOK, attempts)
}

// GET /api/learning/sessions/{learnerID}
func (h *Handler) getRecentSessions(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("learnerID")
	limit := queryInt(r, "limit", 10)

	sessions, err := h.engine.RecentSessions(r.Context(), learnerID, limit)
	if h.handleStoreError(w, err, "sessions") {
		return
	}
	respondJSON(w, http.StatusOK, sessions)
}

// POST /api/learning/session/start
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.LearnerID) == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	id, err := h.engine.StartSession(r.Context(), req.LearnerID, req.SessionType)
	if h.handleStoreError(w, err, "session") {
		return
	}
	respondJSON(w, http.StatusCreated, StartSessionResponse{SessionID: id})
}

// POST /api/learning/session/end
func (h *Handler) endSession(w http.ResponseWriter, r *http.Request) {
	var req EndSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	err := h.engine.EndSession(r.Context(), req.SessionID, req.TotalAttempts, req.CorrectAttempts)
	if h.handleStoreError(w, err, "session") {
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ended"})
}

// POST /api/learning/time
func (h *Handler) addLearningTime(w http.ResponseWriter, r *http.Request) {
	var req AddTimeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.LearnerID) == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}
	if req.Seconds < 0 {
		http.Error(w, "seconds must not be negative", http.StatusBadRequest)
		return
	}

	if err := h.engine.AddLearningTime(r.Context(), req.LearnerID, req.Seconds); h.handleStoreError(w, err, "learning time") {
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": "updated", "added_seconds": req.Seconds})
}

// resetProgress godoc
// @Summary      Reset all learning progress
// @Tags         learning
// @Param        learnerID path string true "learner id"
// @Success      200
// @Router       /api/learning/progress/{learnerID} [delete]
func (h *Handler) resetProgress(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("learnerID")

	if err := h.engine.ResetProgress(r.Context(), learnerID); h.handleStoreError(w, err, "progress") {
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "reset", "user_id": learnerID})
}

// GET /api/learning/constants
// The frontend mirrors some scoring locally; this exports the thresholds
// it needs to match the engine exactly.
func (h *Handler) getConstants(w http.ResponseWriter, r *http.Request) {
	cfg := h.engine.Config()
	respondJSON(w, http.StatusOK, map[string]any{
		"MAX_RESPONSE_TIME":        cfg.MaxResponseTime,
		"MASTERY_HIGH":             cfg.High,
		"MASTERY_MID":              cfg.Mid,
		"MIN_ATTEMPTS_FOR_MASTERY": cfg.MinAttemptsForTier,
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
