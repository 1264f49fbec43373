// internal/api/tutorial_handler.go
package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/braillepath/backend/internal/braille"
	"github.com/braillepath/backend/internal/tutorial"
)

type StartTutorialRequest struct {
	LearnerID string `json:"user_id"`
}

type JumpTutorialRequest struct {
	Index int `json:"index"`
}

// TutorialStepResponse is the walkthrough position plus the dot pattern
// the hardware should raise for it.
type TutorialStepResponse struct {
	TutorialID string `json:"tutorial_id"`
	Letter     string `json:"letter"`
	Dots       [6]int `json:"dots"`
	Index      int    `json:"index"`
	Total      int    `json:"total"`
}

func (h *Handler) tutorialResponse(sess tutorial.Session) TutorialStepResponse {
	letter := h.tutorial.Letter(sess)
	dots, _ := braille.PatternFor(letter)
	return TutorialStepResponse{
		TutorialID: sess.ID,
		Letter:     letter,
		Dots:       dots,
		Index:      sess.Index,
		Total:      h.tutorial.Total(),
	}
}

func (h *Handler) handleTutorialError(w http.ResponseWriter, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, tutorial.ErrSessionNotFound) {
		http.Error(w, "tutorial not found", http.StatusNotFound)
		return true
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
	return true
}

// startTutorial godoc
// @Summary      Start an alphabet walkthrough
// @Tags         tutorial
// @Accept       json
// @Produce      json
// @Param        request body StartTutorialRequest true "learner"
// @Success      201 {object} TutorialStepResponse
// @Router       /api/tutorial/start [post]
func (h *Handler) startTutorial(w http.ResponseWriter, r *http.Request) {
	var req StartTutorialRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.LearnerID) == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	sess := h.tutorial.Start(req.LearnerID)
	respondJSON(w, http.StatusCreated, h.tutorialResponse(*sess))
}

// GET /api/tutorial/{tutorialID}
func (h *Handler) getTutorial(w http.ResponseWriter, r *http.Request) {
	sess, err := h.tutorial.Get(r.PathValue("tutorialID"))
	if h.handleTutorialError(w, err) {
		return
	}
	respondJSON(w, http.StatusOK, h.tutorialResponse(sess))
}

// POST /api/tutorial/{tutorialID}/next
func (h *Handler) nextTutorialStep(w http.ResponseWriter, r *http.Request) {
	sess, err := h.tutorial.Next(r.PathValue("tutorialID"))
	if h.handleTutorialError(w, err) {
		return
	}
	respondJSON(w, http.StatusOK, h.tutorialResponse(sess))
}

// POST /api/tutorial/{tutorialID}/prev
func (h *Handler) prevTutorialStep(w http.ResponseWriter, r *http.Request) {
	sess, err := h.tutorial.Prev(r.PathValue("tutorialID"))
	if h.handleTutorialError(w, err) {
		return
	}
	respondJSON(w, http.StatusOK, h.tutorialResponse(sess))
}

// POST /api/tutorial/{tutorialID}/jump
func (h *Handler) jumpTutorialStep(w http.ResponseWriter, r *http.Request) {
	var req JumpTutorialRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sess, err := h.tutorial.Jump(r.PathValue("tutorialID"), req.Index)
	if h.handleTutorialError(w, err) {
		return
	}
	respondJSON(w, http.StatusOK, h.tutorialResponse(sess))
}

// DELETE /api/tutorial/{tutorialID}
func (h *Handler) endTutorial(w http.ResponseWriter, r *http.Request) {
	if err := h.tutorial.End(r.PathValue("tutorialID")); h.handleTutorialError(w, err) {
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ended"})
}
