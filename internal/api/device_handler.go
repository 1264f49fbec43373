// internal/api/device_handler.go
package api

import (
	"errors"
	"net/http"

	"github.com/braillepath/backend/internal/braille"
	"github.com/braillepath/backend/internal/store"
)

type LetterPatternResponse struct {
	Letter string `json:"letter"`
	Dots   [6]int `json:"dots"`
}

// getLetterPattern godoc
// @Summary      Braille dot pattern for a letter
// @Tags         device
// @Produce      json
// @Param        letter path string true "letter a-z"
// @Success      200 {object} LetterPatternResponse
// @Failure      404 {string} string "unknown letter"
// @Router       /api/device/letter/{letter} [get]
func (h *Handler) getLetterPattern(w http.ResponseWriter, r *http.Request) {
	letter := r.PathValue("letter")

	dots, ok := braille.PatternFor(letter)
	if !ok {
		http.Error(w, "unknown letter", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, LetterPatternResponse{Letter: letter, Dots: dots})
}

// getLearningDots godoc
// @Summary      Dot pattern for the learner's current item
// @Description  Polled by the cell hardware. Returns the pattern of the
// @Description  most recently presented letter, or all-zero dots when the
// @Description  learner has not been shown anything yet.
// @Tags         device
// @Produce      json
// @Param        user_id query string true "learner id"
// @Success      200 {object} LetterPatternResponse
// @Router       /api/device/learning/dots [get]
func (h *Handler) getLearningDots(w http.ResponseWriter, r *http.Request) {
	learnerID := r.URL.Query().Get("user_id")
	if learnerID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	item, err := h.store.CurrentItem(r.Context(), learnerID)
	if errors.Is(err, store.ErrNotFound) {
		// Nothing presented yet, the cell stays blank.
		respondJSON(w, http.StatusOK, LetterPatternResponse{Letter: "", Dots: [6]int{}})
		return
	}
	if h.handleStoreError(w, err, "current item") {
		return
	}

	dots, ok := braille.PatternFor(item)
	if !ok {
		respondJSON(w, http.StatusOK, LetterPatternResponse{Letter: item, Dots: [6]int{}})
		return
	}
	respondJSON(w, http.StatusOK, LetterPatternResponse{Letter: item, Dots: dots})
}
