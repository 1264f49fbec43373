// internal/api/router.go
package api

import "net/http"

// RegisterRoutes wires every endpoint onto the mux.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	// Learning engine
	mux.HandleFunc("POST /api/learning/step", h.getLearningStep)
	mux.HandleFunc("POST /api/learning/attempt", h.processAttempt)
	mux.HandleFunc("GET /api/learning/stats/{learnerID}", h.getLearnerStats)
	mux.HandleFunc("GET /api/learning/insights/{learnerID}", h.getLearningInsights)
	mux.HandleFunc("GET /api/learning/attempts/{learnerID}", h.getRecentAttempts)
	mux.HandleFunc("GET /api/learning/sessions/{learnerID}", h.getRecentSessions)
	mux.HandleFunc("POST /api/learning/session/start", h.startSession)
	mux.HandleFunc("POST /api/learning/session/end", h.endSession)
	mux.HandleFunc("POST /api/learning/time", h.addLearningTime)
	mux.HandleFunc("DELETE /api/learning/progress/{learnerID}", h.resetProgress)
	mux.HandleFunc("GET /api/learning/constants", h.getConstants)

	// Hardware display
	mux.HandleFunc("GET /api/device/letter/{letter}", h.getLetterPattern)
	mux.HandleFunc("GET /api/device/learning/dots", h.getLearningDots)

	// Tutorial walkthrough
	mux.HandleFunc("POST /api/tutorial/start", h.startTutorial)
	mux.HandleFunc("GET /api/tutorial/{tutorialID}", h.getTutorial)
	mux.HandleFunc("POST /api/tutorial/{tutorialID}/next", h.nextTutorialStep)
	mux.HandleFunc("POST /api/tutorial/{tutorialID}/prev", h.prevTutorialStep)
	mux.HandleFunc("POST /api/tutorial/{tutorialID}/jump", h.jumpTutorialStep)
	mux.HandleFunc("DELETE /api/tutorial/{tutorialID}", h.endTutorial)
}
