package learner

// State is the complete learning state for one learner. It is loaded
// fresh from the repository at the start of every engine operation,
// mutated in memory, and written back; nothing is cached between calls.
type State struct {
	LearnerID    string
	Level        string
	SessionCount int
	Items        map[string]*ItemStats
	TotalTime    float64 // seconds spent learning
	Achievements []string

	// Adaptive preferences
	PreferredPace        string // slow, normal, fast
	LearningStyle        string // visual, auditory, balanced
	OptimalSessionLength int    // minutes
	DailyGoal            int    // attempts per day

	WeeklyStreak        int
	LongestWeeklyStreak int
	LastActiveDate      string

	// Adaptive difficulty
	CurrentDifficulty float64
	DifficultyHistory []float64
}

// NewState returns a default state for a learner with no history.
func NewState(learnerID string) *State {
	return &State{
		LearnerID:            learnerID,
		Level:                "letters_basic",
		Items:                make(map[string]*ItemStats),
		PreferredPace:        "normal",
		LearningStyle:        "balanced",
		OptimalSessionLength: 15,
		DailyGoal:            20,
		CurrentDifficulty:    0.5,
	}
}

// ItemStat returns the record for an item, creating it on first touch.
func (st *State) ItemStat(item string, now float64) *ItemStats {
	if st.Items == nil {
		st.Items = make(map[string]*ItemStats)
	}
	s, ok := st.Items[item]
	if !ok {
		s = NewItemStats(item, now)
		st.Items[item] = s
	}
	return s
}

// HasAchievement reports whether the learner already holds the badge.
func (st *State) HasAchievement(id string) bool {
	for _, a := range st.Achievements {
		if a == id {
			return true
		}
	}
	return false
}

// AddAchievement inserts a badge id at most once; the stored list
// behaves as a set.
func (st *State) AddAchievement(id string) bool {
	if st.HasAchievement(id) {
		return false
	}
	st.Achievements = append(st.Achievements, id)
	return true
}

// PushDifficulty appends to the difficulty history, bounded to 100 entries.
func (st *State) PushDifficulty(d float64) {
	st.DifficultyHistory = append(st.DifficultyHistory, d)
	if len(st.DifficultyHistory) > 100 {
		st.DifficultyHistory = st.DifficultyHistory[len(st.DifficultyHistory)-100:]
	}
}
