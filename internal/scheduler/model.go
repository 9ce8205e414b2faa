package scheduler

// Contract constants of the recommendation heuristic. They define its
// behavior and are not tuning knobs.
const (
	// LookbackDays is the trailing window scanned for historical PRIMARY
	// assignments, ending at the target shift's start.
	LookbackDays = 56
	// FrequentLimit caps the historically-frequent candidate list.
	FrequentLimit = 5
	// AvailableLimit caps the general active-employee pool.
	AvailableLimit = 12
)

type Candidate struct {
	UserID            int64  `json:"userID"`
	Name              string `json:"name"`
	Score             int    `json:"score,omitempty"`
	HasSameDayShift   bool   `json:"hasSameDayShift"`
	SameDayCount      int    `json:"sameDayCount"`
	HasUnavailability bool   `json:"hasUnavailability"`
}

type Recommendation struct {
	Frequent  []Candidate `json:"frequent"`
	Available []Candidate `json:"available"`
}

// Signals is the availability evaluator's verdict for one user and window.
// Busy and Unavailable are advisory for direct assignment but Busy is a hard
// exclusion from recommendation output.
type Signals struct {
	Busy        bool `json:"busy"`
	Unavailable bool `json:"unavailable"`
	SameDayLoad int  `json:"sameDayLoad"`
}
