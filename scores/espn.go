package scores

// ESPN scoreboard response models. Only the fields the normalizer reads are
// mapped; sonic ignores the rest.
type ESPNResponse struct {
	Events []Event `json:"events"`
}

type Event struct {
	ID           string        `json:"id"`
	Date         ESPNTime      `json:"date"`
	Name         string        `json:"name"`
	ShortName    string        `json:"shortName"`
	Week         Week          `json:"week"`
	Competitions []Competition `json:"competitions"`
	Status       Status        `json:"status"`
}

type Week struct {
	Number int `json:"number"`
}

type Competition struct {
	ID          string       `json:"id"`
	Date        ESPNTime     `json:"date"`
	Competitors []Competitor `json:"competitors"`
	Status      Status       `json:"status"`
}

// Competitor is one side of a competition. Score is a decimal string and is
// empty before kickoff.
type Competitor struct {
	ID       string `json:"id"`
	HomeAway string `json:"homeAway"`
	Team     Team   `json:"team"`
	Score    string `json:"score"`
}

type Team struct {
	ID           string `json:"id"`
	Location     string `json:"location"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	DisplayName  string `json:"displayName"`
}

type Status struct {
	Clock        float64    `json:"clock"`
	DisplayClock string     `json:"displayClock"`
	Period       int        `json:"period"`
	Type         StatusType `json:"type"`
}

// StatusType carries the game state. Name is a machine token such as
// "STATUS_IN_PROGRESS"; ShortDetail is the human one, e.g. "Final/OT".
type StatusType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	State       string `json:"state"`
	Completed   bool   `json:"completed"`
	Description string `json:"description"`
	Detail      string `json:"detail"`
	ShortDetail string `json:"shortDetail"`
}
