package scores

// NCAA aggregator (/scoreboard) response models.
type NCAAResponse struct {
	UpdatedAt string        `json:"updated_at"`
	Games     []NCAAWrapper `json:"games"`
}

type NCAAWrapper struct {
	Game NCAAGame `json:"game"`
}

type NCAAGame struct {
	GameID         string   `json:"gameID"`
	Title          string   `json:"title"`
	GameState      string   `json:"gameState"`
	CurrentPeriod  string   `json:"currentPeriod"`
	FinalMessage   string   `json:"finalMessage"`
	StartTimeEpoch string   `json:"startTimeEpoch"`
	Home           NCAATeam `json:"home"`
	Away           NCAATeam `json:"away"`
}

type NCAATeam struct {
	Score  string    `json:"score"`
	Winner bool      `json:"winner"`
	Rank   string    `json:"rank"`
	Names  TeamNames `json:"names"`
}

type TeamNames struct {
	Char6 string `json:"char6"`
	Short string `json:"short"`
	SEO   string `json:"seo"`
	Full  string `json:"full"`
}
