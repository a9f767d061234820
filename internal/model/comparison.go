package model

// ComparisonRow pairs the client and competitor records for one normalized
// keyword. At least one side is always non-nil; a nil side means the keyword
// is absent from that export.
type ComparisonRow struct {
	Keyword    string         `json:"keyword" yaml:"keyword"`
	Client     *KeywordRecord `json:"client" yaml:"client"`
	Competitor *KeywordRecord `json:"competitor" yaml:"competitor"`
}

// ClientPosition returns the client's position and whether it is ranking.
func (r ComparisonRow) ClientPosition() (int, bool) {
	return position(r.Client)
}

// CompetitorPosition returns the competitor's position and whether it is ranking.
func (r ComparisonRow) CompetitorPosition() (int, bool) {
	return position(r.Competitor)
}

// ClientVolume returns the search volume reported by the client export.
func (r ComparisonRow) ClientVolume() (int64, bool) {
	if r.Client == nil || r.Client.SearchVolume == nil {
		return 0, false
	}
	return *r.Client.SearchVolume, true
}

// Volume returns the keyword's search volume, preferring the client export
// and falling back to the competitor export. Volume is a property of the
// keyword, so either side's figure describes the same demand.
func (r ComparisonRow) Volume() (int64, bool) {
	if v, ok := r.ClientVolume(); ok {
		return v, true
	}
	if r.Competitor != nil && r.Competitor.SearchVolume != nil {
		return *r.Competitor.SearchVolume, true
	}
	return 0, false
}

// ClientDifficulty returns the difficulty reported by the client export.
func (r ComparisonRow) ClientDifficulty() (float64, bool) {
	if r.Client == nil || r.Client.Difficulty == nil {
		return 0, false
	}
	return *r.Client.Difficulty, true
}

// Difficulty returns keyword difficulty with the same fallback as Volume.
func (r ComparisonRow) Difficulty() (float64, bool) {
	if d, ok := r.ClientDifficulty(); ok {
		return d, true
	}
	if r.Competitor != nil && r.Competitor.Difficulty != nil {
		return *r.Competitor.Difficulty, true
	}
	return 0, false
}

// TrafficCost returns the traffic cost for the given side, treating absence as 0.
func (r ComparisonRow) TrafficCost(side Side) float64 {
	rec := r.record(side)
	if rec == nil || rec.TrafficCost == nil {
		return 0
	}
	return *rec.TrafficCost
}

// Intents returns the competitor's intent set, or the client's when the
// competitor has none.
func (r ComparisonRow) Intents() []Intent {
	if r.Competitor != nil && len(r.Competitor.Intents) > 0 {
		return r.Competitor.Intents
	}
	if r.Client != nil {
		return r.Client.Intents
	}
	return nil
}

// CompetitorAhead reports whether the competitor outranks the client. An
// absent client counts as unranked.
func (r ComparisonRow) CompetitorAhead() bool {
	comp, ok := r.CompetitorPosition()
	if !ok {
		return false
	}
	client, ok := r.ClientPosition()
	return !ok || comp < client
}

func (r ComparisonRow) record(side Side) *KeywordRecord {
	if side == SideClient {
		return r.Client
	}
	return r.Competitor
}

func position(rec *KeywordRecord) (int, bool) {
	if rec == nil || rec.Position == nil {
		return 0, false
	}
	return *rec.Position, true
}
