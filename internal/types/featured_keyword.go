package types

// Field limits for featured keyword entries, counted in runes.
const (
	MaxFeaturedNameLength      = 50
	MaxFeaturedKeywordLength   = 50
	MaxFeaturedConditionLength = 500
)

// FeaturedKeyword is a curated keyword with a promotional condition that
// generated copy must honour.
type FeaturedKeyword struct {
	Name      string `json:"name"`
	Keyword   string `json:"keyword"`
	Gender    Gender `json:"gender"`
	Condition string `json:"condition"`
}

// Info returns the subset surfaced in API responses.
func (f FeaturedKeyword) Info() *FeaturedKeywordInfo {
	return &FeaturedKeywordInfo{
		Name:      f.Name,
		Condition: f.Condition,
		Gender:    f.Gender,
	}
}

// FeaturedKeywordInfo is the featured entry summary returned with generated items.
type FeaturedKeywordInfo struct {
	Name      string `json:"name"`
	Condition string `json:"condition"`
	Gender    Gender `json:"gender"`
}
