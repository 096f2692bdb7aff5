package types

// Season is a promotional season tag.
type Season string

// Known seasons, in display order.
const (
	SeasonSpring             Season = "spring"
	SeasonSummer             Season = "summer"
	SeasonAutumn             Season = "autumn"
	SeasonWinter             Season = "winter"
	SeasonAllYear            Season = "all_year"
	SeasonGraduationEntrance Season = "graduation_entrance"
	SeasonRainy              Season = "rainy_season"
	SeasonYearEndNewYear     Season = "year_end_new_year"
)

type seasonInfo struct {
	name     string
	keywords []string
}

var seasons = map[Season]seasonInfo{
	SeasonSpring:             {name: "春", keywords: []string{"春カラー", "スプリング"}},
	SeasonSummer:             {name: "夏", keywords: []string{"夏カラー", "サマー"}},
	SeasonAutumn:             {name: "秋", keywords: []string{"秋カラー", "オータム"}},
	SeasonWinter:             {name: "冬", keywords: []string{"冬カラー", "ウィンター"}},
	SeasonAllYear:            {name: "通年", keywords: []string{"定番", "いつでも人気", "ベーシック"}},
	SeasonGraduationEntrance: {name: "卒業・入学シーズン", keywords: []string{"卒業式", "入学式", "卒園式", "入園式", "新生活応援"}},
	SeasonRainy:              {name: "梅雨", keywords: []string{"梅雨", "湿気対策", "うねり解消", "縮毛矯正", "ストレートパーマ"}},
	SeasonYearEndNewYear:     {name: "年末年始・成人式", keywords: []string{"年末年始", "クリスマス", "お正月", "冬休み", "カウントダウン", "成人式"}},
}

// ParseSeason returns the season for a tag, or nil when the tag is empty,
// "none" or unknown. Unknown tags are not an error: they mean no seasonal emphasis.
func ParseSeason(tag string) *Season {
	s := Season(tag)
	if _, ok := seasons[s]; !ok {
		return nil
	}
	return &s
}

// Seasons returns all known seasons.
func Seasons() []Season {
	return []Season{
		SeasonSpring, SeasonSummer, SeasonAutumn, SeasonWinter,
		SeasonAllYear, SeasonGraduationEntrance, SeasonRainy, SeasonYearEndNewYear,
	}
}

// DisplayName returns the Japanese name of the season.
func (s Season) DisplayName() string {
	return seasons[s].name
}

// Keywords returns a copy of the season's suggested keywords.
func (s Season) Keywords() []string {
	kw := seasons[s].keywords
	out := make([]string, len(kw))
	copy(out, kw)
	return out
}
