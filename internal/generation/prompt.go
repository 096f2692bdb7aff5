package generation

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jonathan/salon-copy/internal/prompts"
	"github.com/jonathan/salon-copy/internal/types"
)

// RenderPrompt produces the full prompt text for req. The output depends
// only on req.
func RenderPrompt(req *types.GenerationRequest) (string, error) {
	limits := req.CharLimits
	data := map[string]string{
		"GenderName":   req.Gender.DisplayName(),
		"Keyword":      req.NormalizedKeyword,
		"MaxItems":     strconv.Itoa(req.MaxItems),
		"TitleLimit":   strconv.Itoa(limits.Title),
		"MenuLimit":    strconv.Itoa(limits.Menu),
		"CommentLimit": strconv.Itoa(limits.Comment),
		"HashtagLimit": strconv.Itoa(limits.HashtagWord),
		"MinHashtags":  strconv.Itoa(types.MinHashtags),
	}

	if req.Season != nil {
		data["SeasonName"] = req.Season.DisplayName()
		data["SeasonKeywords"] = strings.Join(req.Season.Keywords(), "、")
	}

	if e := req.Classification.FeaturedEntry; e != nil && req.Variant != types.VariantStandard {
		data["FeaturedName"] = e.Name
		data["FeaturedKeyword"] = e.Keyword
		data["FeaturedCondition"] = e.Condition
		data["NormalKeywords"] = strings.Join(req.Classification.SubKeywordsNormal, "、")
	}

	if len(req.CandidateTitles) > 0 {
		titlesJSON, err := json.MarshalIndent(req.CandidateTitles, "", "  ")
		if err != nil {
			return "", err
		}
		data["TitlesJSON"] = string(titlesJSON)
	}

	var sections []string
	add := func(key string) error {
		s, err := prompts.Render(prompts.CopywritingFile, key, data)
		if err != nil {
			return err
		}
		sections = append(sections, s)
		return nil
	}

	keys := []string{"intro"}
	if req.Season != nil {
		keys = append(keys, "season-intro")
	}
	switch req.Variant {
	case types.VariantFeatured:
		keys = append(keys, "featured-block")
	case types.VariantMixed:
		keys = append(keys, "featured-block", "mixed-block")
	}
	if len(req.CandidateTitles) > 0 {
		keys = append(keys, "titles-block")
	} else {
		keys = append(keys, "no-titles-block")
	}
	keys = append(keys, "guidelines")
	if req.Season != nil {
		keys = append(keys, "season-instruction")
	} else {
		keys = append(keys, "season-none-instruction")
	}
	keys = append(keys, "output-contract")

	for _, key := range keys {
		if err := add(key); err != nil {
			return "", err
		}
	}

	return strings.Join(sections, "\n"), nil
}
