package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGender(t *testing.T) {
	g, err := ParseGender("")
	require.NoError(t, err)
	assert.Equal(t, GenderLadies, g)

	g, err = ParseGender("mens")
	require.NoError(t, err)
	assert.Equal(t, GenderMens, g)

	_, err = ParseGender("invalid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid gender")
}

func TestGender_DisplayName(t *testing.T) {
	assert.Equal(t, "レディース", GenderLadies.DisplayName())
	assert.Equal(t, "メンズ", GenderMens.DisplayName())
	assert.False(t, Gender("kids").Valid())
}

func TestParseSeason(t *testing.T) {
	s := ParseSeason("spring")
	require.NotNil(t, s)
	assert.Equal(t, "春", s.DisplayName())
	assert.Contains(t, s.Keywords(), "春カラー")

	assert.Nil(t, ParseSeason(""))
	assert.Nil(t, ParseSeason("none"))
	assert.Nil(t, ParseSeason("monsoon"))
}

func TestSeasons_AllHaveNamesAndKeywords(t *testing.T) {
	all := Seasons()
	assert.Len(t, all, 8)
	for _, s := range all {
		assert.NotEmpty(t, s.DisplayName(), s)
		assert.NotEmpty(t, s.Keywords(), s)
	}
}

func TestSeason_KeywordsIsCopy(t *testing.T) {
	kw := SeasonSummer.Keywords()
	kw[0] = "changed"
	assert.Equal(t, "夏カラー", SeasonSummer.Keywords()[0])
}

func TestClassification_FeaturedInfo(t *testing.T) {
	entry := &FeaturedKeyword{Name: "くびれヘア特集", Keyword: "くびれヘア", Gender: GenderLadies, Condition: "条件"}

	c := Classification{KeywordType: KeywordTypeFeatured, IsFeatured: true, FeaturedEntry: entry}
	info := c.FeaturedInfo()
	require.NotNil(t, info)
	assert.Equal(t, "くびれヘア特集", info.Name)
	assert.Equal(t, "条件", info.Condition)

	assert.Nil(t, Classification{KeywordType: KeywordTypeNormal}.FeaturedInfo())
}
