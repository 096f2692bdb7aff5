package generation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/salon-copy/internal/types"
)

var kubire = types.FeaturedKeyword{
	Name:      "くびれヘア特集",
	Keyword:   "くびれヘア",
	Gender:    types.GenderLadies,
	Condition: "鎖骨ラインのくびれを必ず強調する",
}

func featuredClassification() types.Classification {
	e := kubire
	return types.Classification{
		OriginalKeyword:     "くびれヘア",
		KeywordType:         types.KeywordTypeFeatured,
		ProcessingMode:      types.ProcessingModeFeatured,
		IsFeatured:          true,
		FeaturedEntry:       &e,
		SubKeywordsFeatured: []string{"くびれヘア"},
	}
}

func mixedClassification() types.Classification {
	c := featuredClassification()
	c.OriginalKeyword = "くびれヘア ボブ"
	c.KeywordType = types.KeywordTypeMixed
	c.SubKeywordsNormal = []string{"ボブ"}
	return c
}

func normalClassification(keyword string) types.Classification {
	return types.Classification{
		OriginalKeyword:   keyword,
		KeywordType:       types.KeywordTypeNormal,
		ProcessingMode:    types.ProcessingModeStandard,
		SubKeywordsNormal: []string{keyword},
	}
}

func TestBuild_Defaults(t *testing.T) {
	b := NewBuilder(Config{})

	req := b.Build(BuildInput{
		Keyword:        "  ボブ ",
		Gender:         types.GenderLadies,
		Model:          "gemini-2.5-flash",
		Titles:         []string{"透明感ボブ"},
		Classification: normalClassification("ボブ"),
	})

	assert.Equal(t, "  ボブ ", req.OriginalKeyword)
	assert.Equal(t, "ボブ", req.NormalizedKeyword)
	assert.Equal(t, DefaultMaxItems, req.MaxItems)
	assert.Equal(t, types.DefaultCharLimits(), req.CharLimits)
	assert.Equal(t, types.VariantStandard, req.Variant)
	assert.Nil(t, req.Season)
	assert.Equal(t, "gemini-2.5-flash", req.Model)
}

func TestBuild_Season(t *testing.T) {
	b := NewBuilder(DefaultConfig())

	tests := []struct {
		tag  string
		want *types.Season
	}{
		{"spring", seasonPtr(types.SeasonSpring)},
		{"rainy_season", seasonPtr(types.SeasonRainy)},
		{"", nil},
		{"none", nil},
		{"monsoon", nil},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			req := b.Build(BuildInput{Keyword: "ボブ", Gender: types.GenderLadies, Season: tt.tag})
			assert.Equal(t, tt.want, req.Season)
		})
	}
}

func seasonPtr(s types.Season) *types.Season { return &s }

func TestBuild_Variant(t *testing.T) {
	b := NewBuilder(DefaultConfig())

	assert.Equal(t, types.VariantFeatured,
		b.Build(BuildInput{Keyword: "くびれヘア", Classification: featuredClassification()}).Variant)
	assert.Equal(t, types.VariantMixed,
		b.Build(BuildInput{Keyword: "くびれヘア ボブ", Classification: mixedClassification()}).Variant)
	assert.Equal(t, types.VariantStandard,
		b.Build(BuildInput{Keyword: "ボブ", Classification: normalClassification("ボブ")}).Variant)
	assert.Equal(t, types.VariantStandard,
		b.Build(BuildInput{Keyword: "x", Classification: types.Classification{
			KeywordType: types.KeywordTypeError, ProcessingMode: types.ProcessingModeFallback,
		}}).Variant)
}

func TestBuild_CopiesInputs(t *testing.T) {
	b := NewBuilder(DefaultConfig())
	titles := []string{"a", "b"}
	c := mixedClassification()

	req := b.Build(BuildInput{Keyword: "くびれヘア ボブ", Titles: titles, Classification: c})
	titles[0] = "changed"
	c.SubKeywordsNormal[0] = "changed"
	c.FeaturedEntry.Condition = "changed"

	assert.Equal(t, []string{"a", "b"}, req.CandidateTitles)
	assert.Equal(t, []string{"ボブ"}, req.Classification.SubKeywordsNormal)
	assert.Equal(t, kubire.Condition, req.Classification.FeaturedEntry.Condition)
}

func TestBuild_EmptyTitles(t *testing.T) {
	req := NewBuilder(DefaultConfig()).Build(BuildInput{Keyword: "ボブ"})
	require.NotNil(t, req.CandidateTitles)
	assert.Empty(t, req.CandidateTitles)
	assert.Equal(t, types.DefaultGender, req.Gender)
}

func TestRenderPrompt_Standard(t *testing.T) {
	req := NewBuilder(DefaultConfig()).Build(BuildInput{
		Keyword:        "ボブ",
		Gender:         types.GenderMens,
		Titles:         []string{"ツーブロックボブ"},
		Classification: normalClassification("ボブ"),
	})

	prompt, err := RenderPrompt(req)
	require.NoError(t, err)

	assert.Contains(t, prompt, "メンズ")
	assert.Contains(t, prompt, "「ボブ」")
	assert.Contains(t, prompt, "ツーブロックボブ")
	assert.Contains(t, prompt, "15つ")
	assert.Contains(t, prompt, "30文字以内")
	assert.Contains(t, prompt, "7個以上")
	assert.Contains(t, prompt, `"hashtag"`)
	assert.NotContains(t, prompt, "特集キーワード条件")
	assert.NotContains(t, prompt, "{{.")
}

func TestRenderPrompt_Featured(t *testing.T) {
	req := NewBuilder(DefaultConfig()).Build(BuildInput{
		Keyword:        "くびれヘア",
		Gender:         types.GenderLadies,
		Classification: featuredClassification(),
	})

	prompt, err := RenderPrompt(req)
	require.NoError(t, err)

	assert.Contains(t, prompt, "特集キーワード条件")
	assert.Contains(t, prompt, kubire.Condition)
	assert.Contains(t, prompt, kubire.Name)
	assert.NotContains(t, prompt, "通常キーワード")
	assert.Less(t, strings.Index(prompt, kubire.Condition), strings.Index(prompt, "各要素の生成ガイドライン"))
}

func TestRenderPrompt_Mixed(t *testing.T) {
	req := NewBuilder(DefaultConfig()).Build(BuildInput{
		Keyword:        "くびれヘア ボブ",
		Gender:         types.GenderLadies,
		Titles:         []string{"くびれボブ"},
		Classification: mixedClassification(),
	})

	prompt, err := RenderPrompt(req)
	require.NoError(t, err)

	assert.Contains(t, prompt, kubire.Condition)
	assert.Contains(t, prompt, "通常キーワード")
	assert.Contains(t, prompt, "ボブ")
}

func TestRenderPrompt_Season(t *testing.T) {
	b := NewBuilder(DefaultConfig())

	withSeason, err := RenderPrompt(b.Build(BuildInput{Keyword: "ボブ", Season: "spring"}))
	require.NoError(t, err)
	assert.Contains(t, withSeason, "「春」")
	for _, kw := range types.SeasonSpring.Keywords() {
		assert.Contains(t, withSeason, kw)
	}

	without, err := RenderPrompt(b.Build(BuildInput{Keyword: "ボブ", Season: "none"}))
	require.NoError(t, err)
	assert.Contains(t, without, "特定のシーズン指定はありません")
}

func TestRenderPrompt_Deterministic(t *testing.T) {
	req := NewBuilder(DefaultConfig()).Build(BuildInput{
		Keyword:        "くびれヘア ボブ",
		Season:         "winter",
		Titles:         []string{"a", "b", "c"},
		Classification: mixedClassification(),
	})

	first, err := RenderPrompt(req)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := RenderPrompt(req)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestRenderPrompt_CustomLimits(t *testing.T) {
	b := NewBuilder(Config{MaxItems: 5, CharLimits: types.CharLimits{Title: 25, Menu: 40, Comment: 100, HashtagWord: 15}})

	prompt, err := RenderPrompt(b.Build(BuildInput{Keyword: "ボブ"}))
	require.NoError(t, err)
	assert.Contains(t, prompt, "5つ")
	assert.Contains(t, prompt, "25文字以内")
	assert.Contains(t, prompt, "15文字以内")
}
