package keyword

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/salon-copy/internal/featured"
	"github.com/jonathan/salon-copy/internal/types"
)

var kubire = types.FeaturedKeyword{
	Name:      "くびれヘア特集",
	Keyword:   "くびれヘア",
	Gender:    types.GenderLadies,
	Condition: "くびれを強調したスタイル",
}

func newClassifier(entries ...types.FeaturedKeyword) *Classifier {
	return NewClassifier(featured.FromEntries(entries, zap.NewNop()), zap.NewNop())
}

type panicRegistry struct{}

func (panicRegistry) IsAvailable() bool { return true }
func (panicRegistry) Lookup(string) (types.FeaturedKeyword, bool) {
	panic("boom")
}

func TestSplit(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"くびれヘア", []string{"くびれヘア"}},
		{"くびれヘア ボブ", []string{"くびれヘア", "ボブ"}},
		{"くびれヘア　ボブ", []string{"くびれヘア", "ボブ"}},
		{"a,b", []string{"a", "b"}},
		{"a，b", []string{"a", "b"}},
		{"a/b", []string{"a", "b"}},
		{"a+b", []string{"a", "b"}},
		{"a＋b", []string{"a", "b"}},
		// space wins over comma, so the comma stays inside a piece
		{"a,b c", []string{"a,b", "c"}},
		{"a  b", []string{"a", "b"}},
		{",,", nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Split(tt.in)); diff != "" {
				t.Errorf("Split(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestClassify_Featured(t *testing.T) {
	c := newClassifier(kubire)

	got := c.Classify("くびれヘア", types.GenderLadies)

	want := types.Classification{
		OriginalKeyword:     "くびれヘア",
		KeywordType:         types.KeywordTypeFeatured,
		ProcessingMode:      types.ProcessingModeFeatured,
		IsFeatured:          true,
		FeaturedEntry:       &kubire,
		SubKeywordsFeatured: []string{"くびれヘア"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Classify mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "くびれヘア特集", got.FeaturedInfo().Name)
}

func TestClassify_Mixed(t *testing.T) {
	c := newClassifier(kubire)

	got := c.Classify("くびれヘア ボブ", types.GenderLadies)

	assert.Equal(t, types.KeywordTypeMixed, got.KeywordType)
	assert.Equal(t, types.ProcessingModeFeatured, got.ProcessingMode)
	assert.True(t, got.IsFeatured)
	assert.Equal(t, []string{"くびれヘア"}, got.SubKeywordsFeatured)
	assert.Equal(t, []string{"ボブ"}, got.SubKeywordsNormal)
	require.NotNil(t, got.FeaturedEntry)
	assert.Equal(t, "くびれヘア", got.FeaturedEntry.Keyword)
}

func TestClassify_MixedPrecedence(t *testing.T) {
	a := types.FeaturedKeyword{Name: "A", Keyword: "A", Gender: types.GenderLadies, Condition: "ca"}
	c := newClassifier(a)

	got := c.Classify("A B", types.GenderLadies)

	assert.Equal(t, types.KeywordTypeMixed, got.KeywordType)
	assert.Equal(t, "A", got.FeaturedEntry.Keyword)
	assert.Contains(t, got.SubKeywordsNormal, "B")
}

func TestClassify_FirstFeaturedPieceWins(t *testing.T) {
	a := types.FeaturedKeyword{Name: "A", Keyword: "a", Gender: types.GenderLadies, Condition: "ca"}
	b := types.FeaturedKeyword{Name: "B", Keyword: "b", Gender: types.GenderLadies, Condition: "cb"}
	c := newClassifier(a, b)

	got := c.Classify("b/a", types.GenderLadies)

	assert.Equal(t, types.KeywordTypeFeatured, got.KeywordType)
	assert.Equal(t, []string{"b", "a"}, got.SubKeywordsFeatured)
	assert.Equal(t, "B", got.FeaturedEntry.Name)
}

func TestClassify_Normal(t *testing.T) {
	c := newClassifier(kubire)

	got := c.Classify("ボブ ショート", types.GenderLadies)

	assert.Equal(t, types.KeywordTypeNormal, got.KeywordType)
	assert.Equal(t, types.ProcessingModeStandard, got.ProcessingMode)
	assert.False(t, got.IsFeatured)
	assert.Nil(t, got.FeaturedEntry)
	assert.Nil(t, got.FeaturedInfo())
	assert.Equal(t, []string{"ボブ", "ショート"}, got.SubKeywordsNormal)
}

func TestClassify_EmptyInput(t *testing.T) {
	c := newClassifier(kubire)

	for _, in := range []string{"", "   ", "\t\n", "　"} {
		got := c.Classify(in, types.GenderLadies)
		assert.Equal(t, types.KeywordTypeNormal, got.KeywordType, "%q", in)
		assert.Equal(t, types.ProcessingModeStandard, got.ProcessingMode)
		assert.False(t, got.IsFeatured)
	}
}

func TestClassify_OnlySeparators(t *testing.T) {
	c := newClassifier(kubire)

	got := c.Classify(",,", types.GenderLadies)

	assert.Equal(t, types.KeywordTypeError, got.KeywordType)
	assert.Equal(t, types.ProcessingModeFallback, got.ProcessingMode)
	assert.False(t, got.IsFeatured)
}

func TestClassify_RegistryUnavailable(t *testing.T) {
	r := featured.NewRegistry(filepath.Join(t.TempDir(), "missing.json"), zap.NewNop())
	c := NewClassifier(r, zap.NewNop())

	got := c.Classify("くびれヘア ボブ", types.GenderLadies)

	assert.Equal(t, types.KeywordTypeNormal, got.KeywordType)
	assert.Equal(t, types.ProcessingModeStandard, got.ProcessingMode)
	assert.False(t, got.IsFeatured)
	assert.Equal(t, []string{"くびれヘア", "ボブ"}, got.SubKeywordsNormal)
	assert.Empty(t, got.SubKeywordsFeatured)
}

func TestClassify_NilRegistry(t *testing.T) {
	got := NewClassifier(nil, nil).Classify("くびれヘア", types.GenderLadies)
	assert.Equal(t, types.KeywordTypeNormal, got.KeywordType)
}

func TestClassify_GenderMismatch(t *testing.T) {
	c := newClassifier(kubire)

	got := c.Classify("くびれヘア", types.GenderMens)

	assert.True(t, got.GenderMismatch)
	assert.Equal(t, types.KeywordTypeFeatured, got.KeywordType)
	assert.True(t, got.IsFeatured)

	same := c.Classify("くびれヘア", types.GenderLadies)
	assert.False(t, same.GenderMismatch)
}

func TestClassify_RecoversFromPanic(t *testing.T) {
	c := NewClassifier(panicRegistry{}, zap.NewNop())

	var got types.Classification
	require.NotPanics(t, func() {
		got = c.Classify("くびれヘア", types.GenderLadies)
	})
	assert.Equal(t, types.KeywordTypeError, got.KeywordType)
	assert.Equal(t, types.ProcessingModeFallback, got.ProcessingMode)
	assert.False(t, got.IsFeatured)
}

func TestClassify_Totality(t *testing.T) {
	c := newClassifier(kubire)
	valid := map[types.KeywordType]bool{
		types.KeywordTypeNormal:   true,
		types.KeywordTypeFeatured: true,
		types.KeywordTypeMixed:    true,
		types.KeywordTypeError:    true,
	}

	inputs := []string{"", " ", "くびれヘア", "ｸﾋﾞﾚ", "＋＋", "a b,c", "\x00", "くびれヘア,,ボブ", "🙂/🙂"}
	for _, in := range inputs {
		for _, g := range []types.Gender{types.GenderLadies, types.GenderMens, types.Gender("x")} {
			got := c.Classify(in, g)
			assert.True(t, valid[got.KeywordType], "input %q", in)
			assert.Equal(t, got.IsFeatured, got.FeaturedEntry != nil)
		}
	}
}
