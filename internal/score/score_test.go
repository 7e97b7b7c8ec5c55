package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zhcheck/pkg/contract"
)

type wc struct {
	w string
	c contract.Class
}

func seq(ws ...wc) []contract.Token {
	var out []contract.Token
	pos := 0
	for _, s := range ws {
		n := len([]rune(s.w))
		out = append(out, contract.Token{Text: s.w, Start: pos, End: pos + n, Class: s.c})
		pos += n
	}
	return out
}

func TestComprehensionArithmetic(t *testing.T) {
	var ws []wc
	for i := 0; i < 9; i++ {
		ws = append(ws, wc{"好", contract.ClassKnown})
	}
	ws = append(ws, wc{"难", contract.ClassFallback}, wc{"。", contract.ClassNonLexical})
	st := Score(seq(ws...))
	assert.Equal(t, 10, st.Total)
	assert.Equal(t, 9, st.Known)
	assert.Equal(t, 2, st.Unique)
	require.True(t, st.Applicable)
	assert.InDelta(t, 0.9, st.Comprehension, 1e-9)
}

func TestDegenerateInput(t *testing.T) {
	st := Score(seq(wc{"Hi", contract.ClassNonLexical}, wc{"！", contract.ClassNonLexical}))
	assert.Equal(t, 0, st.Total)
	assert.False(t, st.Applicable)
	assert.Zero(t, st.Comprehension)

	rep := Report("x.txt", nil)
	assert.False(t, rep.Applicable)
	assert.Equal(t, "N/A", rep.Assessment.Label)
	assert.Empty(t, rep.Unknown)
}

func TestProperNounsExcluded(t *testing.T) {
	toks := seq(
		wc{"我", contract.ClassKnown},
		wc{"去", contract.ClassKnown},
		wc{"北京", contract.ClassProperNoun},
	)
	st := Score(toks)
	assert.Equal(t, 2, st.Total)
	assert.Equal(t, 2, st.Known)
	assert.Equal(t, 1, st.ProperNouns)
	assert.Empty(t, Aggregate(toks))
}

func TestAggregateOrdering(t *testing.T) {
	toks := seq(
		wc{"天气", contract.ClassFallback},
		wc{"好吃", contract.ClassExcluded},
		wc{"我", contract.ClassKnown},
		wc{"好吃", contract.ClassExcluded},
		wc{"打算", contract.ClassFallback},
		wc{"天气", contract.ClassFallback},
		wc{"散步", contract.ClassFallback},
	)
	got := Aggregate(toks)
	require.Len(t, got, 4)
	assert.Equal(t, []string{"天气", "好吃", "打算", "散步"},
		[]string{got[0].Word, got[1].Word, got[2].Word, got[3].Word})
	assert.Equal(t, 2, got[0].Count)
	assert.Equal(t, 0, got[0].First)
	assert.Equal(t, 1, got[3].Count)
}

func TestAssessBands(t *testing.T) {
	cases := []struct {
		pct   float64
		label string
	}{
		{0, "Too Difficult"},
		{81.9, "Too Difficult"},
		{82, "Very Challenging"},
		{88.5, "Challenging"},
		{89, "Optimal (i+1)"},
		{94.99, "Comfortable"},
		{95, "Too Easy"},
		{100, "Too Easy"},
	}
	for _, c := range cases {
		assert.Equal(t, c.label, Assess(c.pct, true).Label, "pct=%v", c.pct)
	}
	assert.Equal(t, "🟢", Assess(90, true).Mark)
}

func TestReport(t *testing.T) {
	toks := seq(wc{"你好", contract.ClassKnown}, wc{"天气", contract.ClassFallback})
	rep := Report("a.txt", toks)
	assert.Equal(t, contract.FileID("a.txt"), rep.FileID)
	assert.InDelta(t, 50.0, rep.Percent(), 1e-9)
	assert.Equal(t, "Too Difficult", rep.Assessment.Label)
	assert.Equal(t, 1, rep.Shown)
}
