package pinyin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransliterate(t *testing.T) {
	p, err := New(nil)
	require.NoError(t, err)
	assert.Equal(t, "zhōng guó", p.Transliterate("中国"))
	assert.Equal(t, "", p.Transliterate(""))
}

func TestStyles(t *testing.T) {
	p, err := New(&Options{Style: "tone3"})
	require.NoError(t, err)
	assert.Equal(t, "zhong1 guo2", p.Transliterate("中国"))

	sep := "-"
	p, err = New(&Options{Style: "normal", Separator: &sep})
	require.NoError(t, err)
	assert.Equal(t, "zhong-guo", p.Transliterate("中国"))

	_, err = New(&Options{Style: "ipa"})
	assert.Error(t, err)
}

func TestNonHanKept(t *testing.T) {
	p, err := New(nil)
	require.NoError(t, err)
	assert.Equal(t, "の māo", p.Transliterate("の猫"))
}
