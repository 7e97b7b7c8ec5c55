package vocab

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zhcheck/pkg/contract"
)

func TestBuilderSetSemantics(t *testing.T) {
	b := NewBuilder()
	b.AddKnown("你好", "你", "你好", "")
	b.AddExcluded("好吃", "你好")
	v := b.Build(0)

	assert.Equal(t, 2, v.Len(Known))
	assert.Equal(t, 2, v.Len(Excluded))
	assert.True(t, v.Contains("你好", Known))
	assert.True(t, v.Contains("你好", Excluded), "两张表均保留原词条")
	assert.False(t, v.Contains("好", Known))
	assert.False(t, v.Contains("", Known))

	set, ok := v.Lookup("你好")
	require.True(t, ok)
	assert.Equal(t, Known, set, "同时出现时按已知处理")

	set, ok = v.Lookup("好吃")
	require.True(t, ok)
	assert.Equal(t, Excluded, set)

	_, ok = v.Lookup("吃饭")
	assert.False(t, ok)
}

func TestBuildIsSnapshot(t *testing.T) {
	b := NewBuilder()
	b.AddKnown("学生")
	v := b.Build(0)
	b.AddKnown("老师")
	assert.False(t, v.Contains("老师", Known))
	assert.True(t, b.Build(0).Contains("老师", Known))
}

func TestMaxLengths(t *testing.T) {
	b := NewBuilder()
	b.AddKnown("中华人民共和国", "你")
	b.AddExcluded("好吃")
	v := b.Build(0)
	assert.Equal(t, 7, v.MaxKnownLength())
	assert.Equal(t, 2, v.MaxExcludedLength())

	capped := b.Build(DefaultMaxWordLength)
	assert.Equal(t, 4, capped.MaxKnownLength())
	assert.Equal(t, 2, capped.MaxExcludedLength())
	assert.True(t, capped.Contains("中华人民共和国", Known))

	empty := NewBuilder().Build(4)
	assert.Equal(t, 0, empty.MaxKnownLength())
	assert.Equal(t, 0, empty.MaxExcludedLength())
}

func TestKnownChars(t *testing.T) {
	b := NewBuilder()
	b.AddKnown("你好", "好吃")
	b.AddExcluded("吃饭")
	v := b.Build(0)
	assert.Equal(t, []rune{'你', '吃', '好'}, v.KnownChars())
	assert.True(t, v.KnowsChar('好'))
	assert.False(t, v.KnowsChar('饭'))
}

func TestParseKnown(t *testing.T) {
	words, err := ParseKnown(strings.NewReader("# HSK1\n你好 谢谢\n\n  再见\t学生 \n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"你好", "谢谢", "再见", "学生"}, words)
}

func TestParseUnknown(t *testing.T) {
	in := "# 注释\n好吃\tadj. delicious\n打算 # 计划\n\n#跳过\n  天气  \n"
	words, err := ParseUnknown(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"好吃", "打算", "天气"}, words)
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestListWordFilesOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "custom.txt", "")
	writeFile(t, dir, "HSK2.txt", "")
	writeFile(t, dir, "HSKBand1.txt", "")
	writeFile(t, dir, "HSK1.txt", "")
	writeFile(t, dir, "notes.md", "")
	writeFile(t, dir, "a.txt", "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.txt"), 0o755))

	files, err := ListWordFiles(dir)
	require.NoError(t, err)
	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	assert.Equal(t, []string{"HSK1.txt", "HSK2.txt", "HSKBand1.txt", "a.txt", "custom.txt"}, names)

	single := writeFile(t, dir, "one.list", "")
	files, err = ListWordFiles(single)
	require.NoError(t, err)
	assert.Equal(t, []string{single}, files)
}

func TestLoad(t *testing.T) {
	known := t.TempDir()
	unknown := t.TempDir()
	writeFile(t, known, "HSK1.txt", "你好 好 吃\n")
	writeFile(t, known, "custom.txt", "学生\n")
	writeFile(t, unknown, "unknown.txt", "好吃\t# 复合词\n")

	v, sum, err := Load(Sources{
		KnownDirs:     []string{known},
		UnknownDirs:   []string{unknown, filepath.Join(unknown, "missing")},
		KnownWords:    []string{" 老师 ", ""},
		UnknownWords:  []string{"天气"},
		MaxWordLength: DefaultMaxWordLength,
	})
	require.NoError(t, err)
	assert.Len(t, sum.KnownFiles, 2)
	assert.Len(t, sum.UnknownFiles, 1)
	for _, w := range []string{"你好", "好", "吃", "学生", "老师"} {
		assert.True(t, v.Contains(w, Known), w)
	}
	assert.True(t, v.Contains("好吃", Excluded))
	assert.True(t, v.Contains("天气", Excluded))
}

func TestLoadMissingKnownDir(t *testing.T) {
	_, _, err := Load(Sources{KnownDirs: []string{filepath.Join(t.TempDir(), "nope")}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, contract.ErrConfig))
}
