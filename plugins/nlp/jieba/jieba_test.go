package jieba

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zhcheck/pkg/contract"
)

func TestSplitTag(t *testing.T) {
	w, p := SplitTag("北京/ns")
	assert.Equal(t, "北京", w)
	assert.Equal(t, "ns", p)

	w, p = SplitTag("//x")
	assert.Equal(t, "/", w)
	assert.Equal(t, "x", p)

	w, p = SplitTag("无词性")
	assert.Equal(t, "无词性", w)
	assert.Empty(t, p)
}

func TestSpansFromTags(t *testing.T) {
	tags := map[string]struct{}{"nr": {}, "ns": {}}
	text := "我和张三在北京天津玩"
	tagged := []string{"我/r", "和/c", "张三/nr", "在/p", "北京/ns", "天津/ns", "玩/v"}
	got := SpansFromTags(text, tagged, tags)
	assert.Equal(t, []contract.Span{{Start: 2, End: 4}, {Start: 5, End: 9}}, got)
}

func TestSpansFromTagsSkipsUnlocatable(t *testing.T) {
	tags := map[string]struct{}{"ns": {}}
	got := SpansFromTags("去上海", []string{"去/v", "幻影/x", "上海/ns"}, tags)
	assert.Equal(t, []contract.Span{{Start: 1, End: 3}}, got)
	assert.Empty(t, SpansFromTags("", nil, tags))
}

func TestDictPaths(t *testing.T) {
	assert.Nil(t, dictPaths(nil))
	assert.Nil(t, dictPaths(&Options{}))
	p := dictPaths(&Options{DictDir: "/d", UserDict: "/u.txt"})
	require.Len(t, p, 5)
	assert.Equal(t, "/d/jieba.dict.utf8", p[0])
	assert.Equal(t, "/u.txt", p[2])
}

// 使用 gojieba 自带词典的集成测试。
func TestJiebaCollaborators(t *testing.T) {
	if testing.Short() {
		t.Skip("加载 jieba 词典较慢")
	}
	seg := NewSegmenter(nil)
	defer seg.Close()
	rec := NewRecognizer(nil)
	defer rec.Close()
	assert.Same(t, seg.m, rec.m, "同一词典应共享句柄")

	run := "我们今天去北京天安门"
	pieces, err := seg.Segment(context.Background(), run)
	require.NoError(t, err)
	require.NoError(t, contract.ValidatePieces(run, pieces))

	text := "我在北京工作"
	spans, err := rec.FindProperNouns(context.Background(), text)
	require.NoError(t, err)
	_, err = contract.ValidateSpans(len([]rune(text)), spans)
	require.NoError(t, err)
	var found bool
	for _, s := range spans {
		if strings.Contains(string([]rune(text)[s.Start:s.End]), "北京") {
			found = true
		}
	}
	assert.True(t, found, "应识别地名 北京: %v", spans)
}
