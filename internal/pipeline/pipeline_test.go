package pipeline

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zhcheck/internal/analysis"
	"zhcheck/internal/diag"
	"zhcheck/internal/segment"
	"zhcheck/internal/vocab"
	"zhcheck/pkg/contract"
	"zhcheck/plugins/cleaner/plain"
	"zhcheck/plugins/nlp/runes"
	"zhcheck/plugins/renderer/text"
)

// 通用桩件 ----------------------------------------------------

type file struct{ id, body string }

type stubReader struct{ files []file }

func (s stubReader) Iterate(ctx context.Context, roots []string, yield func(contract.FileID, io.ReadCloser) error) error {
	for _, f := range s.files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := yield(contract.FileID(f.id), io.NopCloser(strings.NewReader(f.body))); err != nil {
			return err
		}
	}
	return nil
}

type failingReader struct{}

func (failingReader) Iterate(context.Context, []string, func(contract.FileID, io.ReadCloser) error) error {
	return errors.New("boom")
}

// slowRunes 逐字回退；遇到 "慢" 时延迟，制造乱序完成。
type slowRunes struct{ runes.Segmenter }

func (s slowRunes) Segment(ctx context.Context, in string) ([]string, error) {
	if strings.Contains(in, "慢") {
		time.Sleep(30 * time.Millisecond)
	}
	return s.Segmenter.Segment(ctx, in)
}

type memWriter struct {
	mu   sync.Mutex
	ids  []contract.ArtifactID
	body map[contract.ArtifactID]string
	fail contract.ArtifactID
}

func (w *memWriter) Write(ctx context.Context, id contract.ArtifactID, r io.Reader) error {
	if id == w.fail {
		return contract.ErrPathInvalid
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.body == nil {
		w.body = map[contract.ArtifactID]string{}
	}
	w.ids = append(w.ids, id)
	w.body[id] = string(b)
	return nil
}

type mapGlossary map[string]string

func (g mapGlossary) Lookup(w string) (string, bool) { d, ok := g[w]; return d, ok }

type upper struct{}

func (upper) Transliterate(w string) string { return "py:" + w }

type closer struct {
	name  string
	order *[]string
}

func (c closer) Close() error { *c.order = append(*c.order, c.name); return nil }

func newComponents(t *testing.T, files []file, w *memWriter) Components {
	t.Helper()
	b := vocab.NewBuilder()
	b.AddKnown("我", "喜欢", "吃", "苹果", "你", "好")
	seg, err := segment.New(b.Build(0), slowRunes{})
	require.NoError(t, err)
	an, err := analysis.New(seg, nil)
	require.NoError(t, err)
	return Components{
		Reader:   stubReader{files: files},
		Cleaner:  plain.New(nil),
		Analyzer: an,
		Renderer: text.New(nil),
		Writer:   w,
	}
}

// UT-PIP-01: 乱序完成仍按输入顺序提交
func TestRunOrderedCommit(t *testing.T) {
	files := []file{
		{"a.txt", "我喜欢慢"},
		{"b.txt", "你好"},
		{"c.txt", "我吃苹果"},
		{"d.txt", "慢慢"},
		{"e.txt", "好"},
	}
	w := &memWriter{}
	sum, err := Run(context.Background(), newComponents(t, files, w), Settings{Inputs: []string{"x"}, Concurrency: 3}, nil)
	require.NoError(t, err)
	want := []contract.ArtifactID{"a.txt.report.txt", "b.txt.report.txt", "c.txt.report.txt", "d.txt.report.txt", "e.txt.report.txt"}
	assert.Equal(t, want, w.ids)
	require.Len(t, sum.Reports, 5)
	assert.Equal(t, contract.FileID("a.txt"), sum.Reports[0].FileID)
	assert.Equal(t, 1.0, sum.Reports[2].Comprehension)
	assert.Contains(t, w.body["c.txt.report.txt"], "Comprehension: 100.0%")
}

// UT-PIP-02: 空文件告警跳过；非允许扩展名静默忽略
func TestRunSkipsEmptyAndIgnored(t *testing.T) {
	dir := t.TempDir()
	logger := diag.NewLoggerIn(dir, "c", "info")
	defer logger.Close()
	files := []file{{"empty.txt", "  \n\t "}, {"sub.srt", "你好"}, {"ok.txt", "你好"}}
	w := &memWriter{}
	sum, err := Run(context.Background(), newComponents(t, files, w), Settings{Inputs: []string{"x"}, Concurrency: 2}, logger)
	require.NoError(t, err)
	assert.Equal(t, []contract.FileID{"empty.txt"}, sum.Skipped)
	assert.Equal(t, []contract.ArtifactID{"ok.txt.report.txt"}, w.ids)
	assert.Empty(t, sum.Failed)
}

// 指标：每个分析文件记录一次规模直方图，跳过与成功分别计数
func TestRunMetrics(t *testing.T) {
	diag.ResetMetrics()
	defer diag.ResetMetrics()
	files := []file{{"a.txt", "我喜欢慢"}, {"empty.txt", " "}, {"b.txt", "你好"}}
	_, err := Run(context.Background(), newComponents(t, files, &memWriter{}), Settings{Inputs: []string{"x"}, Concurrency: 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), diag.Counter("op.pipeline.file.success"))
	assert.Equal(t, int64(1), diag.Counter("op.pipeline.file.skip"))
	assert.Equal(t, int64(2), diag.HistogramCount("file.tokens"))
	assert.Equal(t, int64(2), diag.HistogramCount("file.fallback_runs"))
}

// UT-PIP-03: 首错取消
func TestRunFirstErrorStops(t *testing.T) {
	files := []file{{"bad.txt", "\xff\xfe"}, {"b.txt", "你好"}}
	w := &memWriter{}
	_, err := Run(context.Background(), newComponents(t, files, w), Settings{Inputs: []string{"x"}, Concurrency: 1}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, contract.ErrMalformedInput)
	assert.Empty(t, w.ids)
}

// UT-PIP-04: KeepGoing 汇总失败
func TestRunKeepGoing(t *testing.T) {
	files := []file{{"a.txt", "你好"}, {"bad.txt", "\xff"}, {"c.txt", "我"}, {"d.txt", "好"}}
	w := &memWriter{fail: "c.txt.report.txt"}
	sum, err := Run(context.Background(), newComponents(t, files, w), Settings{Inputs: []string{"x"}, Concurrency: 2, KeepGoing: true}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, contract.ErrMalformedInput)
	assert.ErrorIs(t, err, contract.ErrPathInvalid)
	require.Len(t, sum.Failed, 2)
	assert.Equal(t, contract.FileID("bad.txt"), sum.Failed[0].FileID)
	assert.Equal(t, contract.FileID("c.txt"), sum.Failed[1].FileID)
	assert.Equal(t, []contract.ArtifactID{"a.txt.report.txt", "d.txt.report.txt"}, w.ids)
}

// UT-PIP-05: 注音与释义进入报告
func TestRunAnnotates(t *testing.T) {
	files := []file{{"a.txt", "我爱苹果爱"}}
	w := &memWriter{}
	comp := newComponents(t, files, w)
	comp.Glossary = mapGlossary{"爱": "to love"}
	comp.Transliterator = upper{}
	sum, err := Run(context.Background(), comp, Settings{Inputs: []string{"x"}, Concurrency: 1, Top: 5}, nil)
	require.NoError(t, err)
	require.Len(t, sum.Reports, 1)
	rep := sum.Reports[0]
	require.Len(t, rep.Unknown, 1)
	assert.Equal(t, contract.UnknownWord{Word: "爱", Count: 2, First: 1, Pinyin: "py:爱", Gloss: "to love"}, rep.Unknown[0])
	assert.Contains(t, w.body["a.txt.report.txt"], "爱 (py:爱) : 2 - to love")
}

func TestRunReaderError(t *testing.T) {
	comp := newComponents(t, nil, &memWriter{})
	comp.Reader = failingReader{}
	_, err := Run(context.Background(), comp, Settings{Inputs: []string{"x"}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reader iterate")
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := &memWriter{}
	_, err := Run(ctx, newComponents(t, []file{{"a.txt", "你好"}}, w), Settings{Inputs: []string{"x"}}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, w.ids)
}

func TestSanity(t *testing.T) {
	_, err := Run(context.Background(), Components{}, Settings{Inputs: []string{"x"}}, nil)
	assert.Error(t, err)
	comp := newComponents(t, nil, &memWriter{})
	_, err = Run(context.Background(), comp, Settings{}, nil)
	assert.Error(t, err)
}

func TestComponentsCloseReverse(t *testing.T) {
	var order []string
	c := Components{Resources: []io.Closer{closer{"a", &order}, closer{"b", &order}}}
	require.NoError(t, c.Close())
	assert.Equal(t, []string{"b", "a"}, order)
}
