package analysis

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"zhcheck/internal/entity"
	"zhcheck/internal/score"
	"zhcheck/internal/segment"
	"zhcheck/pkg/contract"
)

// Analyzer 串联切分、专名过滤与统计，产出单文件报告。
// 自身无可变状态，可被多个 worker 共享。
type Analyzer struct {
	seg        *segment.Segmenter
	recognizer contract.EntityRecognizer // 可为空：不做专名排除
}

// Result 为一次分析的完整产物。
type Result struct {
	Report       contract.Report
	Tokens       []contract.Token
	FallbackRuns int
}

// New 创建 Analyzer。
func New(seg *segment.Segmenter, rec contract.EntityRecognizer) (*Analyzer, error) {
	if seg == nil {
		return nil, errors.New("analysis: nil segmenter")
	}
	return &Analyzer{seg: seg, recognizer: rec}, nil
}

// Analyze 分析清洗后的文本。
// 错误：非法 UTF-8 -> ErrMalformedInput；识别器失败 -> ErrRecognizerFailed；
// 回退分词失败或覆盖违例按原样上抛。
func (a *Analyzer) Analyze(ctx context.Context, id contract.FileID, text string) (Result, error) {
	if !utf8.ValidString(text) {
		return Result{}, fmt.Errorf("%w: %s", contract.ErrMalformedInput, id)
	}
	toks, st, err := a.seg.SegmentStats(ctx, text)
	if err != nil {
		return Result{}, err
	}
	n := utf8.RuneCountInString(text)
	if err := contract.ValidatePartition(n, toks); err != nil {
		return Result{}, err
	}
	if a.recognizer != nil && n > 0 {
		raw, err := a.recognizer.FindProperNouns(ctx, text)
		if err != nil {
			return Result{}, fmt.Errorf("%w: %v", contract.ErrRecognizerFailed, err)
		}
		spans, err := contract.ValidateSpans(n, raw)
		if err != nil {
			return Result{}, err
		}
		toks = entity.Filter(toks, spans)
	}
	return Result{Report: score.Report(id, toks), Tokens: toks, FallbackRuns: st.FallbackRuns}, nil
}

// Annotate 为前 top 个生词填充拼音与释义（查不到则留空），并截断过长释义。
// top <= 0 表示全部展示；maxRunes <= 0 表示不截断。
func Annotate(rep contract.Report, g contract.Glossary, tr contract.Transliterator, top, maxRunes int) contract.Report {
	shown := len(rep.Unknown)
	if top > 0 && top < shown {
		shown = top
	}
	words := make([]contract.UnknownWord, len(rep.Unknown))
	copy(words, rep.Unknown)
	for i := 0; i < shown; i++ {
		w := &words[i]
		if tr != nil {
			w.Pinyin = tr.Transliterate(w.Word)
		}
		if g != nil {
			if d, ok := g.Lookup(w.Word); ok {
				w.Gloss = Truncate(d, maxRunes)
			}
		}
	}
	rep.Unknown = words
	rep.Shown = shown
	return rep
}

// Truncate 超过 limit 个字符时截为 limit-3 个字符并追加 "..."。
func Truncate(s string, limit int) string {
	if limit <= 3 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit-3]) + "..."
}
