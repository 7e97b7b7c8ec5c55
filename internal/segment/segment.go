package segment

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"zhcheck/internal/vocab"
	"zhcheck/pkg/contract"
)

// Segmenter: 词表感知的分词器。
//
// 在每个位置从左到右：
//  1. 非词汇字符单独成词（NonLexical）；
//  2. 窗口长度从大到小尝试，同一长度先查已知再查排除，首个命中即采用；
//     即跨两表取最长匹配，等长时已知优先；
//  3. 无任何匹配时，累积到下一个可匹配位置或非词汇字符为止，整段交给通用分词器。
//
// 输出词元序列完整、无重叠地覆盖输入。Segmenter 不持有可变状态，可并发使用。
type Segmenter struct {
	vocab    *vocab.Vocabulary
	fallback contract.GeneralSegmenter
}

// Stats 为一次切分的附带计数，供上层观测。
type Stats struct {
	FallbackRuns int
}

// New 构建 Segmenter；fallback 不可为空。
func New(v *vocab.Vocabulary, fallback contract.GeneralSegmenter) (*Segmenter, error) {
	if v == nil {
		return nil, errors.New("segment: nil vocabulary")
	}
	if fallback == nil {
		return nil, errors.New("segment: nil fallback segmenter")
	}
	return &Segmenter{vocab: v, fallback: fallback}, nil
}

// Segment 切分清洗后的文本。
func (s *Segmenter) Segment(ctx context.Context, text string) ([]contract.Token, error) {
	toks, _, err := s.SegmentStats(ctx, text)
	return toks, err
}

// SegmentStats 与 Segment 相同，另返回回退次数。
func (s *Segmenter) SegmentStats(ctx context.Context, text string) ([]contract.Token, Stats, error) {
	var st Stats
	if text == "" {
		return nil, st, nil
	}
	if !utf8.ValidString(text) {
		return nil, st, contract.ErrMalformedInput
	}
	rs := []rune(text)
	n := len(rs)
	// lexEnd[i]: 自 i 起连续词汇字符的终点（不含）
	lexEnd := make([]int, n+1)
	lexEnd[n] = n
	for i := n - 1; i >= 0; i-- {
		if IsNonLexical(rs[i]) {
			lexEnd[i] = i
		} else {
			lexEnd[i] = lexEnd[i+1]
		}
	}

	out := make([]contract.Token, 0, n/2+1)
	i := 0
	for i < n {
		if lexEnd[i] == i {
			out = append(out, contract.Token{Text: string(rs[i]), Start: i, End: i + 1, Class: contract.ClassNonLexical})
			i++
			continue
		}
		if tok, ok := s.match(rs, i, lexEnd[i]); ok {
			out = append(out, tok)
			i = tok.End
			continue
		}
		j := i + 1
		for j < lexEnd[i] {
			if _, ok := s.match(rs, j, lexEnd[i]); ok {
				break
			}
			j++
		}
		run := string(rs[i:j])
		pieces, err := s.fallback.Segment(ctx, run)
		if err != nil {
			return nil, st, fmt.Errorf("%w: %q: %v", contract.ErrFallbackFailed, run, err)
		}
		if err := contract.ValidatePieces(run, pieces); err != nil {
			return nil, st, err
		}
		st.FallbackRuns++
		pos := i
		for _, p := range pieces {
			l := utf8.RuneCountInString(p)
			c := contract.ClassFallback
			if !IsCountableWord(p) {
				c = contract.ClassNonLexical
			}
			out = append(out, contract.Token{Text: p, Start: pos, End: pos + l, Class: c})
			pos += l
		}
		i = j
	}
	return out, st, nil
}

// match 在 [i, end) 范围内尝试词表匹配。
func (s *Segmenter) match(rs []rune, i, end int) (contract.Token, bool) {
	mk := s.vocab.MaxKnownLength()
	me := s.vocab.MaxExcludedLength()
	limit := mk
	if me > limit {
		limit = me
	}
	if end-i < limit {
		limit = end - i
	}
	for l := limit; l >= 1; l-- {
		w := string(rs[i : i+l])
		if l <= mk && s.vocab.Contains(w, vocab.Known) {
			return contract.Token{Text: w, Start: i, End: i + l, Class: contract.ClassKnown}, true
		}
		if l <= me && s.vocab.Contains(w, vocab.Excluded) {
			return contract.Token{Text: w, Start: i, End: i + l, Class: contract.ClassExcluded}, true
		}
	}
	return contract.Token{}, false
}
