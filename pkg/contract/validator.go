package contract

import (
	"fmt"
	"sort"
	"strings"
)

// 校验库函数（纯函数，无 I/O）：
// - ValidatePartition: 词元序列须从 0 起连续覆盖 [0,n)，无空洞、无重叠
// - ValidatePieces:    通用分词器输出须按序拼接恰为输入，且无空片段
// - ValidateSpans:     专名区间须位于 [0,n) 内、非空且互不重叠；返回按 Start 排序的拷贝

func ValidatePartition(n int, toks []Token) error {
	if n == 0 {
		if len(toks) != 0 {
			return fmt.Errorf("%w: %d tokens for empty text", ErrPartitionInvalid, len(toks))
		}
		return nil
	}
	expect := 0
	for i, t := range toks {
		if t.Start != expect {
			return fmt.Errorf("%w: token %d starts at %d, want %d", ErrPartitionInvalid, i, t.Start, expect)
		}
		if t.End <= t.Start {
			return fmt.Errorf("%w: token %d is empty", ErrPartitionInvalid, i)
		}
		expect = t.End
	}
	if expect != n {
		return fmt.Errorf("%w: covered %d of %d runes", ErrPartitionInvalid, expect, n)
	}
	return nil
}

func ValidatePieces(run string, pieces []string) error {
	var sb strings.Builder
	sb.Grow(len(run))
	for i, p := range pieces {
		if p == "" {
			return fmt.Errorf("%w: empty piece %d", ErrPartitionInvalid, i)
		}
		sb.WriteString(p)
	}
	if sb.String() != run {
		return fmt.Errorf("%w: pieces do not reproduce %q", ErrPartitionInvalid, run)
	}
	return nil
}

func ValidateSpans(n int, spans []Span) ([]Span, error) {
	if len(spans) == 0 {
		return nil, nil
	}
	out := make([]Span, len(spans))
	copy(out, spans)
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	prevEnd := 0
	for i, s := range out {
		if s.Start < 0 || s.End > n || s.Start >= s.End {
			return nil, fmt.Errorf("%w: [%d,%d) outside [0,%d)", ErrSpanInvalid, s.Start, s.End, n)
		}
		if i > 0 && s.Start < prevEnd {
			return nil, fmt.Errorf("%w: [%d,%d) overlaps previous span", ErrSpanInvalid, s.Start, s.End)
		}
		prevEnd = s.End
	}
	return out, nil
}
