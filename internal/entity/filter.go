package entity

import "zhcheck/pkg/contract"

// Filter 将与专名区间存在任何重叠（含部分重叠）的词元改标为 ProperNoun。
// spans 须已按 Start 升序、互不重叠（见 contract.ValidateSpans）。
// 纯函数：不修改入参，不改变词元边界；非词汇词元保持原分类。
func Filter(toks []contract.Token, spans []contract.Span) []contract.Token {
	out := make([]contract.Token, len(toks))
	copy(out, toks)
	if len(spans) == 0 {
		return out
	}
	k := 0
	for i, t := range out {
		for k < len(spans) && spans[k].End <= t.Start {
			k++
		}
		if k == len(spans) {
			break
		}
		if t.Class == contract.ClassNonLexical {
			continue
		}
		if t.Overlaps(spans[k]) {
			out[i] = t.WithClass(contract.ClassProperNoun)
		}
	}
	return out
}

// Count 返回被标为专名的词元数。
func Count(toks []contract.Token) int {
	n := 0
	for _, t := range toks {
		if t.Class == contract.ClassProperNoun {
			n++
		}
	}
	return n
}
