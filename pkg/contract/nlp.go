package contract

import "context"

// GeneralSegmenter: 通用（统计）分词器，仅用于词表无法覆盖的子串。
// 约束：返回的片段按序拼接后必须恰好等于输入，且不得含空片段。
// 实现可共享只读模型，须支持并发调用。
type GeneralSegmenter interface {
	Segment(ctx context.Context, s string) ([]string, error)
}

// EntityRecognizer: 专名识别器。
// 返回互不重叠、位于文本范围内的专名区间（rune 偏移，半开）。
type EntityRecognizer interface {
	FindProperNouns(ctx context.Context, text string) ([]Span, error)
}

// Glossary: 释义查询（精确匹配）。
type Glossary interface {
	Lookup(word string) (gloss string, ok bool)
}

// Transliterator: 注音（拼音）转写。
type Transliterator interface {
	Transliterate(word string) string
}
