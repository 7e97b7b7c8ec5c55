package vocab

import (
	"sort"
	"unicode/utf8"
)

// Set 标识词表集合。
type Set uint8

const (
	// Known: 已掌握词表。
	Known Set = iota
	// Excluded: 显式未掌握的复合词表。
	Excluded
)

func (s Set) String() string {
	if s == Known {
		return "known"
	}
	return "excluded"
}

// Vocabulary: 已知词 + 排除复合词两张只读集合，按 rune 长度分桶。
// 构建后不可变，可被任意多个分析并发读取。
// 同时出现在两张表的词在查询时按已知处理（不在构建期合并或删除）。
type Vocabulary struct {
	known    []map[string]struct{} // 下标 = rune 长度
	excluded []map[string]struct{}
	nKnown   int
	nExcl    int
	maxLen   int // 窗口上限；<=0 表示不设上限
	chars    map[rune]struct{}
}

// Builder 以集合语义累积词条；重复词、空串自动折叠。
// 非并发安全；Build 之后可继续复用，但已产出的 Vocabulary 不受影响。
type Builder struct {
	known    map[string]struct{}
	excluded map[string]struct{}
}

// NewBuilder 创建空 Builder。
func NewBuilder() *Builder {
	return &Builder{known: make(map[string]struct{}), excluded: make(map[string]struct{})}
}

// AddKnown 追加已知词。
func (b *Builder) AddKnown(words ...string) {
	for _, w := range words {
		if w != "" {
			b.known[w] = struct{}{}
		}
	}
}

// AddExcluded 追加排除复合词。
func (b *Builder) AddExcluded(words ...string) {
	for _, w := range words {
		if w != "" {
			b.excluded[w] = struct{}{}
		}
	}
}

// Build 冻结当前内容。maxLen > 0 时限制匹配窗口（词条仍完整保留）。
func (b *Builder) Build(maxLen int) *Vocabulary {
	v := &Vocabulary{maxLen: maxLen, chars: make(map[rune]struct{})}
	v.known, v.nKnown = bucket(b.known)
	v.excluded, v.nExcl = bucket(b.excluded)
	for w := range b.known {
		for _, r := range w {
			v.chars[r] = struct{}{}
		}
	}
	return v
}

func bucket(src map[string]struct{}) ([]map[string]struct{}, int) {
	var out []map[string]struct{}
	for w := range src {
		n := utf8.RuneCountInString(w)
		for len(out) <= n {
			out = append(out, nil)
		}
		if out[n] == nil {
			out[n] = make(map[string]struct{})
		}
		out[n][w] = struct{}{}
	}
	return out, len(src)
}

func (v *Vocabulary) table(s Set) []map[string]struct{} {
	if s == Known {
		return v.known
	}
	return v.excluded
}

// Contains 精确匹配；输入须已由清洗阶段规范化。
func (v *Vocabulary) Contains(word string, s Set) bool {
	if v == nil {
		return false
	}
	t := v.table(s)
	n := utf8.RuneCountInString(word)
	if n == 0 || n >= len(t) || t[n] == nil {
		return false
	}
	_, ok := t[n][word]
	return ok
}

// Lookup 返回词所属集合；已知优先。
func (v *Vocabulary) Lookup(word string) (Set, bool) {
	if v.Contains(word, Known) {
		return Known, true
	}
	if v.Contains(word, Excluded) {
		return Excluded, true
	}
	return 0, false
}

func (v *Vocabulary) maxOf(s Set) int {
	if v == nil {
		return 0
	}
	n := len(v.table(s)) - 1
	if n < 0 {
		n = 0
	}
	if v.maxLen > 0 && n > v.maxLen {
		n = v.maxLen
	}
	return n
}

// MaxKnownLength 返回已知词匹配窗口（rune）。
func (v *Vocabulary) MaxKnownLength() int { return v.maxOf(Known) }

// MaxExcludedLength 返回排除词匹配窗口（rune）。
func (v *Vocabulary) MaxExcludedLength() int { return v.maxOf(Excluded) }

// Len 返回集合词条数。
func (v *Vocabulary) Len(s Set) int {
	if v == nil {
		return 0
	}
	if s == Known {
		return v.nKnown
	}
	return v.nExcl
}

// KnowsChar 判断单字是否出现在任一已知词中。
func (v *Vocabulary) KnowsChar(r rune) bool {
	if v == nil {
		return false
	}
	_, ok := v.chars[r]
	return ok
}

// KnownChars 返回已知单字集合（升序拷贝）。
func (v *Vocabulary) KnownChars() []rune {
	if v == nil {
		return nil
	}
	out := make([]rune, 0, len(v.chars))
	for r := range v.chars {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
