package contract

// FileID: 逻辑文档ID（通常为路径，需规范化，跨平台一致）。
type FileID string

// Class: 词元分类标签。
type Class uint8

const (
	// ClassKnown: 命中已知词表。
	ClassKnown Class = iota
	// ClassExcluded: 命中排除复合词表（显式未掌握，即使其单字已知）。
	ClassExcluded
	// ClassFallback: 词表未覆盖，由通用分词器切出。
	ClassFallback
	// ClassNonLexical: 标点/数字/拉丁字母等非词汇字符。
	ClassNonLexical
	// ClassProperNoun: 与专名区间重叠，不参与理解度统计。
	ClassProperNoun
)

func (c Class) String() string {
	switch c {
	case ClassKnown:
		return "known"
	case ClassExcluded:
		return "excluded"
	case ClassFallback:
		return "fallback"
	case ClassNonLexical:
		return "non_lexical"
	case ClassProperNoun:
		return "proper_noun"
	default:
		return "unknown"
	}
}

// Countable 表示该分类是否计入理解度分母。
func (c Class) Countable() bool {
	return c == ClassKnown || c == ClassExcluded || c == ClassFallback
}

// Unknown 表示该分类是否计入生词频次表。
func (c Class) Unknown() bool {
	return c == ClassExcluded || c == ClassFallback
}

// Span: 半开区间 [Start, End)，单位为 rune 偏移（非字节）。
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len 返回区间长度（rune 数）。
func (s Span) Len() int { return s.End - s.Start }

// Token: 词元。创建后不可变；重新分类通过拷贝完成。
// Start/End 为清洗后文本中的 rune 偏移。
type Token struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Class Class  `json:"class"`
}

// Span 返回词元覆盖的区间。
func (t Token) Span() Span { return Span{Start: t.Start, End: t.End} }

// Overlaps 判断词元与区间是否存在任何重叠（部分重叠亦算）。
func (t Token) Overlaps(s Span) bool {
	return t.Start < s.End && s.Start < t.End
}

// WithClass 返回重新分类后的拷贝。
func (t Token) WithClass(c Class) Token {
	t.Class = c
	return t
}

// Assessment: 理解度对应的难度评估档位。
type Assessment struct {
	Mark  string `json:"mark"`
	Label string `json:"label"`
}

// UnknownWord: 生词及其出现次数；Pinyin/Gloss 仅对展示范围内的条目填充。
type UnknownWord struct {
	Word   string `json:"word"`
	Count  int    `json:"count"`
	First  int    `json:"first"`
	Pinyin string `json:"pinyin,omitempty"`
	Gloss  string `json:"gloss,omitempty"`
}

// Report: 单个输入文本的只读统计快照。
// 约束：
//   - Total/Known/Unique 仅统计可计数词元（known/excluded/fallback）；
//   - Total==0 时 Applicable=false，Comprehension 无意义；
//   - Unknown 按频次降序、首现位置升序排列；Shown 为展示条数（<= len(Unknown)）。
type Report struct {
	FileID        FileID        `json:"file_id"`
	Total         int           `json:"word_count"`
	Unique        int           `json:"unique_words"`
	Known         int           `json:"known_words"`
	ProperNouns   int           `json:"proper_nouns"`
	Comprehension float64       `json:"comprehension"`
	Applicable    bool          `json:"applicable"`
	Assessment    Assessment    `json:"assessment"`
	Unknown       []UnknownWord `json:"unknown"`
	Shown         int           `json:"shown"`
}

// Percent 返回百分比形式的理解度；不适用时返回 0。
func (r Report) Percent() float64 {
	if !r.Applicable {
		return 0
	}
	return r.Comprehension * 100
}
