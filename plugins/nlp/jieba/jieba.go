package jieba

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/yanyiwu/gojieba"

	"zhcheck/pkg/contract"
)

// Options 为 jieba 分词/专名识别的可选配置。
type Options struct {
	// DictDir: 词典目录（含 jieba.dict.utf8、hmm_model.utf8 等）；为空使用 gojieba 自带词典。
	DictDir string `json:"dict_dir"`
	// UserDict: 额外用户词典路径，覆盖 DictDir 中的 user.dict.utf8。
	UserDict string `json:"user_dict"`
	// HMM: 是否启用 HMM 新词发现；默认 true。
	HMM *bool `json:"hmm"`
	// Tags: 视为专名的词性标签；默认 nr/nrfg/nrt/ns/nt。
	Tags []string `json:"tags"`
}

var defaultTags = []string{"nr", "nrfg", "nrt", "ns", "nt"}

// model: 进程内共享的 gojieba 句柄（按词典路径复用，引用计数释放）。
type model struct {
	key  string
	j    *gojieba.Jieba
	refs int
}

var (
	modelsMu sync.Mutex
	models   = map[string]*model{}
)

func dictPaths(o *Options) []string {
	if o == nil || (o.DictDir == "" && o.UserDict == "") {
		return nil
	}
	paths := []string{gojieba.DICT_PATH, gojieba.HMM_PATH, gojieba.USER_DICT_PATH, gojieba.IDF_PATH, gojieba.STOP_WORDS_PATH}
	if o.DictDir != "" {
		paths = []string{
			filepath.Join(o.DictDir, "jieba.dict.utf8"),
			filepath.Join(o.DictDir, "hmm_model.utf8"),
			filepath.Join(o.DictDir, "user.dict.utf8"),
			filepath.Join(o.DictDir, "idf.utf8"),
			filepath.Join(o.DictDir, "stop_words.utf8"),
		}
	}
	if o.UserDict != "" {
		paths[2] = o.UserDict
	}
	return paths
}

// acquire 获取（必要时加载）共享句柄。词典加载只发生一次。
func acquire(o *Options) *model {
	paths := dictPaths(o)
	key := strings.Join(paths, "|")
	modelsMu.Lock()
	defer modelsMu.Unlock()
	if m, ok := models[key]; ok {
		m.refs++
		return m
	}
	m := &model{key: key, j: gojieba.NewJieba(paths...), refs: 1}
	models[key] = m
	return m
}

func (m *model) release() {
	modelsMu.Lock()
	defer modelsMu.Unlock()
	m.refs--
	if m.refs == 0 {
		m.j.Free()
		delete(models, m.key)
	}
}

type handle struct {
	once sync.Once
	m    *model
}

// Close 释放共享句柄引用；重复调用安全。
func (h *handle) Close() error {
	h.once.Do(func() { h.m.release() })
	return nil
}

// Segmenter 基于 jieba 精确模式实现 contract.GeneralSegmenter。
type Segmenter struct {
	handle
	hmm bool
}

// NewSegmenter 创建 Segmenter。
func NewSegmenter(opts *Options) *Segmenter {
	hmm := true
	if opts != nil && opts.HMM != nil {
		hmm = *opts.HMM
	}
	return &Segmenter{handle: handle{m: acquire(opts)}, hmm: hmm}
}

// Segment 对无法由词表覆盖的子串做统计切分。
func (s *Segmenter) Segment(ctx context.Context, run string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if run == "" {
		return nil, nil
	}
	words := s.m.j.Cut(run, s.hmm)
	if len(words) == 0 {
		return nil, errors.New("jieba: empty cut result")
	}
	return words, nil
}

// Recognizer 基于 jieba 词性标注实现 contract.EntityRecognizer。
type Recognizer struct {
	handle
	tags map[string]struct{}
}

// NewRecognizer 创建 Recognizer。
func NewRecognizer(opts *Options) *Recognizer {
	tags := defaultTags
	if opts != nil && len(opts.Tags) > 0 {
		tags = opts.Tags
	}
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[strings.TrimSpace(t)] = struct{}{}
	}
	return &Recognizer{handle: handle{m: acquire(opts)}, tags: set}
}

// FindProperNouns 返回专名区间（rune 偏移），相邻专名合并为一个区间。
func (r *Recognizer) FindProperNouns(ctx context.Context, text string) ([]contract.Span, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}
	return SpansFromTags(text, r.m.j.Tag(text), r.tags), nil
}

// SplitTag 拆分 "词/词性"；以最后一个 '/' 为界，兼容词本身含 '/'。
func SplitTag(s string) (word, pos string) {
	i := strings.LastIndexByte(s, '/')
	if i <= 0 {
		return s, ""
	}
	return s[:i], s[i+1:]
}

// SpansFromTags 将标注结果定位回原文，收集命中 tags 的区间。
// 标注词在原文中按序查找；找不到的词跳过，不影响后续定位。
func SpansFromTags(text string, tagged []string, tags map[string]struct{}) []contract.Span {
	var out []contract.Span
	byteOff, runeOff := 0, 0
	for _, tw := range tagged {
		w, pos := SplitTag(tw)
		if w == "" {
			continue
		}
		i := strings.Index(text[byteOff:], w)
		if i < 0 {
			continue
		}
		runeOff += utf8.RuneCountInString(text[byteOff : byteOff+i])
		start := runeOff
		end := start + utf8.RuneCountInString(w)
		byteOff += i + len(w)
		runeOff = end
		if _, ok := tags[pos]; !ok {
			continue
		}
		if n := len(out); n > 0 && out[n-1].End == start {
			out[n-1].End = end
			continue
		}
		out = append(out, contract.Span{Start: start, End: end})
	}
	return out
}
