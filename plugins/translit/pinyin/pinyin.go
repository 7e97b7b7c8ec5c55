package pinyin

import (
	"fmt"
	"strings"

	gopinyin "github.com/mozillazg/go-pinyin"
)

// Options 为拼音转写的可选配置。
type Options struct {
	// Style: "tone"（默认，声调符号）、"tone3"（数字声调）、"normal"（无声调）。
	Style string `json:"style"`
	// Separator: 音节分隔符；默认空格。
	Separator *string `json:"separator"`
}

// Pinyin 实现 contract.Transliterator。非汉字原样保留。
type Pinyin struct {
	args gopinyin.Args
	sep  string
}

// New 创建 Pinyin。
func New(opts *Options) (*Pinyin, error) {
	a := gopinyin.NewArgs()
	a.Style = gopinyin.Tone
	if opts != nil {
		switch strings.ToLower(strings.TrimSpace(opts.Style)) {
		case "", "tone":
		case "tone3":
			a.Style = gopinyin.Tone3
		case "normal":
			a.Style = gopinyin.Normal
		default:
			return nil, fmt.Errorf("pinyin: unknown style %q", opts.Style)
		}
	}
	a.Fallback = func(r rune, _ gopinyin.Args) []string { return []string{string(r)} }
	sep := " "
	if opts != nil && opts.Separator != nil {
		sep = *opts.Separator
	}
	return &Pinyin{args: a, sep: sep}, nil
}

// Transliterate 每个字取首个读音。
func (p *Pinyin) Transliterate(word string) string {
	syl := gopinyin.Pinyin(word, p.args)
	parts := make([]string, 0, len(syl))
	for _, s := range syl {
		if len(s) > 0 {
			parts = append(parts, s[0])
		}
	}
	return strings.Join(parts, p.sep)
}
