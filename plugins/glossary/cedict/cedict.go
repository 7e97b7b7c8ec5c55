package cedict

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	mmap "github.com/edsrzf/mmap-go"

	"zhcheck/pkg/contract"
)

// Options 为 CC-CEDICT 释义表的可选配置。
type Options struct {
	// Path: cedict_ts.u8 路径。
	Path string `json:"path"`
	// Required: 为 true 时文件缺失视为配置错误；否则以空释义表继续。
	Required bool `json:"required"`
}

// Entry: 一行 CC-CEDICT 词条（仅保留首个释义）。
type Entry struct {
	Traditional string
	Simplified  string
	Pinyin      string
	Gloss       string
}

// Dict: 内存释义表（简繁两种写法均可查）。构建后只读，可并发查询。
type Dict struct {
	m map[string]string
}

// New 按 Options 加载；文件缺失且非必需时返回空表。
func New(opts *Options) (*Dict, error) {
	if opts == nil || opts.Path == "" {
		if opts != nil && opts.Required {
			return nil, fmt.Errorf("%w: cedict path is empty", contract.ErrConfig)
		}
		return &Dict{m: map[string]string{}}, nil
	}
	d, err := Open(opts.Path)
	if err != nil {
		if !opts.Required && errors.Is(err, fs.ErrNotExist) {
			return &Dict{m: map[string]string{}}, nil
		}
		return nil, err
	}
	return d, nil
}

// Open 以只读内存映射方式解析整个词典文件。
func Open(path string) (*Dict, error) {
	d := &Dict{m: make(map[string]string)}
	if err := Scan(path, d.add); err != nil {
		return nil, err
	}
	return d, nil
}

// Scan 内存映射 path 并对每个词条回调 fn。
func Scan(path string, fn func(Entry)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", contract.ErrConfig, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: %w", contract.ErrConfig, err)
	}
	if info.Size() == 0 {
		// 空文件无法映射
		return nil
	}
	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return fmt.Errorf("%w: mmap %s: %w", contract.ErrConfig, path, err)
	}
	defer mm.Unmap()
	Parse(mm, fn)
	return nil
}

func (d *Dict) add(e Entry) {
	// 同一写法重复出现时以后出现者为准
	d.m[e.Simplified] = e.Gloss
	if e.Traditional != e.Simplified {
		d.m[e.Traditional] = e.Gloss
	}
}

// FromEntries 由词条构建释义表（测试与导入使用）。
func FromEntries(entries []Entry) *Dict {
	d := &Dict{m: make(map[string]string, len(entries))}
	for _, e := range entries {
		d.add(e)
	}
	return d
}

// Lookup 实现 contract.Glossary。
func (d *Dict) Lookup(word string) (string, bool) {
	g, ok := d.m[word]
	return g, ok
}

// Len 返回可查询的写法数。
func (d *Dict) Len() int { return len(d.m) }

// Parse 逐行解析 CC-CEDICT 数据，对每个合法词条回调 fn。
// 数据须在回调期间保持有效；Entry 中的字符串均为拷贝。
func Parse(data []byte, fn func(Entry)) {
	for len(data) > 0 {
		var line []byte
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line, data = data[:i], data[i+1:]
		} else {
			line, data = data, nil
		}
		if e, ok := ParseLine(string(line)); ok {
			fn(e)
		}
	}
}

// ParseLine 解析 `繁体 简体 [pin1 yin1] /释义1/释义2/`；注释与残缺行返回 false。
func ParseLine(line string) (Entry, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Entry{}, false
	}
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 3 {
		return Entry{}, false
	}
	rest := parts[2]
	a := strings.IndexByte(rest, '/')
	b := strings.LastIndexByte(rest, '/')
	if a < 0 || a >= b {
		return Entry{}, false
	}
	defs := rest[a+1 : b]
	if i := strings.IndexByte(defs, '/'); i >= 0 {
		defs = defs[:i]
	}
	if defs == "" {
		return Entry{}, false
	}
	var py string
	if l, r := strings.IndexByte(rest, '['), strings.IndexByte(rest, ']'); l >= 0 && r > l && r < a {
		py = rest[l+1 : r]
	}
	return Entry{Traditional: parts[0], Simplified: parts[1], Pinyin: py, Gloss: defs}, true
}
