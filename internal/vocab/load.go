package vocab

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"zhcheck/pkg/contract"
)

// DefaultMaxWordLength: 默认匹配窗口（rune）。
const DefaultMaxWordLength = 4

// Sources 描述词表来源。目录内仅读取 *.txt；也可直接给出单个文件。
type Sources struct {
	KnownDirs     []string
	UnknownDirs   []string
	KnownWords    []string // 自定义已知词（逐条）
	UnknownWords  []string // 自定义未知词（逐条）
	MaxWordLength int
}

// Summary 记录一次加载读取到的文件，便于上层记录日志。
type Summary struct {
	KnownFiles   []string
	UnknownFiles []string
}

// hskOrder: 常见 HSK 词表文件的固定顺序，其余文件按名称排在其后。
var hskOrder = []string{
	"HSK1.txt", "HSK2.txt", "HSK3.txt", "HSK4.txt", "HSK5.txt", "HSK6.txt",
	"HSKBand1.txt", "HSKBand2.txt", "HSKBand3.txt", "HSKBand4.txt",
	"HSKBand5.txt", "HSKBand6.txt", "HSKBand7-9.txt",
}

// Load 读取全部来源并构建 Vocabulary。
// 已知词来源缺失视为配置错误；未知词来源缺失则跳过。
func Load(src Sources) (*Vocabulary, Summary, error) {
	var sum Summary
	b := NewBuilder()
	for _, dir := range src.KnownDirs {
		files, err := ListWordFiles(dir)
		if err != nil {
			return nil, sum, fmt.Errorf("%w: known words %q: %v", contract.ErrConfig, dir, err)
		}
		for _, p := range files {
			words, err := readFile(p, ParseKnown)
			if err != nil {
				return nil, sum, err
			}
			b.AddKnown(words...)
			sum.KnownFiles = append(sum.KnownFiles, p)
		}
	}
	for _, dir := range src.UnknownDirs {
		files, err := ListWordFiles(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, sum, fmt.Errorf("%w: unknown words %q: %v", contract.ErrConfig, dir, err)
		}
		for _, p := range files {
			words, err := readFile(p, ParseUnknown)
			if err != nil {
				return nil, sum, err
			}
			b.AddExcluded(words...)
			sum.UnknownFiles = append(sum.UnknownFiles, p)
		}
	}
	b.AddKnown(trimAll(src.KnownWords)...)
	b.AddExcluded(trimAll(src.UnknownWords)...)
	return b.Build(src.MaxWordLength), sum, nil
}

// ListWordFiles 列出目录下的 *.txt（HSK 固定顺序优先）；root 为文件时原样返回。
func ListWordFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}
	ents, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	present := make(map[string]bool)
	var others []string
	for _, e := range ents {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		present[e.Name()] = true
	}
	var out []string
	for _, name := range hskOrder {
		if present[name] {
			out = append(out, filepath.Join(root, name))
			delete(present, name)
		}
	}
	for name := range present {
		others = append(others, name)
	}
	sort.Strings(others)
	for _, name := range others {
		out = append(out, filepath.Join(root, name))
	}
	return out, nil
}

func readFile(p string, parse func(io.Reader) ([]string, error)) ([]string, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contract.ErrConfig, err)
	}
	defer f.Close()
	words, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", contract.ErrConfig, p, err)
	}
	return words, nil
}

func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return sc
}

// ParseKnown 解析已知词表：以空白分隔的词；'#' 开头的行视为注释。
func ParseKnown(r io.Reader) ([]string, error) {
	sc := newScanner(r)
	var out []string
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, strings.Fields(line)...)
	}
	return out, sc.Err()
}

// ParseUnknown 解析未知词表：每行一词，取首个制表符或 '#' 之前的部分。
func ParseUnknown(r io.Reader) ([]string, error) {
	sc := newScanner(r)
	var out []string
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if i := strings.IndexByte(line, '\t'); i >= 0 {
			line = line[:i]
		}
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		if w := strings.TrimSpace(line); w != "" {
			out = append(out, w)
		}
	}
	return out, sc.Err()
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
