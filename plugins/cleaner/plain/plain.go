package plain

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"zhcheck/pkg/contract"
)

// Options 为纯文本 Cleaner 的可选配置。
type Options struct {
	// AllowExts: 允许处理的扩展名（大小写不敏感，含点）。
	// 为空时采用默认 [".txt", ".md", ".markdown"]；显式空切片表示不限制。
	AllowExts []string `json:"allow_exts"`
	// MarkdownExts: 按 Markdown 解析、仅保留正文的扩展名。默认 [".md", ".markdown"]。
	MarkdownExts []string `json:"markdown_exts"`
	// MaxBytes: 单文件最大字节数；0 表示不限制。
	MaxBytes int64 `json:"max_bytes"`
}

// Cleaner: 解码 UTF-8，去除空白，NFKD 分解并剔除组合附加符号（Mn）。
type Cleaner struct {
	allow    map[string]struct{} // nil 表示不限制
	markdown map[string]struct{}
	maxBytes int64
}

func extSet(in []string) map[string]struct{} {
	m := make(map[string]struct{}, len(in))
	for _, e := range in {
		if e == "" {
			continue
		}
		m[strings.ToLower(e)] = struct{}{}
	}
	return m
}

// New 创建 Cleaner。
func New(opts *Options) *Cleaner {
	c := &Cleaner{}
	switch {
	case opts == nil || opts.AllowExts == nil:
		c.allow = extSet([]string{".txt", ".md", ".markdown"})
	case len(opts.AllowExts) > 0:
		c.allow = extSet(opts.AllowExts)
	}
	if opts == nil || opts.MarkdownExts == nil {
		c.markdown = extSet([]string{".md", ".markdown"})
	} else {
		c.markdown = extSet(opts.MarkdownExts)
	}
	if opts != nil && opts.MaxBytes > 0 {
		c.maxBytes = opts.MaxBytes
	}
	return c
}

// Clean 实现 contract.Cleaner。
func (c *Cleaner) Clean(ctx context.Context, fileID contract.FileID, r io.Reader) (string, error) {
	ext := strings.ToLower(path.Ext(string(fileID)))
	if c.allow != nil {
		if _, ok := c.allow[ext]; !ok {
			return "", nil
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	src := r
	if c.maxBytes > 0 {
		src = io.LimitReader(r, c.maxBytes+1)
	}
	b, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}
	if c.maxBytes > 0 && int64(len(b)) > c.maxBytes {
		return "", fmt.Errorf("%w: %s exceeds %d bytes", contract.ErrMalformedInput, fileID, c.maxBytes)
	}
	b = bytes.TrimPrefix(b, []byte("\xEF\xBB\xBF"))
	if len(bytes.TrimSpace(b)) == 0 {
		return "", fmt.Errorf("%w: %s", contract.ErrEmptyInput, fileID)
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8", contract.ErrMalformedInput, fileID)
	}
	if _, ok := c.markdown[ext]; ok {
		b = MarkdownText(b)
	}
	out, err := Normalize(string(b))
	if err != nil {
		return "", err
	}
	if out == "" {
		return "", fmt.Errorf("%w: %s has no text after cleaning", contract.ErrEmptyInput, fileID)
	}
	return out, nil
}

// Normalize 去除全部空白，NFKD 分解后剔除 Mn 类字符。
func Normalize(s string) (string, error) {
	joined := strings.Join(strings.Fields(s), "")
	// transform.Chain 有内部状态，不可跨 goroutine 复用
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, joined)
	if err != nil {
		return "", fmt.Errorf("%w: %v", contract.ErrMalformedInput, err)
	}
	return out, nil
}

// MarkdownText 提取 Markdown 正文，跳过代码与原始 HTML。
func MarkdownText(src []byte) []byte {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(text.NewReader(src))
	var buf bytes.Buffer
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindCodeBlock, ast.KindFencedCodeBlock, ast.KindHTMLBlock, ast.KindRawHTML, ast.KindCodeSpan:
			return ast.WalkSkipChildren, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.String:
			buf.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return buf.Bytes()
}
