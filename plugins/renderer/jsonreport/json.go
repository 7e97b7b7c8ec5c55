package jsonreport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"zhcheck/pkg/contract"
)

// Options 为 JSON 报告的可选配置。
type Options struct {
	// Indent: 缩进字符串；为空输出单行。
	Indent string `json:"indent"`
	// All: 输出全部生词（默认仅输出展示范围内的条目）。
	All bool `json:"all"`
}

type renderer struct {
	indent string
	all    bool
}

// New 创建 JSON 渲染器。
func New(opts *Options) contract.Renderer {
	r := &renderer{}
	if opts != nil {
		r.indent = opts.Indent
		r.all = opts.All
	}
	return r
}

func (r *renderer) Ext() string { return ".report.json" }

// document 为输出结构；remaining 为未展示的生词数。
type document struct {
	contract.Report
	Pct       float64 `json:"comprehension_pct"`
	Remaining int     `json:"remaining"`
}

func (r *renderer) Render(ctx context.Context, rep contract.Report) (io.Reader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc := document{Report: rep, Pct: rep.Percent()}
	if !r.all && rep.Shown < len(rep.Unknown) {
		doc.Remaining = len(rep.Unknown) - rep.Shown
		doc.Unknown = rep.Unknown[:rep.Shown]
	}
	if doc.Unknown == nil {
		doc.Unknown = []contract.UnknownWord{}
	}
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if r.indent != "" {
		enc.SetIndent("", r.indent)
	}
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return &b, nil
}

var _ contract.Renderer = (*renderer)(nil)
