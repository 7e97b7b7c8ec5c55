package text

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"zhcheck/pkg/contract"
)

// Options 为文本报告的可选配置。
type Options struct {
	// Ext: 工件扩展名；默认 ".report.txt"。
	Ext string `json:"ext"`
	// ShowProperNouns: 输出被排除的专名数。
	ShowProperNouns bool `json:"show_proper_nouns"`
}

type renderer struct {
	ext        string
	showProper bool
}

// New 创建文本渲染器。
func New(opts *Options) contract.Renderer {
	r := &renderer{ext: ".report.txt"}
	if opts != nil {
		if opts.Ext != "" {
			r.ext = opts.Ext
		}
		r.showProper = opts.ShowProperNouns
	}
	return r
}

func (r *renderer) Ext() string { return r.ext }

// Render 按固定版式输出统计与生词表（仅 Shown 条，其余汇总为 "... and N more"）。
func (r *renderer) Render(ctx context.Context, rep contract.Report) (io.Reader, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	var b bytes.Buffer
	fmt.Fprintf(&b, "Word Count: %d\n", rep.Total)
	fmt.Fprintf(&b, "Total Unique Words: %d\n", rep.Unique)
	if rep.Applicable {
		fmt.Fprintf(&b, "Comprehension: %.1f%% - %s\n", rep.Percent(), assessment(rep.Assessment))
	} else {
		b.WriteString("Comprehension: N/A\n")
	}
	if r.showProper {
		fmt.Fprintf(&b, "Proper Nouns Excluded: %d\n", rep.ProperNouns)
	}
	fmt.Fprintf(&b, "Unique Unknown Words: %d\n", len(rep.Unknown))

	shown := rep.Shown
	if shown > len(rep.Unknown) {
		shown = len(rep.Unknown)
	}
	if len(rep.Unknown) > 0 {
		b.WriteString("\n=== Unknown Words (by frequency) ===\n")
		for _, w := range rep.Unknown[:shown] {
			b.WriteString(w.Word)
			if w.Pinyin != "" {
				fmt.Fprintf(&b, " (%s)", w.Pinyin)
			}
			fmt.Fprintf(&b, " : %d", w.Count)
			if w.Gloss != "" {
				fmt.Fprintf(&b, " - %s", w.Gloss)
			}
			b.WriteByte('\n')
		}
		if rest := len(rep.Unknown) - shown; rest > 0 {
			fmt.Fprintf(&b, "... and %d more\n", rest)
		}
	}
	return &b, nil
}

func assessment(a contract.Assessment) string {
	if a.Mark == "" {
		return a.Label
	}
	return a.Mark + " " + a.Label
}

var _ contract.Renderer = (*renderer)(nil)
