package stdout

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"zhcheck/pkg/contract"
)

// Options 为标准输出 Writer 的配置。
type Options struct {
	// Banner: 每份报告前输出 "File: <id>" 分隔头；默认 true。
	Banner *bool `json:"banner,omitempty"`
	// StripExt: 分隔头中去掉的工件后缀，使其显示原始文件名。
	// 为空时去掉 ".report.txt" / ".report.json"。
	StripExt string `json:"strip_ext,omitempty"`
}

// Stdout 将报告依次写到同一输出流；并发 Write 串行化。
type Stdout struct {
	mu     sync.Mutex
	out    io.Writer
	banner bool
	strip  []string
}

var rule = strings.Repeat("=", 60)

// New 创建写到 os.Stdout 的 Writer。
func New(opts *Options) *Stdout { return NewTo(os.Stdout, opts) }

// NewTo 创建写到 w 的 Writer。
func NewTo(w io.Writer, opts *Options) *Stdout {
	s := &Stdout{out: w, banner: true, strip: []string{".report.txt", ".report.json"}}
	if opts != nil {
		if opts.Banner != nil {
			s.banner = *opts.Banner
		}
		if opts.StripExt != "" {
			s.strip = []string{opts.StripExt}
		}
	}
	return s
}

// Write 输出一份报告。报告之间以空行分隔。
func (s *Stdout) Write(ctx context.Context, id contract.ArtifactID, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	bw := bufio.NewWriter(s.out)
	if s.banner {
		name := string(id)
		for _, ext := range s.strip {
			if strings.HasSuffix(name, ext) {
				name = strings.TrimSuffix(name, ext)
				break
			}
		}
		fmt.Fprintf(bw, "%s\nFile: %s\n%s\n", rule, name, rule)
	}
	bw.Write(body)
	if len(body) > 0 && body[len(body)-1] != '\n' {
		bw.WriteByte('\n')
	}
	bw.WriteByte('\n')
	return bw.Flush()
}

var _ contract.Writer = (*Stdout)(nil)
