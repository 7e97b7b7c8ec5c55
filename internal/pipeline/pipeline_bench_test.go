package pipeline

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
	"testing"

	"zhcheck/internal/analysis"
	"zhcheck/internal/segment"
	"zhcheck/internal/vocab"
	"zhcheck/pkg/contract"
	"zhcheck/plugins/cleaner/plain"
	"zhcheck/plugins/nlp/runes"
	"zhcheck/plugins/renderer/text"
)

// discardWriter 丢弃所有输出，避免磁盘开销。
type discardWriter struct{}

func (discardWriter) Write(ctx context.Context, id contract.ArtifactID, r io.Reader) error {
	_, err := io.Copy(io.Discard, r)
	return err
}

// BenchmarkPipeline 测试完整流水线的性能。
func BenchmarkPipeline(b *testing.B) {
	vb := vocab.NewBuilder()
	vb.AddKnown("我们", "今天", "天气", "很", "好", "去", "公园", "散步")
	seg, _ := segment.New(vb.Build(0), runes.Segmenter{})
	an, _ := analysis.New(seg, nil)
	body := strings.Repeat("我们今天去公园散步，天气很好。他说明天下雨。", 2000)
	files := make([]file, 16)
	for i := range files {
		files[i] = file{id: fmt.Sprintf("f%02d.txt", i), body: body}
	}
	for _, c := range []int{1, runtime.NumCPU()} {
		b.Run(fmt.Sprintf("C=%d", c), func(b *testing.B) {
			comp := Components{
				Reader:   stubReader{files: files},
				Cleaner:  plain.New(nil),
				Analyzer: an,
				Renderer: text.New(nil),
				Writer:   discardWriter{},
			}
			set := Settings{Inputs: []string{"x"}, Concurrency: c, Top: 20}
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := Run(context.Background(), comp, set, nil); err != nil {
					b.Fatalf("运行失败: %v", err)
				}
			}
		})
	}
}
