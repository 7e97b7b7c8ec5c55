package text

import (
	"context"
	"io"
	"testing"

	"zhcheck/pkg/contract"
)

func render(t *testing.T, r contract.Renderer, rep contract.Report) string {
	t.Helper()
	rd, err := r.Render(context.Background(), rep)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	b, err := io.ReadAll(rd)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(b)
}

func TestRenderLayout(t *testing.T) {
	rep := contract.Report{
		Total:         10,
		Unique:        6,
		Known:         9,
		Comprehension: 0.9,
		Applicable:    true,
		Assessment:    contract.Assessment{Mark: "🟢", Label: "Optimal (i+1)"},
		Unknown: []contract.UnknownWord{
			{Word: "天气", Count: 3, Pinyin: "tiān qì", Gloss: "weather"},
			{Word: "打算", Count: 2, Pinyin: "dǎ suàn"},
			{Word: "散步", Count: 1},
		},
		Shown: 2,
	}
	want := "Word Count: 10\n" +
		"Total Unique Words: 6\n" +
		"Comprehension: 90.0% - 🟢 Optimal (i+1)\n" +
		"Unique Unknown Words: 3\n" +
		"\n=== Unknown Words (by frequency) ===\n" +
		"天气 (tiān qì) : 3 - weather\n" +
		"打算 (dǎ suàn) : 2\n" +
		"... and 1 more\n"
	if got := render(t, New(nil), rep); got != want {
		t.Fatalf("版式不符:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderNotApplicable(t *testing.T) {
	got := render(t, New(&Options{ShowProperNouns: true}), contract.Report{ProperNouns: 2, Assessment: contract.Assessment{Label: "N/A"}})
	want := "Word Count: 0\nTotal Unique Words: 0\nComprehension: N/A\nProper Nouns Excluded: 2\nUnique Unknown Words: 0\n"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestExt(t *testing.T) {
	if New(nil).Ext() != ".report.txt" {
		t.Fatalf("默认扩展名错误")
	}
	if New(&Options{Ext: ".txt"}).Ext() != ".txt" {
		t.Fatalf("自定义扩展名未生效")
	}
}
