package contract

import (
	"errors"
	"path/filepath"
	"testing"
)

// TestNormalizeFileID 验证路径规范化逻辑。
func TestNormalizeFileID(t *testing.T) {
	wpath := filepath.Join("a", "b", "c")
	basicCases := map[string]string{
		wpath:      "a/b/c",
		"./x/../y": "y",
		"":         ".",
	}
	for in, want := range basicCases {
		got := NormalizeFileID(in)
		if string(got) != want {
			t.Fatalf("基础测试 %s -> %s, 预期 %s", in, got, want)
		}
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Windows路径", "C:\\Users\\test\\课文.txt", "C:/Users/test/课文.txt"},
		{"清理多余斜杠", "input//lesson///01.txt", "input/lesson/01.txt"},
		{"处理父目录", "input/a/../b/01.txt", "input/b/01.txt"},
		{"中文路径", "阅读\\第一课/课文.txt", "阅读/第一课/课文.txt"},
		{"Windows根", "C:\\", "C:"},
		{"仅分隔符", "\\\\\\///", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeFileID(tt.input); string(got) != tt.expected {
				t.Errorf("NormalizeFileID(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestArtifactName(t *testing.T) {
	cases := []struct {
		id   FileID
		ext  string
		want string
	}{
		{"input/a.txt", ".report.txt", "input/a.txt.report.txt"},
		{"input/a.txt", "json", "input/a.txt.json"},
		{"stdin", "", "stdin"},
	}
	for _, c := range cases {
		if got := ArtifactName(c.id, c.ext); string(got) != c.want {
			t.Errorf("ArtifactName(%q,%q) = %q, want %q", c.id, c.ext, got, c.want)
		}
	}
}

func TestClassPredicates(t *testing.T) {
	countable := map[Class]bool{
		ClassKnown:      true,
		ClassExcluded:   true,
		ClassFallback:   true,
		ClassNonLexical: false,
		ClassProperNoun: false,
	}
	for c, want := range countable {
		if c.Countable() != want {
			t.Errorf("%s.Countable() = %v", c, !want)
		}
	}
	if ClassKnown.Unknown() || !ClassExcluded.Unknown() || !ClassFallback.Unknown() {
		t.Fatalf("Unknown() 分类错误")
	}
	if ClassProperNoun.String() != "proper_noun" {
		t.Fatalf("String() = %q", ClassProperNoun.String())
	}
}

func TestTokenOverlaps(t *testing.T) {
	tok := Token{Text: "北京", Start: 2, End: 4}
	cases := []struct {
		s    Span
		want bool
	}{
		{Span{2, 4}, true},
		{Span{0, 3}, true},
		{Span{3, 6}, true},
		{Span{0, 2}, false},
		{Span{4, 5}, false},
	}
	for _, c := range cases {
		if got := tok.Overlaps(c.s); got != c.want {
			t.Errorf("Overlaps(%v) = %v, want %v", c.s, got, c.want)
		}
	}
	re := tok.WithClass(ClassProperNoun)
	if tok.Class != ClassKnown || re.Class != ClassProperNoun {
		t.Fatalf("WithClass 不应修改原值")
	}
}

// TestValidatePartition 覆盖完整覆盖与各类违例。
func TestValidatePartition(t *testing.T) {
	ok := []Token{{Text: "你好", Start: 0, End: 2}, {Text: "，", Start: 2, End: 3}}
	if err := ValidatePartition(3, ok); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := ValidatePartition(0, nil); err != nil {
		t.Fatalf("空文本: %v", err)
	}
	cases := []struct {
		name string
		n    int
		toks []Token
	}{
		{"gap", 3, []Token{{Start: 0, End: 1}, {Start: 2, End: 3}}},
		{"overlap", 3, []Token{{Start: 0, End: 2}, {Start: 1, End: 3}}},
		{"short", 3, []Token{{Start: 0, End: 2}}},
		{"empty token", 2, []Token{{Start: 0, End: 0}, {Start: 0, End: 2}}},
		{"tokens for empty", 0, []Token{{Start: 0, End: 1}}},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidatePartition(tt.n, tt.toks); !errors.Is(err, ErrPartitionInvalid) {
				t.Fatalf("want ErrPartitionInvalid got %v", err)
			}
		})
	}
}

func TestValidatePieces(t *testing.T) {
	if err := ValidatePieces("我们是学生", []string{"我们", "是", "学生"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	bad := [][]string{
		{"我们", "学生"},
		{"我们", "", "是学生"},
		{"我们是学生", "了"},
	}
	for _, p := range bad {
		if err := ValidatePieces("我们是学生", p); !errors.Is(err, ErrPartitionInvalid) {
			t.Fatalf("%v: want ErrPartitionInvalid got %v", p, err)
		}
	}
}

func TestValidateSpans(t *testing.T) {
	got, err := ValidateSpans(10, []Span{{5, 7}, {0, 2}})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got[0].Start != 0 || got[1].Start != 5 {
		t.Fatalf("未排序: %v", got)
	}
	bad := [][]Span{
		{{0, 11}},
		{{-1, 2}},
		{{3, 3}},
		{{0, 4}, {3, 6}},
	}
	for _, s := range bad {
		if _, err := ValidateSpans(10, s); !errors.Is(err, ErrSpanInvalid) {
			t.Fatalf("%v: want ErrSpanInvalid got %v", s, err)
		}
	}
}
