package diag

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Terminal: 终端信息提示（非日志）。
// - 输出到提供的 io.Writer（默认 stderr）。
// - TTY: 进度单行 \r 覆盖；非 TTY: 仅逐文件打印结果行。
// - 并发安全；写失败后进入禁用态为 no-op。
type Terminal struct {
	w       io.Writer
	enabled bool
	isTTY   bool

	concurrency int
	filesDone   int
	filesFailed int
	filesSkip   int
	runStart    time.Time

	lastLen   int
	lastFlush time.Time

	mu sync.Mutex
}

// 进程级终端（可选，全局设置后供 pipeline 旁路调用）。
var (
	termMu sync.RWMutex
	term   *Terminal
)

// SetTerminal 设置全局终端指针（nil 可清除）。
func SetTerminal(t *Terminal) { termMu.Lock(); term = t; termMu.Unlock() }

// GetTerminal 返回全局终端（可能为 nil）。
func GetTerminal() *Terminal { termMu.RLock(); defer termMu.RUnlock(); return term }

// NewTerminal 构造终端提示器。enabled=false 时总是 no-op。
func NewTerminal(w io.Writer, enabled bool) *Terminal {
	if w == nil {
		w = os.Stderr
	}
	t := &Terminal{w: w, enabled: enabled}
	// CI 环境视为非 TTY
	if os.Getenv("CI") != "" {
		t.isTTY = false
	} else if f, ok := w.(*os.File); ok {
		if fi, err := f.Stat(); err == nil {
			t.isTTY = fi.Mode()&os.ModeCharDevice != 0
		}
	}
	return t
}

// RunStart 记录运行上下文（并发度、已知词数）。
func (t *Terminal) RunStart(concurrency, knownWords int) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	t.concurrency = concurrency
	t.filesDone, t.filesFailed, t.filesSkip = 0, 0, 0
	t.runStart = time.Now()
	t.println(fmt.Sprintf("[run] 并发=%d | 已知词=%d", concurrency, knownWords))
}

// Progress: TTY 下的进度行（≥100ms 节流）。
func (t *Terminal) Progress(done, started int) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled || !t.isTTY {
		return
	}
	now := time.Now()
	if now.Sub(t.lastFlush) < 100*time.Millisecond {
		return
	}
	t.lastFlush = now
	t.printInline(fmt.Sprintf("[run] 进度 %d/%d | 并发 %d | 用时 %s", done, started, t.concurrency, formatSince(t.runStart)))
}

// FileDone 打印单文件结果。comprehension 为已格式化的百分比或 "N/A"。
func (t *Terminal) FileDone(fileID, comprehension string, unknown int, dur time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	t.filesDone++
	t.clearInline()
	t.println(fmt.Sprintf("[done] %s | 理解度 %s | 生词 %d | 用时 %s",
		shortenBase(fileID, 48), safe(comprehension), unknown, formatDur(dur)))
}

// FileFail 打印单文件失败。
func (t *Terminal) FileFail(fileID, code string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	t.filesFailed++
	t.clearInline()
	t.println(fmt.Sprintf("[fail] %s | %s", shortenBase(fileID, 48), safe(code)))
}

// FileSkip 打印被跳过的文件（空文件等）。
func (t *Terminal) FileSkip(fileID, reason string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	t.filesSkip++
	t.clearInline()
	t.println(fmt.Sprintf("[skip] %s | %s", shortenBase(fileID, 48), safe(reason)))
}

// RunFinish: 结束总览。
func (t *Terminal) RunFinish(ok bool, dur time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	tag := "ok"
	if !ok {
		tag = "fail"
	}
	t.clearInline()
	t.println(fmt.Sprintf("[%s] 全部完成 | 文件 %d | 失败 %d | 跳过 %d | 总用时 %s",
		tag, t.filesDone, t.filesFailed, t.filesSkip, formatDur(dur)))
}

func (t *Terminal) clearInline() {
	if t.isTTY && t.lastLen > 0 {
		t.printInline("")
	}
}

func (t *Terminal) println(s string) {
	if t == nil || !t.enabled {
		return
	}
	if _, err := io.WriteString(t.w, s+"\n"); err != nil {
		t.enabled = false
	}
	t.lastLen = 0
}

func (t *Terminal) printInline(s string) {
	if t == nil || !t.enabled {
		return
	}
	// 新行比旧行短时以空格覆盖残留
	pad := 0
	if l := visLen(s); t.lastLen > l {
		pad = t.lastLen - l
	}
	var b strings.Builder
	b.WriteByte('\r')
	b.WriteString(s)
	if pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	if _, err := io.WriteString(t.w, b.String()); err != nil {
		t.enabled = false
		return
	}
	t.lastLen = visLen(s)
}

// shortenBase: 取基名并按 rune 数截断（尾部省略号）。
func shortenBase(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	base := filepath.Base(strings.TrimSpace(s))
	if base == "" || base == "." {
		return ""
	}
	if visLen(base) <= limit {
		return base
	}
	rs := []rune(base)
	cut := limit - 1
	if cut < 1 {
		cut = 1
	}
	return string(rs[:cut]) + "…"
}

func visLen(s string) int { return len([]rune(s)) }

func safe(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}

func formatSince(t0 time.Time) string { return formatDur(time.Since(t0)) }

func formatDur(d time.Duration) string {
	if d < time.Second {
		ms := d.Milliseconds()
		if ms < 0 {
			ms = 0
		}
		return fmt.Sprintf("%dms", ms)
	}
	return fmt.Sprintf("%.1fs", float64(d.Milliseconds())/1000.0)
}
