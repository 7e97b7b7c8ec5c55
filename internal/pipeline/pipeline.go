package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"zhcheck/internal/analysis"
	"zhcheck/internal/diag"
	"zhcheck/pkg/contract"
)

// - 单点并发：仅此层管理并发与背压；原子组件均为同步、无内部并发。
// - 顺序门闩：按输入顺序提交报告；乱序完成的结果暂存，连续冲刷。
// - 首错取消：未开启 KeepGoing 时，任一文件失败即 cancel 整体；排空后返回该错误。
// - 空文件：记录 warn 并跳过，不视为失败。

// Components 聚合运行所需的组件。Glossary/Transliterator 可为空。
type Components struct {
	Reader         contract.Reader
	Cleaner        contract.Cleaner
	Analyzer       *analysis.Analyzer
	Glossary       contract.Glossary
	Transliterator contract.Transliterator
	Renderer       contract.Renderer
	Writer         contract.Writer
	// Resources: 运行结束后需释放的句柄（词典模型、索引库等），按逆序关闭。
	Resources []io.Closer
}

// Close 逆序释放 Resources。
func (c Components) Close() error {
	var errs []error
	for i := len(c.Resources) - 1; i >= 0; i-- {
		if err := c.Resources[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Settings 运行期配置。
type Settings struct {
	Inputs      []string
	Concurrency int
	// Top: 报告中展示的生词数；<=0 表示全部。
	Top int
	// GlossMaxRunes: 释义截断长度；<=0 不截断。
	GlossMaxRunes int
	// KeepGoing: 单文件失败时继续处理其余文件，最终汇总返回错误。
	KeepGoing bool
	// KnownWords: 仅用于终端提示。
	KnownWords int
}

// Summary 为一次运行的结果汇总（按输入顺序）。
type Summary struct {
	Reports []contract.Report
	Skipped []contract.FileID
	Failed  []FileError
}

// FileError 记录单个文件的失败。
type FileError struct {
	FileID contract.FileID
	Err    error
}

func (e FileError) Error() string { return fmt.Sprintf("%s: %v", e.FileID, e.Err) }
func (e FileError) Unwrap() error { return e.Err }

type job struct {
	seq  int
	id   contract.FileID
	text string
	err  error // 清洗阶段错误，原样交给门闩
}

type result struct {
	seq    int
	id     contract.FileID
	report contract.Report
	body   []byte
	dur    time.Duration
	skip   bool
	err    error
}

// Run 执行完整流水线：Reader → Cleaner → Analyzer → Annotate → Renderer → Writer。
func Run(ctx context.Context, comp Components, set Settings, logger *diag.Logger) (Summary, error) {
	var sum Summary
	if err := sanity(comp, set); err != nil {
		return sum, fmt.Errorf("sanity: %w", err)
	}
	nWorkers := set.Concurrency
	if nWorkers < 1 {
		nWorkers = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runStart := time.Now()
	diag.GetTerminal().RunStart(nWorkers, set.KnownWords)

	// 有界通道：2×并发度，形成自然背压
	inCh := make(chan job, nWorkers*2)
	outCh := make(chan result, nWorkers*2)

	// 生产者：逐文件读取并清洗；清洗为同步操作，保持 Reader 的顺序语义
	prodErr := make(chan error, 1)
	started := 0
	var startedMu sync.Mutex
	go func() {
		defer close(inCh)
		rtimer := logger.Start("reader", "iterate")
		seq := 0
		err := comp.Reader.Iterate(ctx, set.Inputs, func(id contract.FileID, rc io.ReadCloser) error {
			defer rc.Close()
			ctimer := logger.StartWith("cleaner", "clean", string(id))
			text, cerr := comp.Cleaner.Clean(ctx, id, rc)
			if cerr == nil && text == "" {
				// 扩展名不在允许范围：静默跳过
				logger.DebugStart("cleaner", "ignored", string(id), nil)
				return nil
			}
			if cerr == nil {
				ctimer.Finish("clean", int64(len(text)))
			}
			j := job{seq: seq, id: id, text: text, err: cerr}
			seq++
			startedMu.Lock()
			started = seq
			startedMu.Unlock()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case inCh <- j:
				return nil
			}
		})
		if err == nil {
			rtimer.Finish("iterate", int64(seq))
			diag.IncOp("reader", "iterate", "success")
		}
		prodErr <- err
	}()

	var wg sync.WaitGroup
	wg.Add(nWorkers)
	for i := 0; i < nWorkers; i++ {
		go func() {
			defer wg.Done()
			for j := range inCh {
				outCh <- process(ctx, comp, set, logger, j)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(outCh)
	}()

	// 提交门闩：按 seq 连续冲刷
	expect := 0
	buf := make(map[int]result)
	var firstErr error
	done := 0
	for r := range outCh {
		buf[r.seq] = r
		for {
			cur, ok := buf[expect]
			if !ok {
				break
			}
			delete(buf, expect)
			expect++
			done++
			if firstErr != nil {
				// 已取消：排空，不再写出
				continue
			}
			if err := commit(ctx, comp, logger, cur, &sum); err != nil && !set.KeepGoing {
				firstErr = err
				cancel()
			}
			startedMu.Lock()
			n := started
			startedMu.Unlock()
			diag.GetTerminal().Progress(done, n)
		}
	}

	if err := <-prodErr; err != nil && firstErr == nil {
		code := diag.Classify(err)
		logger.Error("reader", string(code), "iterate failed: "+err.Error(), nil)
		diag.IncOp("reader", "iterate", "error")
		diag.IncError("reader", string(code))
		firstErr = fmt.Errorf("reader iterate: %w", err)
	}
	if firstErr == nil && len(sum.Failed) > 0 {
		errs := make([]error, len(sum.Failed))
		for i, fe := range sum.Failed {
			errs[i] = fe
		}
		firstErr = fmt.Errorf("%d file(s) failed: %w", len(sum.Failed), errors.Join(errs...))
	}
	diag.GetTerminal().RunFinish(firstErr == nil, time.Since(runStart))
	return sum, firstErr
}

// process 在 worker 中完成单文件的分析与渲染。
func process(ctx context.Context, comp Components, set Settings, logger *diag.Logger, j job) result {
	r := result{seq: j.seq, id: j.id}
	if j.err != nil {
		if errors.Is(j.err, contract.ErrEmptyInput) {
			r.skip = true
			return r
		}
		r.err = fmt.Errorf("cleaner clean: %w", j.err)
		return r
	}
	if err := ctx.Err(); err != nil {
		r.err = err
		return r
	}
	t0 := time.Now()
	atimer := logger.StartWith("analysis", "analyze", string(j.id))
	res, err := comp.Analyzer.Analyze(ctx, j.id, j.text)
	if err != nil {
		r.err = fmt.Errorf("analysis analyze: %w", err)
		return r
	}
	atimer.FinishKV("analyze", int64(res.Report.Total), map[string]string{
		"comprehension": fmt.Sprintf("%.4f", res.Report.Comprehension),
		"unknown":       fmt.Sprintf("%d", len(res.Report.Unknown)),
		"proper_nouns":  fmt.Sprintf("%d", res.Report.ProperNouns),
		"fallback_runs": fmt.Sprintf("%d", res.FallbackRuns),
	})
	diag.IncOp("analysis", "analyze", "success")
	diag.ObserveFile(len(res.Tokens), res.FallbackRuns, len(res.Report.Unknown))

	rep := analysis.Annotate(res.Report, comp.Glossary, comp.Transliterator, set.Top, set.GlossMaxRunes)
	rd, err := comp.Renderer.Render(ctx, rep)
	if err != nil {
		r.err = fmt.Errorf("renderer render: %w", err)
		return r
	}
	body, err := io.ReadAll(rd)
	if err != nil {
		r.err = fmt.Errorf("renderer render: %w", err)
		return r
	}
	r.report = rep
	r.body = body
	r.dur = time.Since(t0)
	return r
}

// commit 在门闩中按序落盘并记录结果；返回该文件的失败（跳过不算失败）。
func commit(ctx context.Context, comp Components, logger *diag.Logger, r result, sum *Summary) error {
	id := string(r.id)
	if r.skip {
		logger.Warn("pipeline", string(diag.CodeInput), "empty file skipped", id)
		diag.IncOp("pipeline", "file", "skip")
		diag.GetTerminal().FileSkip(id, "empty")
		sum.Skipped = append(sum.Skipped, r.id)
		return nil
	}
	err := r.err
	if err == nil {
		wtimer := logger.StartWith("writer", "write", id)
		aid := contract.ArtifactName(r.id, comp.Renderer.Ext())
		if werr := comp.Writer.Write(ctx, aid, bytes.NewReader(r.body)); werr != nil {
			err = fmt.Errorf("writer write: %w", werr)
		} else {
			wtimer.Finish("write", int64(len(r.body)))
			diag.IncOp("writer", "write", "success")
		}
	}
	if err != nil {
		code := diag.Classify(err)
		logger.ErrorWith("pipeline", string(code), err.Error(), nil, id)
		diag.IncOp("pipeline", "file", "error")
		diag.IncError("pipeline", string(code))
		diag.GetTerminal().FileFail(id, string(code))
		fe := FileError{FileID: r.id, Err: err}
		sum.Failed = append(sum.Failed, fe)
		return fe
	}
	diag.IncOp("pipeline", "file", "success")
	pct := "N/A"
	if r.report.Applicable {
		pct = fmt.Sprintf("%.1f%%", r.report.Percent())
	}
	diag.GetTerminal().FileDone(id, pct, len(r.report.Unknown), r.dur)
	sum.Reports = append(sum.Reports, r.report)
	return nil
}

func sanity(c Components, s Settings) error {
	if c.Reader == nil || c.Cleaner == nil || c.Analyzer == nil || c.Renderer == nil || c.Writer == nil {
		return errors.New("pipeline: missing components")
	}
	if len(s.Inputs) == 0 {
		return errors.New("pipeline: empty inputs")
	}
	return nil
}
