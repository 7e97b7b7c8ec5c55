package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	cfgpkg "zhcheck/internal/config"
	"zhcheck/internal/diag"
	"zhcheck/internal/pipeline"
)

var pipelineRun = pipeline.Run

// 退出码
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 3
)

// 默认子命令即 run。
// 位置参数为 roots（文件/目录 或 "-" 表示 STDIN，不能与其他根混用）。
func main() {
	os.Exit(run())
}

func run() int {
	start := time.Now()
	corrID := uuid.NewString()
	// 在任何 ENV 读取前加载 .env（不覆盖已有 ENV）
	_ = loadDotEnv(".env")
	// 配置合并前先写 stderr；合并后按最终配置重建
	logger := diag.NewLoggerIn("", corrID, "warn")

	var (
		flagConfig      string
		flagInitDir     string
		flagConcurrency int
		flagTop         int
		flagKnown       string
		flagUnknown     string
		flagRenderer    string
		flagOutputDir   string
		flagLogLevel    string
		flagMetrics     bool
		flagFailFast    bool
		flagStatus      bool
	)
	flag.StringVar(&flagConfig, "config", "", "配置文件路径（JSON）；缺省读取 ./config.json（若存在）")
	flag.StringVar(&flagInitDir, "init-config", "", "在指定目录生成默认 config.json 与 .env 模板（已存在则失败/跳过）；不带值时为当前目录")
	flag.IntVar(&flagConcurrency, "concurrency", 0, "并发度（覆盖配置）")
	// top 允许显式设为 0（展示全部）；-1 表示未覆盖
	flag.IntVar(&flagTop, "top", -1, "展示的生词数（覆盖配置；0 表示全部）")
	flag.StringVar(&flagKnown, "known", "", "已知词目录，逗号分隔（覆盖配置）")
	flag.StringVar(&flagUnknown, "unknown", "", "未知词目录，逗号分隔（覆盖配置）")
	flag.StringVar(&flagRenderer, "renderer", "", "报告格式 text|json（覆盖配置）")
	flag.StringVar(&flagOutputDir, "output-dir", "", "报告写入目录；设置后使用 fs writer")
	flag.StringVar(&flagLogLevel, "log-level", "", "日志等级 debug|info|warn|error")
	flag.BoolVar(&flagMetrics, "metrics", false, "结束时向 stderr 输出指标快照")
	flag.BoolVar(&flagFailFast, "fail-fast", false, "任一文件失败即停止")
	flag.BoolVar(&flagStatus, "status", true, "终端状态提示（stderr）。TTY 动态刷新；非 TTY 逐行输出")
	normalizeInitArg()
	flag.Parse()
	roots := flag.Args()

	if dir := strings.TrimSpace(flagInitDir); dir != "" {
		if err := initConfig(dir); err != nil {
			fprintf(os.Stderr, "生成默认配置失败: %v\n", err)
			logger.Error("config", string(diag.Classify(err)), "init-config: "+err.Error(), &start)
			return exitConfig
		}
		return exitOK
	}

	// JSON 配置（ENV 内联优先于文件）
	var cfgJSON []byte
	if s := os.Getenv(cfgpkg.EnvPrefix + "CONFIG_JSON"); s != "" {
		cfgJSON = []byte(s)
	}
	if flagConfig == "" {
		flagConfig = os.Getenv(cfgpkg.EnvPrefix + "CONFIG_FILE")
	}
	if flagConfig == "" {
		if _, err := os.Stat("config.json"); err == nil {
			flagConfig = "config.json"
		}
	}

	cfg := cfgpkg.Defaults()
	if flagConfig != "" || len(cfgJSON) > 0 {
		base, err := cfgpkg.LoadJSON(flagConfig, cfgJSON)
		if err != nil {
			fprintf(os.Stderr, "配置解析失败: %v\n", err)
			logger.Error("config", string(diag.CodeConfig), "load: "+err.Error(), &start)
			return exitConfig
		}
		cfg = cfgpkg.Merge(cfg, base)
	}

	overEnv, err := cfgpkg.EnvOverlay(os.Environ())
	if err != nil {
		fprintf(os.Stderr, "环境变量解析失败: %v\n", err)
		logger.Error("config", string(diag.CodeConfig), "env: "+err.Error(), &start)
		return exitConfig
	}
	cfg = cfgpkg.Merge(cfg, overEnv)

	var overCLI cfgpkg.Config
	if len(roots) > 0 {
		overCLI.Inputs = roots
	}
	if flagConcurrency > 0 {
		overCLI.Concurrency = flagConcurrency
	}
	if flagKnown != "" {
		overCLI.Vocabulary.KnownDirs = splitList(flagKnown)
	}
	if flagUnknown != "" {
		overCLI.Vocabulary.UnknownDirs = splitList(flagUnknown)
	}
	overCLI.Components.Renderer = strings.TrimSpace(flagRenderer)
	overCLI.Logging.Level = strings.TrimSpace(flagLogLevel)
	overCLI.Metrics.Enabled = flagMetrics
	overCLI.FailFast = flagFailFast
	if dir := strings.TrimSpace(flagOutputDir); dir != "" {
		b, err := json.Marshal(struct {
			OutputDir string `json:"output_dir"`
		}{dir})
		if err != nil {
			fprintf(os.Stderr, "参数错误: %v\n", err)
			return exitConfig
		}
		overCLI.Components.Writer = "fs"
		overCLI.Options.Writer = b
	}
	cfg = cfgpkg.Merge(cfg, overCLI)
	// 0 有语义，Merge 不覆盖零值，单独处理
	if flagTop >= 0 {
		cfg.Top = flagTop
	}

	if err := cfgpkg.Validate(cfg); err != nil {
		fprintf(os.Stderr, "配置校验失败: %v\n", err)
		_ = dumpConfig(cfg)
		logger.Error("config", string(diag.Classify(err)), err.Error(), &start)
		return exitConfig
	}

	logDir := strings.TrimSpace(cfg.Logging.Dir)
	if logDir == "-" {
		logDir = ""
	}
	logger = diag.NewLoggerIn(logDir, corrID, cfg.Logging.Level)
	defer logger.Close()

	if err := preflightCheckOutputDir(cfg); err != nil {
		fprintf(os.Stderr, "输出目录不可写或无法创建: %v\n", err)
		logger.Error("writer", string(diag.Classify(err)), "preflight: "+err.Error(), &start)
		return exitConfig
	}

	logger.DebugStart("config", "effective", "", map[string]string{
		"inputs_count":   fmt.Sprintf("%d", len(cfg.Inputs)),
		"concurrency":    fmt.Sprintf("%d", cfg.Concurrency),
		"top":            fmt.Sprintf("%d", cfg.Top),
		"known_dirs":     strings.Join(cfg.Vocabulary.KnownDirs, ","),
		"unknown_dirs":   strings.Join(cfg.Vocabulary.UnknownDirs, ","),
		"segmenter":      cfg.Components.Segmenter,
		"recognizer":     cfg.Components.Recognizer,
		"glossary":       cfg.Components.Glossary,
		"transliterator": cfg.Components.Transliterator,
		"renderer":       cfg.Components.Renderer,
		"writer":         cfg.Components.Writer,
	})

	comp, set, err := cfgpkg.Assemble(cfg, logger)
	if err != nil {
		fprintf(os.Stderr, "装配失败: %v\n", err)
		logger.Error("config", string(diag.Classify(err)), "assemble: "+err.Error(), &start)
		return exitConfig
	}
	defer func() {
		if cerr := comp.Close(); cerr != nil {
			logger.Warn("pipeline", string(diag.Classify(cerr)), "close: "+cerr.Error(), "")
		}
	}()

	// 终端提示（非日志）
	term := diag.NewTerminal(os.Stderr, flagStatus)
	diag.SetTerminal(term)
	defer diag.SetTerminal(nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	t := logger.Start("pipeline", "run")
	sum, err := pipelineRun(ctx, comp, set, logger)
	if cfg.Metrics.Enabled {
		diag.WriteMetrics(os.Stderr)
	}
	if err != nil {
		code := string(diag.Classify(err))
		logger.Error("pipeline", code, "run failed: "+err.Error(), &start)
		diag.IncOp("pipeline", "run", "error")
		if code != string(diag.CodeUnknown) {
			diag.IncError("pipeline", code)
		}
		if !errors.Is(err, context.Canceled) {
			fprintf(os.Stderr, "运行失败: %v\n", err)
		}
		return exitRuntime
	}
	t.FinishKV("run", int64(len(sum.Reports)), map[string]string{
		"skipped": fmt.Sprintf("%d", len(sum.Skipped)),
	})
	diag.IncOp("pipeline", "run", "success")
	return exitOK
}

func fprintf(w *os.File, format string, a ...any) { _, _ = fmt.Fprintf(w, format, a...) }

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func dumpConfig(c cfgpkg.Config) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	_, _ = os.Stderr.Write(append([]byte("有效配置:\n"), b...))
	_, _ = os.Stderr.Write([]byte("\n"))
	return nil
}

// initConfig 在 dir 下生成 config.json（已存在则报错）与 .env（已存在则跳过）。
func initConfig(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := writeConfig(filepath.Join(dir, "config.json"), cfgpkg.DefaultTemplateConfig()); err != nil {
		return err
	}
	if err := writeDotEnv(filepath.Join(dir, ".env")); err != nil {
		fprintf(os.Stderr, "提示：.env 生成失败（已跳过）：%v\n", err)
	}
	return nil
}

func writeConfig(path string, c cfgpkg.Config) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if path == "-" {
		_, err = os.Stdout.Write(append(b, '\n'))
		return err
	}
	// 不覆盖已存在文件
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(append(b, '\n'))
	return err
}

// loadDotEnv 读取简单的 .env 并注入进程环境。
// 跳过空行与 # 注释；支持 "export " 前缀；按首个 '=' 分割；
// 成对引号会被去除，双引号内处理 \n \t \r \" \\ 转义。
// 已存在的环境变量不被覆盖。
func loadDotEnv(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, val, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		val = unquote(strings.TrimSpace(val))
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		_ = os.Setenv(key, val)
	}
	return s.Err()
}

func unquote(val string) string {
	if len(val) < 2 {
		return val
	}
	q := val[0]
	if (q != '\'' && q != '"') || val[len(val)-1] != q {
		return val
	}
	val = val[1 : len(val)-1]
	if q == '"' {
		val = strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\r`, "\r", `\"`, `"`, `\\`, `\`).Replace(val)
	}
	return val
}

// normalizeInitArg 允许裸 --init-config（末尾或后接其他开关）取默认值 "."。
func normalizeInitArg() {
	args := os.Args
	if len(args) <= 1 {
		return
	}
	out := make([]string, 0, len(args)+1)
	out = append(out, args[0])
	for i := 1; i < len(args); i++ {
		a := args[i]
		out = append(out, a)
		if a == "--init-config" || a == "-init-config" {
			if i == len(args)-1 || strings.HasPrefix(args[i+1], "-") {
				out = append(out, ".")
			}
		}
	}
	os.Args = out
}

// writeDotEnv 生成 .env 模板；文件已存在时跳过。
func writeDotEnv(path string) error {
	var b strings.Builder
	p := cfgpkg.EnvPrefix
	b.WriteString("# zhcheck .env 模板（由 --init-config 生成）\n")
	b.WriteString("# 优先级：CLI > ENV(.env) > JSON > 默认值\n\n")

	b.WriteString("# 配置来源（二选一）\n")
	b.WriteString(p + "CONFIG_FILE=\n")
	b.WriteString(p + "CONFIG_JSON=\n\n")

	b.WriteString("# 运行参数覆盖\n")
	for _, k := range []string{"INPUTS", "CONCURRENCY", "TOP", "GLOSS_MAX_RUNES", "FAIL_FAST"} {
		b.WriteString(p + k + "=\n")
	}
	b.WriteString("\n# 词表\n")
	for _, k := range []string{"KNOWN_DIRS", "UNKNOWN_DIRS", "KNOWN_WORDS", "UNKNOWN_WORDS", "MAX_WORD_LENGTH"} {
		b.WriteString(p + k + "=\n")
	}
	b.WriteString("\n# 日志与指标\n")
	for _, k := range []string{"LOG_LEVEL", "LOG_DIR", "METRICS"} {
		b.WriteString(p + k + "=\n")
	}
	b.WriteString("\n# 组件选择\n")
	comps := []string{"READER", "CLEANER", "SEGMENTER", "RECOGNIZER", "GLOSSARY", "TRANSLITERATOR", "RENDERER", "WRITER"}
	for _, k := range comps {
		b.WriteString(p + "COMPONENTS_" + k + "=\n")
	}
	b.WriteString("\n# 组件 Options（JSON）\n")
	for _, k := range comps {
		b.WriteString(p + "OPTIONS_" + k + "_JSON=\n")
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	_, err = f.WriteString(b.String())
	return err
}

// preflightCheckOutputDir: 使用 fs writer 时，启动前检查输出目录可写性。
// 目录存在则尝试创建临时文件；不存在则检查父目录可写。
func preflightCheckOutputDir(cfg cfgpkg.Config) error {
	if strings.TrimSpace(cfg.Components.Writer) != "fs" {
		return nil
	}
	var wopts struct {
		OutputDir string `json:"output_dir"`
	}
	if len(cfg.Options.Writer) > 0 {
		_ = json.Unmarshal(cfg.Options.Writer, &wopts)
	}
	dir := strings.TrimSpace(wopts.OutputDir)
	if dir == "" {
		// 交由 writer 工厂报配置错误
		return nil
	}
	st, err := os.Stat(dir)
	switch {
	case err == nil && st.IsDir():
		f, err := os.CreateTemp(dir, ".wcheck-*")
		if err != nil {
			return err
		}
		name := f.Name()
		_ = f.Close()
		_ = os.Remove(name)
		return nil
	case err == nil:
		return fmt.Errorf("路径存在但不是目录: %s", dir)
	case !os.IsNotExist(err):
		return err
	}
	parent := filepath.Dir(dir)
	if parent == dir {
		return fmt.Errorf("无法确定父目录: %s", dir)
	}
	pst, err := os.Stat(parent)
	if err != nil {
		return err
	}
	if !pst.IsDir() {
		return fmt.Errorf("父路径不是目录: %s", parent)
	}
	tmpd, err := os.MkdirTemp(parent, ".wcheck-*")
	if err != nil {
		return err
	}
	return os.RemoveAll(tmpd)
}
