package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"

	"zhcheck/internal/vocab"
)

// EnvPrefix 为环境变量前缀。
const EnvPrefix = "ZHCHECK_"

// Defaults 返回带有安全默认值的 Config 雏形。
// 输入不设默认（必须由 JSON/ENV/CLI 提供）。
func Defaults() Config {
	mwl := vocab.DefaultMaxWordLength
	return Config{
		Concurrency:   runtime.NumCPU(),
		Top:           20,
		GlossMaxRunes: 80,
		Vocabulary: Vocabulary{
			KnownDirs:     []string{"known"},
			UnknownDirs:   []string{"unknown"},
			MaxWordLength: &mwl,
		},
		Logging: Logging{Level: "info", Dir: "logs"},
		Components: Components{
			Reader:         "fs",
			Cleaner:        "plain",
			Segmenter:      "jieba",
			Recognizer:     "jieba",
			Glossary:       "cedict",
			Transliterator: "pinyin",
			Renderer:       "text",
			Writer:         "stdout",
		},
	}
}

// LoadJSON 从文件路径或原始 JSON 解析 Config（严格拒绝未知字段）。
func LoadJSON(path string, raw []byte) (Config, error) {
	var cfg Config
	var r io.Reader
	switch {
	case len(raw) > 0:
		r = bytes.NewReader(raw)
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return cfg, err
		}
		defer f.Close()
		r = f
	default:
		return cfg, errors.New("no config source provided")
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// 组件名与 Options 的字段表，顺序与 componentKeys 对齐。
var componentKeys = []string{"READER", "CLEANER", "SEGMENTER", "RECOGNIZER", "GLOSSARY", "TRANSLITERATOR", "RENDERER", "WRITER"}

func (c *Components) fields() []*string {
	return []*string{&c.Reader, &c.Cleaner, &c.Segmenter, &c.Recognizer, &c.Glossary, &c.Transliterator, &c.Renderer, &c.Writer}
}

func (o *Options) fields() []*json.RawMessage {
	return []*json.RawMessage{&o.Reader, &o.Cleaner, &o.Segmenter, &o.Recognizer, &o.Glossary, &o.Transliterator, &o.Renderer, &o.Writer}
}

// Merge 按优先级合并（后者覆盖前者）。
// 仅标量/字符串/列表/原样 JSON 为“替换”；不做深度合并。
func Merge(base, over Config) Config {
	out := base
	if len(over.Inputs) > 0 {
		out.Inputs = cloneStrings(over.Inputs)
	}
	if over.Concurrency != 0 {
		out.Concurrency = over.Concurrency
	}
	if over.Top != 0 {
		out.Top = over.Top
	}
	if over.GlossMaxRunes != 0 {
		out.GlossMaxRunes = over.GlossMaxRunes
	}
	if over.FailFast {
		out.FailFast = true
	}

	// 词表
	if len(over.Vocabulary.KnownDirs) > 0 {
		out.Vocabulary.KnownDirs = cloneStrings(over.Vocabulary.KnownDirs)
	}
	if len(over.Vocabulary.UnknownDirs) > 0 {
		out.Vocabulary.UnknownDirs = cloneStrings(over.Vocabulary.UnknownDirs)
	}
	if len(over.Vocabulary.KnownWords) > 0 {
		out.Vocabulary.KnownWords = cloneStrings(over.Vocabulary.KnownWords)
	}
	if len(over.Vocabulary.UnknownWords) > 0 {
		out.Vocabulary.UnknownWords = cloneStrings(over.Vocabulary.UnknownWords)
	}
	// 0 有语义（取最长词长），以是否设置区分
	if over.Vocabulary.MaxWordLength != nil {
		v := *over.Vocabulary.MaxWordLength
		out.Vocabulary.MaxWordLength = &v
	}

	if lv := strings.TrimSpace(over.Logging.Level); lv != "" {
		out.Logging.Level = lv
	}
	if d := strings.TrimSpace(over.Logging.Dir); d != "" {
		out.Logging.Dir = d
	}
	if over.Metrics.Enabled {
		out.Metrics.Enabled = true
	}

	// 组件名（空不覆盖）
	dst := out.Components.fields()
	for i, p := range over.Components.fields() {
		if s := strings.TrimSpace(*p); s != "" {
			*dst[i] = s
		}
	}
	// Options（完整替换对应键）
	dopt := out.Options.fields()
	for i, p := range over.Options.fields() {
		if len(*p) > 0 {
			*dopt[i] = cloneRaw(*p)
		}
	}
	return out
}

// EnvOverlay 从环境变量构建一个 Config 覆盖（仅解析有限键集合）。
// 前缀 ZHCHECK_；支持：INPUTS, CONCURRENCY, TOP, GLOSS_MAX_RUNES, FAIL_FAST,
// KNOWN_DIRS, UNKNOWN_DIRS, KNOWN_WORDS, UNKNOWN_WORDS, MAX_WORD_LENGTH,
// LOG_LEVEL, LOG_DIR, METRICS, COMPONENTS_<NAME>, OPTIONS_<NAME>_JSON。
// 数值非法时返回错误。
func EnvOverlay(environ []string) (Config, error) {
	var over Config
	for _, kv := range environ {
		if !strings.HasPrefix(kv, EnvPrefix) {
			continue
		}
		key, val, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		nk := strings.TrimPrefix(key, EnvPrefix)
		var err error
		switch nk {
		case "INPUTS":
			over.Inputs = splitComma(val)
		case "CONCURRENCY":
			over.Concurrency, err = atoi(val)
		case "TOP":
			over.Top, err = atoi(val)
		case "GLOSS_MAX_RUNES":
			over.GlossMaxRunes, err = atoi(val)
		case "FAIL_FAST":
			over.FailFast, err = parseBool(val)
		case "KNOWN_DIRS":
			over.Vocabulary.KnownDirs = splitComma(val)
		case "UNKNOWN_DIRS":
			over.Vocabulary.UnknownDirs = splitComma(val)
		case "KNOWN_WORDS":
			over.Vocabulary.KnownWords = splitComma(val)
		case "UNKNOWN_WORDS":
			over.Vocabulary.UnknownWords = splitComma(val)
		case "MAX_WORD_LENGTH":
			var n int
			if n, err = atoi(val); err == nil {
				over.Vocabulary.MaxWordLength = &n
			}
		case "LOG_LEVEL":
			over.Logging.Level = strings.TrimSpace(val)
		case "LOG_DIR":
			over.Logging.Dir = strings.TrimSpace(val)
		case "METRICS":
			over.Metrics.Enabled, err = parseBool(val)
		default:
			if name, ok := strings.CutPrefix(nk, "COMPONENTS_"); ok {
				if i := indexOf(componentKeys, name); i >= 0 {
					*over.Components.fields()[i] = strings.TrimSpace(val)
				}
				continue
			}
			if rest, ok := strings.CutPrefix(nk, "OPTIONS_"); ok {
				name, ok := strings.CutSuffix(rest, "_JSON")
				i := indexOf(componentKeys, name)
				// 空值视为未设置，避免清空现有配置
				if ok && i >= 0 && strings.TrimSpace(val) != "" {
					if !json.Valid([]byte(val)) {
						return over, fmt.Errorf("env %s: invalid JSON", key)
					}
					*over.Options.fields()[i] = json.RawMessage(val)
				}
			}
		}
		if err != nil {
			return over, fmt.Errorf("env %s: %w", key, err)
		}
	}
	return over, nil
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneRaw(in json.RawMessage) json.RawMessage {
	if len(in) == 0 {
		return nil
	}
	out := make([]byte, len(in))
	copy(out, in)
	return out
}

func splitComma(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

func parseBool(s string) (bool, error) {
	return strconv.ParseBool(strings.TrimSpace(s))
}
