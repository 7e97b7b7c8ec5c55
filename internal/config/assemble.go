package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"zhcheck/internal/analysis"
	"zhcheck/internal/diag"
	"zhcheck/internal/pipeline"
	"zhcheck/internal/segment"
	"zhcheck/internal/vocab"
	"zhcheck/pkg/contract"
	"zhcheck/pkg/registry"
)

func cfgErr(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{contract.ErrConfig}, args...)...)
}

// Validate 对最小必要边界做静态校验。错误均包装 contract.ErrConfig。
func Validate(cfg Config) error {
	if len(cfg.Inputs) == 0 {
		return cfgErr("inputs empty")
	}
	// 输入路径不得为空字符串；"-" 不能与其他根混用
	dash := false
	for _, r := range cfg.Inputs {
		switch strings.TrimSpace(r) {
		case "":
			return cfgErr("input path cannot be empty")
		case "-":
			dash = true
		}
	}
	if dash && len(cfg.Inputs) > 1 {
		return cfgErr("'-' cannot be mixed with other roots")
	}
	if cfg.Concurrency < 1 {
		return cfgErr("concurrency must be >= 1")
	}
	if len(cfg.Vocabulary.KnownDirs) == 0 && len(cfg.Vocabulary.KnownWords) == 0 {
		return cfgErr("vocabulary: no known words source")
	}
	d := Defaults().Components
	checks := []struct {
		kind string
		name string
		ok   func(string) bool
	}{
		{"reader", effName(cfg.Components.Reader, d.Reader), func(n string) bool { return registry.Reader[n] != nil }},
		{"cleaner", effName(cfg.Components.Cleaner, d.Cleaner), func(n string) bool { return registry.Cleaner[n] != nil }},
		{"segmenter", effName(cfg.Components.Segmenter, d.Segmenter), func(n string) bool { return registry.Segmenter[n] != nil }},
		{"recognizer", effName(cfg.Components.Recognizer, d.Recognizer), func(n string) bool { return registry.Recognizer[n] != nil }},
		{"glossary", effName(cfg.Components.Glossary, d.Glossary), func(n string) bool { return registry.Glossary[n] != nil }},
		{"transliterator", effName(cfg.Components.Transliterator, d.Transliterator), func(n string) bool { return registry.Transliterator[n] != nil }},
		{"renderer", effName(cfg.Components.Renderer, d.Renderer), func(n string) bool { return registry.Renderer[n] != nil }},
		{"writer", effName(cfg.Components.Writer, d.Writer), func(n string) bool { return registry.Writer[n] != nil }},
	}
	for _, c := range checks {
		if !c.ok(c.name) {
			return cfgErr("%s %q not registered", c.kind, c.name)
		}
	}
	return nil
}

// Assemble 加载词表并构造 Components 与 Settings。
// 严格 Options 解析在 registry（工厂）层进行；此处只传 raw JSON。
// 失败时已打开的资源会被释放。
func Assemble(cfg Config, logger *diag.Logger) (comp pipeline.Components, set pipeline.Settings, err error) {
	if err := Validate(cfg); err != nil {
		return comp, set, err
	}
	defer func() {
		if err != nil {
			_ = comp.Close()
			comp = pipeline.Components{}
		}
	}()
	keep := func(v any) {
		if c, ok := v.(io.Closer); ok {
			comp.Resources = append(comp.Resources, c)
		}
	}

	// 词表
	mwl := vocab.DefaultMaxWordLength
	if cfg.Vocabulary.MaxWordLength != nil {
		mwl = *cfg.Vocabulary.MaxWordLength
	}
	vt := logger.Start("vocab", "load")
	v, sum, err := vocab.Load(vocab.Sources{
		KnownDirs:     cfg.Vocabulary.KnownDirs,
		UnknownDirs:   cfg.Vocabulary.UnknownDirs,
		KnownWords:    cfg.Vocabulary.KnownWords,
		UnknownWords:  cfg.Vocabulary.UnknownWords,
		MaxWordLength: mwl,
	})
	if err != nil {
		err = buildErr("vocabulary", err)
		logger.Error("vocab", string(diag.CodeConfig), err.Error(), vt.Since())
		return comp, set, err
	}
	vt.FinishKV("load", int64(v.Len(vocab.Known)), map[string]string{
		"known_files":   fmt.Sprintf("%d", len(sum.KnownFiles)),
		"unknown_files": fmt.Sprintf("%d", len(sum.UnknownFiles)),
		"excluded":      fmt.Sprintf("%d", v.Len(vocab.Excluded)),
	})
	if v.Len(vocab.Known) == 0 {
		logger.Warn("vocab", string(diag.CodeConfig), "no known words loaded", "")
	}

	d := Defaults().Components
	fb, err := registry.Segmenter[effName(cfg.Components.Segmenter, d.Segmenter)](cfg.Options.Segmenter)
	if err != nil {
		return comp, set, buildErr("segmenter", err)
	}
	keep(fb)
	seg, err := segment.New(v, fb)
	if err != nil {
		return comp, set, buildErr("segmenter", err)
	}
	rec, err := registry.Recognizer[effName(cfg.Components.Recognizer, d.Recognizer)](cfg.Options.Recognizer)
	if err != nil {
		return comp, set, buildErr("recognizer", err)
	}
	keep(rec)
	if comp.Analyzer, err = analysis.New(seg, rec); err != nil {
		return comp, set, buildErr("analyzer", err)
	}

	gloss, err := registry.Glossary[effName(cfg.Components.Glossary, d.Glossary)](cfg.Options.Glossary)
	if err != nil {
		return comp, set, buildErr("glossary", err)
	}
	keep(gloss)
	if l, ok := gloss.(interface{ Len() int }); ok && l.Len() == 0 {
		logger.Warn("glossary", string(diag.CodeConfig), "glossary is empty; definitions will be blank", "")
	}
	comp.Glossary = gloss

	if comp.Transliterator, err = registry.Transliterator[effName(cfg.Components.Transliterator, d.Transliterator)](cfg.Options.Transliterator); err != nil {
		return comp, set, buildErr("transliterator", err)
	}
	if comp.Renderer, err = registry.Renderer[effName(cfg.Components.Renderer, d.Renderer)](cfg.Options.Renderer); err != nil {
		return comp, set, buildErr("renderer", err)
	}
	if comp.Reader, err = registry.Reader[effName(cfg.Components.Reader, d.Reader)](cfg.Options.Reader); err != nil {
		return comp, set, buildErr("reader", err)
	}
	if comp.Cleaner, err = registry.Cleaner[effName(cfg.Components.Cleaner, d.Cleaner)](cfg.Options.Cleaner); err != nil {
		return comp, set, buildErr("cleaner", err)
	}
	if comp.Writer, err = registry.Writer[effName(cfg.Components.Writer, d.Writer)](cfg.Options.Writer); err != nil {
		return comp, set, buildErr("writer", err)
	}

	set = pipeline.Settings{
		Inputs:        cloneStrings(cfg.Inputs),
		Concurrency:   cfg.Concurrency,
		Top:           cfg.Top,
		GlossMaxRunes: cfg.GlossMaxRunes,
		KeepGoing:     !cfg.FailFast,
		KnownWords:    v.Len(vocab.Known),
	}
	return comp, set, nil
}

// buildErr 将组件构造失败归入配置错误。
func buildErr(kind string, err error) error {
	if errors.Is(err, contract.ErrConfig) {
		return fmt.Errorf("%s: %w", kind, err)
	}
	return fmt.Errorf("%w: %s: %w", contract.ErrConfig, kind, err)
}

// IsConfigError 判断错误是否属于配置阶段。
func IsConfigError(err error) bool { return errors.Is(err, contract.ErrConfig) }

func effName(got, def string) string {
	if got == "" {
		return def
	}
	return got
}
