package config

import (
	"encoding/json"
)

// Config: 运行期只读配置（一次解析，运行期不变）。
// JSON 使用 snake_case；未知字段在解析期失败。
type Config struct {
	Inputs      []string `json:"inputs"`
	Concurrency int      `json:"concurrency"`
	// Top: 报告中展示的生词数；<=0 表示全部。
	Top int `json:"top"`
	// GlossMaxRunes: 释义截断长度（字符）；<=0 不截断。
	GlossMaxRunes int `json:"gloss_max_runes"`
	// FailFast: 任一文件失败即停止；默认继续处理其余文件。
	FailFast bool `json:"fail_fast"`

	Vocabulary Vocabulary `json:"vocabulary"`
	Logging    Logging    `json:"logging"`
	Metrics    Metrics    `json:"metrics"`

	// 组件名选择（空则使用默认名）。
	Components Components `json:"components"`
	// 各组件 Options 子树，原样 JSON 传入工厂。
	Options Options `json:"options"`
}

// Vocabulary: 词表来源。目录内读取 *.txt，也可直接给出文件。
type Vocabulary struct {
	KnownDirs    []string `json:"known_dirs"`
	UnknownDirs  []string `json:"unknown_dirs"`
	KnownWords   []string `json:"known_words"`
	UnknownWords []string `json:"unknown_words"`
	// MaxWordLength: 词表匹配窗口（字符）；0 表示取最长词长。未设置为 4。
	MaxWordLength *int `json:"max_word_length,omitempty"`
}

// Logging: 日志等级与目录。Dir 为 "-" 时写 stderr。
type Logging struct {
	Level string `json:"level"`
	Dir   string `json:"dir"`
}

// Metrics: 运行结束时向 stderr 输出指标快照。
type Metrics struct {
	Enabled bool `json:"enabled"`
}

// Components: 组件名选择（注册表中的实现名）。
type Components struct {
	Reader         string `json:"reader"`
	Cleaner        string `json:"cleaner"`
	Segmenter      string `json:"segmenter"`
	Recognizer     string `json:"recognizer"`
	Glossary       string `json:"glossary"`
	Transliterator string `json:"transliterator"`
	Renderer       string `json:"renderer"`
	Writer         string `json:"writer"`
}

// Options: 各组件的原样 JSON Options。
type Options struct {
	Reader         json.RawMessage `json:"reader"`
	Cleaner        json.RawMessage `json:"cleaner"`
	Segmenter      json.RawMessage `json:"segmenter"`
	Recognizer     json.RawMessage `json:"recognizer"`
	Glossary       json.RawMessage `json:"glossary"`
	Transliterator json.RawMessage `json:"transliterator"`
	Renderer       json.RawMessage `json:"renderer"`
	Writer         json.RawMessage `json:"writer"`
}
