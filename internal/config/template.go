package config

import "encoding/json"

// DefaultTemplateConfig 返回一个可运行的默认配置模板：
// 输入目录 input/，已知词 known/，未知词 unknown/，CC-CEDICT 释义 definitions.txt；
// 报告打印到标准输出。选项包含全部键，值为中性默认。
func DefaultTemplateConfig() Config {
	cfg := Defaults()
	cfg.Inputs = []string{"input"}
	cfg.Options.Reader = json.RawMessage(`{
  "buf_size": 65536,
  "include_exts": [".txt", ".md", ".markdown"],
  "exclude_dir_names": [".git", "node_modules"],
  "include_hidden": false
}`)
	cfg.Options.Cleaner = json.RawMessage(`{
  "allow_exts": [".txt", ".md", ".markdown"],
  "markdown_exts": [".md", ".markdown"],
  "max_bytes": 0
}`)
	cfg.Options.Segmenter = json.RawMessage(`{
  "dict_dir": "",
  "user_dict": "",
  "hmm": true
}`)
	cfg.Options.Recognizer = json.RawMessage(`{
  "dict_dir": "",
  "user_dict": "",
  "tags": ["nr", "nrfg", "nrt", "ns", "nt"]
}`)
	cfg.Options.Glossary = json.RawMessage(`{
  "path": "definitions.txt",
  "required": false
}`)
	cfg.Options.Transliterator = json.RawMessage(`{
  "style": "tone"
}`)
	cfg.Options.Renderer = json.RawMessage(`{
  "ext": ".report.txt",
  "show_proper_nouns": false
}`)
	cfg.Options.Writer = json.RawMessage(`{
  "banner": true
}`)
	return cfg
}
