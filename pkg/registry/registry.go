package registry

import (
	"bytes"
	"encoding/json"

	"zhcheck/pkg/contract"
	cplain "zhcheck/plugins/cleaner/plain"
	gbolt "zhcheck/plugins/glossary/boltdb"
	gcedict "zhcheck/plugins/glossary/cedict"
	njieba "zhcheck/plugins/nlp/jieba"
	nrunes "zhcheck/plugins/nlp/runes"
	rfs "zhcheck/plugins/reader/filesystem"
	rjson "zhcheck/plugins/renderer/jsonreport"
	rtext "zhcheck/plugins/renderer/text"
	tpinyin "zhcheck/plugins/translit/pinyin"
	wfs "zhcheck/plugins/writer/filesystem"
	wstdout "zhcheck/plugins/writer/stdout"
)

// strictUnmarshal: 使用 DisallowUnknownFields 严格解码，拒绝未知字段。
func strictUnmarshal(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		// 保持零值（默认选项）
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// NewReader 工厂签名：接收原样 JSON Options。
type NewReader func(raw json.RawMessage) (contract.Reader, error)

// NewCleaner 工厂签名。
type NewCleaner func(raw json.RawMessage) (contract.Cleaner, error)

// NewSegmenter 工厂签名。
type NewSegmenter func(raw json.RawMessage) (contract.GeneralSegmenter, error)

// NewRecognizer 工厂签名。
type NewRecognizer func(raw json.RawMessage) (contract.EntityRecognizer, error)

// NewGlossary 工厂签名。
type NewGlossary func(raw json.RawMessage) (contract.Glossary, error)

// NewTransliterator 工厂签名。
type NewTransliterator func(raw json.RawMessage) (contract.Transliterator, error)

// NewRenderer 工厂签名。
type NewRenderer func(raw json.RawMessage) (contract.Renderer, error)

// NewWriter 工厂签名：接收原样 JSON Options。
type NewWriter func(raw json.RawMessage) (contract.Writer, error)

// Reader 工厂注册表（显式、零反射）。
var Reader = map[string]NewReader{
	// fs: 文件系统/STDIN Reader
	"fs": func(raw json.RawMessage) (contract.Reader, error) {
		var opts rfs.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return rfs.New(&opts), nil
	},
}

// Cleaner 工厂注册表。
var Cleaner = map[string]NewCleaner{
	// plain: 纯文本/Markdown 解码清洗
	"plain": func(raw json.RawMessage) (contract.Cleaner, error) {
		var opts cplain.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return cplain.New(&opts), nil
	},
}

// Segmenter 工厂注册表（词表未覆盖子串的回退分词）。
var Segmenter = map[string]NewSegmenter{
	"jieba": func(raw json.RawMessage) (contract.GeneralSegmenter, error) {
		var opts njieba.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return njieba.NewSegmenter(&opts), nil
	},
	// runes: 逐字切分，无模型
	"runes": func(raw json.RawMessage) (contract.GeneralSegmenter, error) {
		if err := strictUnmarshal(raw, &struct{}{}); err != nil {
			return nil, err
		}
		return nrunes.Segmenter{}, nil
	},
}

// Recognizer 工厂注册表。
var Recognizer = map[string]NewRecognizer{
	"jieba": func(raw json.RawMessage) (contract.EntityRecognizer, error) {
		var opts njieba.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return njieba.NewRecognizer(&opts), nil
	},
	// none: 不排除专名
	"none": func(raw json.RawMessage) (contract.EntityRecognizer, error) {
		if err := strictUnmarshal(raw, &struct{}{}); err != nil {
			return nil, err
		}
		return nrunes.NoEntities{}, nil
	},
}

// Glossary 工厂注册表。
var Glossary = map[string]NewGlossary{
	// cedict: 启动时整表解析 CC-CEDICT
	"cedict": func(raw json.RawMessage) (contract.Glossary, error) {
		var opts gcedict.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return gcedict.New(&opts)
	},
	// bolt: 持久化索引，源文件变化时重建
	"bolt": func(raw json.RawMessage) (contract.Glossary, error) {
		var opts gbolt.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return gbolt.New(&opts)
	},
}

// Transliterator 工厂注册表。
var Transliterator = map[string]NewTransliterator{
	"pinyin": func(raw json.RawMessage) (contract.Transliterator, error) {
		var opts tpinyin.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return tpinyin.New(&opts)
	},
}

// Renderer 工厂注册表。
var Renderer = map[string]NewRenderer{
	"text": func(raw json.RawMessage) (contract.Renderer, error) {
		var opts rtext.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return rtext.New(&opts), nil
	},
	"json": func(raw json.RawMessage) (contract.Renderer, error) {
		var opts rjson.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return rjson.New(&opts), nil
	},
}

// Writer 工厂注册表。
var Writer = map[string]NewWriter{
	// fs: 文件系统 Writer（覆盖写/原子替换可配置）
	"fs": func(raw json.RawMessage) (contract.Writer, error) {
		var opts wfs.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return wfs.New(&opts)
	},
	// stdout: 按文件打印到标准输出
	"stdout": func(raw json.RawMessage) (contract.Writer, error) {
		var opts wstdout.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return wstdout.New(&opts), nil
	},
}
