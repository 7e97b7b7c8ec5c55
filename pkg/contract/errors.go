package contract

import "errors"

// 最小错误分类（用于上层策略判定与日志归类）。
var (
	// ErrMalformedInput: 非法 UTF-8 或无法解码的字节流；在分词前拒绝。
	ErrMalformedInput = errors.New("malformed input")
	// ErrEmptyInput: 文件为空或清洗后无可分析文本。
	ErrEmptyInput = errors.New("empty input")
	// ErrConfig: 词表/词典等配置源不可读或格式非法。
	ErrConfig = errors.New("configuration error")
	// ErrFallbackFailed: 通用分词器调用失败。
	ErrFallbackFailed = errors.New("fallback segmenter failed")
	// ErrRecognizerFailed: 专名识别器调用失败。
	ErrRecognizerFailed = errors.New("entity recognizer failed")
	// ErrPartitionInvalid: 词元序列未完整、无重叠地覆盖原文。
	ErrPartitionInvalid = errors.New("partition invalid")
	// ErrSpanInvalid: 专名区间越界、逆序或相互重叠。
	ErrSpanInvalid = errors.New("span invalid")
	// ErrPathInvalid: 目标标识映射为无效/越界路径（例如绝对路径或 '..' 逃逸）。
	ErrPathInvalid = errors.New("path invalid")
	// ErrInvariantViolation: 领域不变量违例（通用哨兵）。
	ErrInvariantViolation = errors.New("invariant violation")
)
