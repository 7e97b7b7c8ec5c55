package diag

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"zhcheck/pkg/contract"
)

// Code 是最小错误分类代码。
// 仅用于日志/指标汇总，与退出码解耦。
type Code string

const (
	CodeUnknown      Code = "unknown"
	CodeInvariant    Code = "invariant"
	CodeConfig       Code = "config"
	CodeInput        Code = "input"
	CodeCollaborator Code = "collaborator"
	CodeCancel       Code = "cancel"
	CodeIO           Code = "io"
)

// Classify 将错误归为最小分类。
// 说明：仅依赖哨兵错误与标准库错误类型，不做字符串匹配。
func Classify(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	// 取消/超时优先
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCancel
	}
	if errors.Is(err, contract.ErrConfig) {
		return CodeConfig
	}
	if errors.Is(err, contract.ErrMalformedInput) || errors.Is(err, contract.ErrEmptyInput) {
		return CodeInput
	}
	if errors.Is(err, contract.ErrFallbackFailed) || errors.Is(err, contract.ErrRecognizerFailed) {
		return CodeCollaborator
	}
	if errors.Is(err, contract.ErrInvariantViolation) ||
		errors.Is(err, contract.ErrPartitionInvalid) ||
		errors.Is(err, contract.ErrSpanInvalid) ||
		errors.Is(err, contract.ErrPathInvalid) {
		return CodeInvariant
	}
	var perr *os.PathError
	if errors.As(err, &perr) || errors.Is(err, fs.ErrExist) {
		return CodeIO
	}
	return CodeUnknown
}

// NowUTC 返回 RFC3339 UTC 时间字符串（用于结构化日志字段 ts）。
func NowUTC() string { return time.Now().UTC().Format(time.RFC3339) }
