package contract

import (
	"context"
	"io"
)

// Reader: 输入源抽象（文件/目录/STDIN）。
// 约束：
// 1) 流式读取，按文件维度回调；
// 2) FileID 稳定且去平台差异化；
// 3) 不做解码/业务解析，仅提供字节流；
// 4) 不在内部起并发。
type Reader interface {
	Iterate(ctx context.Context, roots []string, yield func(fileID FileID, r io.ReadCloser) error) error
}

// Cleaner: 将单文件字节流解码并清洗为待分析文本。
// 约束：
// 1) 非法 UTF-8 返回 ErrMalformedInput；
// 2) 空文件或清洗后为空返回 ErrEmptyInput；
// 3) 不在允许范围内的文件返回 ("", nil)，由编排层静默跳过；
// 4) 无内部并发、幂等。
type Cleaner interface {
	Clean(ctx context.Context, fileID FileID, r io.Reader) (string, error)
}
