package contract

import (
	"context"
	"io"
)

// ArtifactID: 报告工件标识（语义别名）。
// 说明：实现上与 FileID 复用同一表示，通常为 FileID + 渲染扩展名。
type ArtifactID = FileID

// Renderer: 将 Report 渲染为最终字节流（文本/JSON 等）。
// 约束：纯计算，不做 I/O；仅依据 Report 内容，不回查词表。
type Renderer interface {
	Render(ctx context.Context, rep Report) (io.Reader, error)
	// Ext: 工件扩展名（含点，如 ".txt"）；为空表示沿用 FileID。
	Ext() string
}

// Writer: 将渲染结果以流式方式持久化到目标介质（文件系统/标准输出等）。
// 约束：
//  1. 同一 ArtifactID 单写者；
//  2. 流式写入，按字节透传，不读取/修改业务内容；
//  3. ctx 取消/超时需尽快返回；
//  4. 错误直接上抛（不做重试/回退）。
type Writer interface {
	Write(ctx context.Context, id ArtifactID, r io.Reader) error
}
