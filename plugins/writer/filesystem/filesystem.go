package filesystem

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"zhcheck/pkg/contract"
)

// Options 为报告文件 Writer 的配置。
type Options struct {
	// OutputDir: 报告输出根目录（必需）。
	OutputDir string `json:"output_dir"`
	// Layout: "mirror"（默认，按输入路径镜像目录层级）或 "flat"（仅保留文件名）。
	Layout string `json:"layout"`
	// Atomic: 同目录临时文件 + rename 原子替换；默认 true。
	Atomic *bool `json:"atomic,omitempty"`
	// Overwrite: 目标已存在时是否覆盖；默认 true，false 时返回 os.ErrExist。
	Overwrite *bool `json:"overwrite,omitempty"`
	// PermFile/PermDir: 为 0 时使用 0644/0755。
	PermFile os.FileMode `json:"perm_file,omitempty"`
	PermDir  os.FileMode `json:"perm_dir,omitempty"`
	// BufSize: 写缓冲区大小；<=0 使用 64KiB。
	BufSize int `json:"buf_size,omitempty"`
}

// FS 将报告写入文件系统。
type FS struct {
	root      string
	flat      bool
	atomic    bool
	overwrite bool
	permF     os.FileMode
	permD     os.FileMode
	bufSize   int
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// New 创建文件系统 Writer。
func New(opts *Options) (*FS, error) {
	if opts == nil || strings.TrimSpace(opts.OutputDir) == "" {
		return nil, fmt.Errorf("%w: output_dir is required", contract.ErrConfig)
	}
	w := &FS{
		root:      opts.OutputDir,
		atomic:    boolOr(opts.Atomic, true),
		overwrite: boolOr(opts.Overwrite, true),
		permF:     0o644,
		permD:     0o755,
		bufSize:   64 * 1024,
	}
	switch strings.ToLower(strings.TrimSpace(opts.Layout)) {
	case "", "mirror":
	case "flat":
		w.flat = true
	default:
		return nil, fmt.Errorf("%w: unknown layout %q", contract.ErrConfig, opts.Layout)
	}
	if opts.PermFile != 0 {
		w.permF = opts.PermFile
	}
	if opts.PermDir != 0 {
		w.permD = opts.PermDir
	}
	if opts.BufSize > 0 {
		w.bufSize = opts.BufSize
	}
	return w, nil
}

var _ contract.Writer = (*FS)(nil)

// Write 将 r 的全部字节写入 id 映射的目标路径。
func (w *FS) Write(ctx context.Context, id contract.ArtifactID, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dest, err := w.mapPath(id)
	if err != nil {
		return err
	}
	if !w.overwrite {
		if _, err := os.Lstat(dest); err == nil {
			return fmt.Errorf("%s: %w", dest, os.ErrExist)
		}
	}
	if err := os.MkdirAll(filepath.Dir(dest), w.permD); err != nil {
		return err
	}
	if w.atomic {
		return w.writeAtomic(ctx, dest, r)
	}
	return w.writeDirect(ctx, dest, r)
}

// mapPath 将工件标识映射到 root 之下。
// mirror 布局下绝对路径去掉卷名与前导分隔符后镜像；任何 '..' 逃逸均拒绝。
func (w *FS) mapPath(id contract.ArtifactID) (string, error) {
	rel := filepath.Clean(filepath.FromSlash(string(id)))
	if w.flat {
		rel = filepath.Base(rel)
	} else {
		rel = strings.TrimPrefix(rel, filepath.VolumeName(rel))
		rel = strings.TrimLeft(rel, `/\`)
	}
	if rel == "" || rel == "." || rel == ".." || rel == string(filepath.Separator) {
		return "", contract.ErrPathInvalid
	}
	if strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", contract.ErrPathInvalid
	}
	return filepath.Join(w.root, rel), nil
}

func (w *FS) writeDirect(ctx context.Context, dest string, r io.Reader) error {
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, w.permF)
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(f, w.bufSize)
	_, err = io.Copy(bw, ctxReader{ctx: ctx, r: r})
	if err == nil {
		err = bw.Flush()
	}
	return errors.Join(err, f.Close())
}

func (w *FS) writeAtomic(ctx context.Context, dest string, r io.Reader) (err error) {
	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()
	_ = os.Chmod(tmpPath, w.permF)

	bw := bufio.NewWriterSize(tmp, w.bufSize)
	if _, err = io.Copy(bw, ctxReader{ctx: ctx, r: r}); err == nil {
		if err = bw.Flush(); err == nil {
			err = tmp.Sync()
		}
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	// os.Rename 在 Windows 上同样覆盖已存在目标
	if err = os.Rename(tmpPath, dest); err != nil {
		return err
	}
	syncDir(dir)
	return nil
}

// syncDir 尽力同步父目录元数据；不支持的平台忽略错误。
func syncDir(dir string) {
	f, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = f.Sync()
	_ = f.Close()
}

// ctxReader 在每次 Read 前检查 ctx 是否已取消。
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr ctxReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
