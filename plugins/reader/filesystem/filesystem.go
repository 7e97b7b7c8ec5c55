package filesystem

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"zhcheck/pkg/contract"
)

// StdinID: 从标准输入读取时使用的 FileID。
const StdinID contract.FileID = "stdin.txt"

// Options 为 FileSystem Reader 的可选配置。
type Options struct {
	// BufSize 为读缓冲区大小（字节）。默认 64KiB。
	BufSize int `json:"buf_size"`
	// IncludeExts: 扫描目录时只收集这些扩展名（大小写不敏感，含点）。
	// 为空时采用默认 [".txt", ".md", ".markdown"]；显式空切片表示不过滤。
	// 直接列在 roots 中的文件不受影响。
	IncludeExts []string `json:"include_exts"`
	// ExcludeDirNames: 扫描时跳过的目录基名（大小写不敏感）。
	ExcludeDirNames []string `json:"exclude_dir_names"`
	// IncludeHidden: 是否包含以 '.' 开头的文件与目录；默认跳过。
	IncludeHidden bool `json:"include_hidden"`
}

// FileSystem 实现基于文件系统与 STDIN 的 Reader。
type FileSystem struct {
	bufSize    int
	include    map[string]struct{} // nil 表示不过滤
	excludeDir map[string]struct{}
	hidden     bool
}

func lowerSet(in []string) map[string]struct{} {
	m := make(map[string]struct{}, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			m[strings.ToLower(s)] = struct{}{}
		}
	}
	return m
}

// New 创建 FileSystem Reader。
func New(opts *Options) *FileSystem {
	r := &FileSystem{bufSize: 64 * 1024, excludeDir: map[string]struct{}{}}
	if opts == nil || opts.IncludeExts == nil {
		r.include = lowerSet([]string{".txt", ".md", ".markdown"})
	} else if len(opts.IncludeExts) > 0 {
		r.include = lowerSet(opts.IncludeExts)
	}
	if opts != nil {
		if opts.BufSize > 0 {
			r.bufSize = opts.BufSize
		}
		r.excludeDir = lowerSet(opts.ExcludeDirNames)
		r.hidden = opts.IncludeHidden
	}
	return r
}

// Iterate 遍历 roots，按稳定顺序对每个待分析文件调用 yield。
// roots 为空或仅为 "-" 时读取 STDIN。yield 负责关闭 ReadCloser；yield 出错时由本函数关闭。
func (r *FileSystem) Iterate(ctx context.Context, roots []string, yield func(fileID contract.FileID, rc io.ReadCloser) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(roots) == 0 || (len(roots) == 1 && roots[0] == "-") {
		return yield(StdinID, r.wrap(os.Stdin))
	}
	for _, s := range roots {
		if s == "-" {
			return errors.New("stdin '-' cannot be mixed with other roots")
		}
	}
	seen := make(map[contract.FileID]struct{})
	for _, root := range roots {
		paths, err := r.collect(ctx, root)
		if err != nil {
			return err
		}
		for _, p := range paths {
			id := contract.NormalizeFileID(p)
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := os.Open(p)
			if err != nil {
				return err
			}
			rc := r.wrap(f)
			if err := yield(id, rc); err != nil {
				_ = rc.Close()
				return err
			}
		}
	}
	return nil
}

// collect 返回 root 下的待读文件（字典序，子目录内容排在同级文件之前）。
// 目录符号链接不跟随；指向常规文件的符号链接保留。
func (r *FileSystem) collect(ctx context.Context, root string) ([]string, error) {
	info, err := os.Lstat(root)
	if err != nil {
		return nil, err
	}
	if info.Mode()&os.ModeSymlink != 0 {
		t, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if t.Mode().IsRegular() {
			return []string{root}, nil
		}
		return nil, nil
	}
	if info.Mode().IsRegular() {
		return []string{root}, nil
	}
	if !info.IsDir() {
		return nil, nil
	}
	var out []string
	err = r.walk(ctx, root, &out)
	return out, err
}

func (r *FileSystem) walk(ctx context.Context, dir string, out *[]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	var files []string
	for _, e := range entries {
		name := e.Name()
		if !r.hidden && strings.HasPrefix(name, ".") {
			continue
		}
		p := filepath.Join(dir, name)
		switch {
		case e.IsDir():
			if _, skip := r.excludeDir[strings.ToLower(name)]; skip {
				continue
			}
			if err := r.walk(ctx, p, out); err != nil {
				return err
			}
		case e.Type()&os.ModeSymlink != 0:
			t, err := os.Stat(p)
			if err != nil {
				return err
			}
			if t.Mode().IsRegular() && r.accept(name) {
				files = append(files, p)
			}
		case e.Type().IsRegular():
			if r.accept(name) {
				files = append(files, p)
			}
		}
	}
	*out = append(*out, files...)
	return nil
}

func (r *FileSystem) accept(name string) bool {
	if r.include == nil {
		return true
	}
	_, ok := r.include[strings.ToLower(filepath.Ext(name))]
	return ok
}

func (r *FileSystem) wrap(c io.ReadCloser) io.ReadCloser {
	return &bufferedCloser{Reader: bufio.NewReaderSize(c, r.bufSize), c: c}
}

// bufferedCloser 将 bufio.Reader 与底层 Closer 组合为 ReadCloser。
type bufferedCloser struct {
	*bufio.Reader
	c io.Closer
}

func (b *bufferedCloser) Close() error { return b.c.Close() }

var _ contract.Reader = (*FileSystem)(nil)
