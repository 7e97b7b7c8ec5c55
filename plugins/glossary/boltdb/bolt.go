package boltdb

import (
	"errors"
	"fmt"
	"os"
	"time"

	bolt "go.etcd.io/bbolt"

	"zhcheck/pkg/contract"
	"zhcheck/plugins/glossary/cedict"
)

// Options 为 bbolt 释义索引的可选配置。
type Options struct {
	// Path: 索引数据库路径（必填）。
	Path string `json:"path"`
	// Source: CC-CEDICT 源文件；源文件变化（大小/修改时间）时自动重建索引。
	Source string `json:"source"`
	// Rebuild: 强制重建。
	Rebuild bool `json:"rebuild"`
}

var (
	glossBucket = []byte("gloss")
	metaBucket  = []byte("meta")
	sourceKey   = []byte("source")
)

// Store: 持久化释义索引，避免每次运行重新解析词典。
type Store struct {
	db *bolt.DB
}

// New 打开（必要时创建并导入）索引。
func New(opts *Options) (*Store, error) {
	if opts == nil || opts.Path == "" {
		return nil, fmt.Errorf("%w: bolt glossary requires path", contract.ErrConfig)
	}
	db, err := bolt.Open(opts.Path, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", contract.ErrConfig, opts.Path, err)
	}
	s := &Store{db: db}
	if err := db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(glossBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(metaBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	if opts.Source == "" {
		return s, nil
	}
	stamp, err := sourceStamp(opts.Source)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if opts.Rebuild || s.stamp() != stamp {
		if _, err := s.Import(opts.Source, stamp); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return s, nil
}

func sourceStamp(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", contract.ErrConfig, err)
	}
	return fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano()), nil
}

func (s *Store) stamp() string {
	var out string
	_ = s.db.View(func(tx *bolt.Tx) error {
		out = string(tx.Bucket(metaBucket).Get(sourceKey))
		return nil
	})
	return out
}

// Import 清空后从 CC-CEDICT 源文件重建索引，返回写入的写法数。
func (s *Store) Import(path, stamp string) (int, error) {
	var n int
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(glossBucket); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		b, err := tx.CreateBucket(glossBucket)
		if err != nil {
			return err
		}
		var putErr error
		put := func(k, v string) {
			if putErr != nil {
				return
			}
			key := []byte(k)
			if b.Get(key) == nil {
				n++
			}
			putErr = b.Put(key, []byte(v))
		}
		if err := cedict.Scan(path, func(e cedict.Entry) {
			put(e.Simplified, e.Gloss)
			if e.Traditional != e.Simplified {
				put(e.Traditional, e.Gloss)
			}
		}); err != nil {
			return err
		}
		if putErr != nil {
			return putErr
		}
		return tx.Bucket(metaBucket).Put(sourceKey, []byte(stamp))
	})
	return n, err
}

// Lookup 实现 contract.Glossary。
func (s *Store) Lookup(word string) (string, bool) {
	var (
		g  string
		ok bool
	)
	_ = s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(glossBucket).Get([]byte(word)); v != nil {
			g, ok = string(v), true
		}
		return nil
	})
	return g, ok
}

// Len 返回索引中的写法数。
func (s *Store) Len() int {
	var n int
	_ = s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(glossBucket).Stats().KeyN
		return nil
	})
	return n
}

// Close 关闭数据库。
func (s *Store) Close() error { return s.db.Close() }
