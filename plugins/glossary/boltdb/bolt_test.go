package boltdb

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zhcheck/pkg/contract"
)

const sample = "# comment\n傳統 传统 [chuan2 tong3] /tradition/\n好吃 好吃 [hao3 chi1] /tasty/delicious/\n"

func TestImportAndLookup(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "cedict.u8")
	require.NoError(t, os.WriteFile(src, []byte(sample), 0o644))
	db := filepath.Join(dir, "gloss.db")

	s, err := New(&Options{Path: db, Source: src})
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())
	g, ok := s.Lookup("傳統")
	require.True(t, ok)
	assert.Equal(t, "tradition", g)
	_, ok = s.Lookup("没有")
	assert.False(t, ok)
	require.NoError(t, s.Close())

	// 重新打开：源未变，索引沿用
	s, err = New(&Options{Path: db, Source: src})
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())
	require.NoError(t, s.Close())

	// 源变化后自动重建
	require.NoError(t, os.WriteFile(src, []byte("學生 学生 [xue2 sheng5] /student/\n"), 0o644))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(src, later, later))
	s, err = New(&Options{Path: db, Source: src})
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, 2, s.Len())
	g, ok = s.Lookup("学生")
	require.True(t, ok)
	assert.Equal(t, "student", g)
	_, ok = s.Lookup("好吃")
	assert.False(t, ok)
}

func TestWithoutSource(t *testing.T) {
	s, err := New(&Options{Path: filepath.Join(t.TempDir(), "g.db")})
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, 0, s.Len())
	_, ok := s.Lookup("你")
	assert.False(t, ok)
}

func TestNewErrors(t *testing.T) {
	_, err := New(nil)
	assert.True(t, errors.Is(err, contract.ErrConfig))
	_, err = New(&Options{Path: filepath.Join(t.TempDir(), "g.db"), Source: "/nonexistent/cedict.u8"})
	assert.True(t, errors.Is(err, contract.ErrConfig))
}
