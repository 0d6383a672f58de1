// Package snapshot 把目录与其向量空间绑定为一个不可变的查询视图。
//
// 查询期间只持有 *Snapshot 的引用；目录变更时由 engine 构建新快照并原子替换，
// 旧快照对仍在进行中的查询保持有效。
package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rushteam/moviekit/catalog"
	"github.com/rushteam/moviekit/core"
	"github.com/rushteam/moviekit/pkg/tokenize"
	"github.com/rushteam/moviekit/vector"
)

// Snapshot 是一次构建的产物，构建后只读。
type Snapshot struct {
	ID          uuid.UUID
	Version     uint64
	CatalogHash uint64
	Catalog     *catalog.Catalog
	Index       *vector.Index
	BuiltAt     time.Time
}

// Options 是快照构建参数。
type Options struct {
	Version     uint64
	MaxFeatures int
	StopWords   string // "english"（默认）或 "none"
}

// Build 用目录的合并文本构建向量空间。
func Build(cat *catalog.Catalog, opts Options) (*Snapshot, error) {
	if cat == nil || cat.Len() == 0 {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "snapshot: catalog is empty")
	}
	stop, ok := tokenize.StopWords(opts.StopWords)
	if !ok {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput,
			fmt.Sprintf("snapshot: unknown stop word list %q", opts.StopWords))
	}

	idx, err := vector.Build(cat.Documents(),
		vector.WithMaxFeatures(opts.MaxFeatures),
		vector.WithTokenizer(tokenize.New(stop, tokenize.DefaultMinLength)),
	)
	if err != nil {
		return nil, fmt.Errorf("snapshot: build index: %w", err)
	}

	return &Snapshot{
		ID:          uuid.New(),
		Version:     opts.Version,
		CatalogHash: cat.Hash(),
		Catalog:     cat,
		Index:       idx,
		BuiltAt:     time.Now(),
	}, nil
}

// Len 返回目录条数。
func (s *Snapshot) Len() int { return s.Catalog.Len() }

type ctxKey struct{}

// NewContext 把快照放入 context，供 Pipeline 节点读取。
func NewContext(ctx context.Context, s *Snapshot) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext 取出快照。
func FromContext(ctx context.Context) (*Snapshot, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Snapshot)
	return s, ok && s != nil
}
