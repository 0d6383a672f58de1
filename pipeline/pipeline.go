package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rushteam/moviekit/core"
)

// NodeHook 在每个 Node 执行后被调用，用于打点与调试日志。
type NodeHook func(node Node, elapsed time.Duration, in, out int, err error)

// Pipeline 把一次推荐拆成可组合的 Node 链：召回 → 过滤 → 重排。
type Pipeline struct {
	Nodes []Node

	// Hooks 可选；按注册顺序调用
	Hooks []NodeHook
}

// Run 依次执行 Node，上一个 Node 的输出是下一个 Node 的输入。
// context 被取消时在下一个 Node 开始前返回。
func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		next, err := node.Process(ctx, rctx, cur)
		for _, h := range p.Hooks {
			h(node, time.Since(start), len(cur), len(next), err)
		}
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", node.Name(), err)
		}
		cur = next
	}
	return cur, nil
}
