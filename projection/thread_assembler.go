// Package projection builds read models out of the stored messages.
// It only reads committed state and never writes.
package projection

import (
	"chat-core/contract"
	"chat-core/domain"
	cerrors "chat-core/errors"
	"chat-core/observability"
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/samber/lo"
)

const (
	DefaultMaxDepth  = 1000
	DefaultBatchSize = 500
)

// Assembler rebuilds a reply tree level by level: every level costs one
// ChildrenOf call per batch of parents, whatever the number of replies.
type Assembler struct {
	log       *slog.Logger
	reader    contract.ThreadReader
	profiles  contract.ProfileDirectory
	metrics   *observability.Metrics
	maxDepth  int
	batchSize int
}

func NewAssembler(log *slog.Logger, reader contract.ThreadReader, profiles contract.ProfileDirectory) *Assembler {
	return &Assembler{
		log:       log,
		reader:    reader,
		profiles:  profiles,
		maxDepth:  DefaultMaxDepth,
		batchSize: DefaultBatchSize,
	}
}

func (a *Assembler) WithMaxDepth(depth int) *Assembler {
	if depth > 0 {
		a.maxDepth = depth
	}
	return a
}

func (a *Assembler) WithBatchSize(size int) *Assembler {
	if size > 0 {
		a.batchSize = size
	}
	return a
}

func (a *Assembler) WithMetrics(m *observability.Metrics) *Assembler {
	a.metrics = m
	return a
}

// Assemble returns the tree rooted at rootID. Replies are ordered by
// (created, id). A message reached twice is attached only once, and a chain
// deeper than the max depth aborts with ErrDepthExceeded.
func (a *Assembler) Assemble(ctx context.Context, rootID string) (*Node, error) {
	rootMsg, err := a.reader.FindMessage(ctx, rootID)
	if err != nil {
		return nil, err
	}
	root := &Node{Message: rootMsg}
	index := map[string]*Node{root.Message.ID: root}
	loaded := make(map[string]*domain.Profile)
	if err = a.attachProfiles(ctx, []*Node{root}, loaded); err != nil {
		return nil, err
	}

	level := []*Node{root}
	for depth := 1; ; depth++ {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		children, err := a.fetchChildren(ctx, level)
		if err != nil {
			return nil, err
		}
		if len(children) == 0 {
			break
		}
		if depth > a.maxDepth {
			return nil, fmt.Errorf("%w: thread %s deeper than %d", cerrors.ErrDepthExceeded, rootID, a.maxDepth)
		}

		next := make([]*Node, 0, len(children))
		for _, child := range children {
			if _, seen := index[child.ID]; seen {
				a.log.Warn("message reached twice while assembling thread", "root", rootID, "message", child.ID)
				continue
			}
			if child.ParentID == nil {
				continue
			}
			parent, ok := index[*child.ParentID]
			if !ok {
				continue
			}
			node := &Node{Message: child}
			parent.Children = append(parent.Children, node)
			index[child.ID] = node
			next = append(next, node)
		}
		for _, parent := range level {
			sort.SliceStable(parent.Children, func(i, j int) bool {
				return parent.Children[i].Message.Before(parent.Children[j].Message)
			})
		}
		if err = a.attachProfiles(ctx, next, loaded); err != nil {
			return nil, err
		}
		level = next
	}

	a.metrics.ThreadAssembled(len(index))
	a.log.Debug("thread assembled", "root", rootID, "nodes", len(index))
	return root, nil
}

func (a *Assembler) fetchChildren(ctx context.Context, level []*Node) ([]domain.Message, error) {
	ids := lo.Map(level, func(n *Node, _ int) string { return n.Message.ID })
	var children []domain.Message
	for _, chunk := range lo.Chunk(ids, a.batchSize) {
		batch, err := a.reader.ChildrenOf(ctx, chunk)
		if err != nil {
			return nil, err
		}
		children = append(children, batch...)
	}
	return children, nil
}

// attachProfiles loads the senders of a level in one call, skipping the
// senders already seen on upper levels.
func (a *Assembler) attachProfiles(ctx context.Context, level []*Node, loaded map[string]*domain.Profile) error {
	if a.profiles == nil || len(level) == 0 {
		return nil
	}
	missing := lo.Uniq(lo.FilterMap(level, func(n *Node, _ int) (string, bool) {
		_, ok := loaded[n.Message.SenderID]
		return n.Message.SenderID, !ok
	}))
	if len(missing) > 0 {
		profiles, err := a.profiles.Profiles(ctx, missing)
		if err != nil {
			return err
		}
		for _, id := range missing {
			if p, ok := profiles[id]; ok {
				loaded[id] = &p
			} else {
				loaded[id] = nil
			}
		}
	}
	for _, n := range level {
		n.Sender = loaded[n.Message.SenderID]
	}
	return nil
}
