package mirror

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/erp/zidsync/internal/domain/shared"
)

// maxTreeDepth bounds recursive category payloads. Real stores nest a
// handful of levels; anything deeper is a malformed or cyclic payload.
const maxTreeDepth = 32

// Category mirrors one node of the remote category tree. Parentage is
// tracked by remote id so the tree survives re-imports in any order.
type Category struct {
	shared.BaseEntity

	ConnectorID    uuid.UUID
	RemoteID       string
	ParentRemoteID string

	Name        LocalizedText
	Description LocalizedText

	// DisplayPath is the full ancestry rendered for humans, e.g.
	// "Electronics / Phones / Accessories". Recomputed top-down on
	// every import.
	DisplayPath string

	Active       bool
	LastImportAt time.Time
}

// NewCategory creates a category mirror
func NewCategory(connectorID uuid.UUID, remoteID string) (*Category, error) {
	remoteID = strings.TrimSpace(remoteID)
	if remoteID == "" {
		return nil, ErrRemoteIDRequired
	}
	return &Category{
		BaseEntity:   shared.NewBaseEntity(),
		ConnectorID:  connectorID,
		RemoteID:     remoteID,
		Active:       true,
		LastImportAt: time.Now(),
	}, nil
}

// Overwrite replaces descriptive fields from a fresh payload
func (c *Category) Overwrite(src *Category) {
	c.ParentRemoteID = src.ParentRemoteID
	c.Name = src.Name
	c.Description = src.Description
	c.DisplayPath = src.DisplayPath
	c.Active = true
	c.LastImportAt = time.Now()
	c.UpdatedAt = time.Now()
}

// JoinPath renders a child's display path under its parent's.
func JoinPath(parentPath, name string) string {
	if parentPath == "" {
		return name
	}
	return parentPath + " / " + name
}

// TreeNode is one node of a nested category payload before flattening.
type TreeNode struct {
	RemoteID    string
	Name        LocalizedText
	Description LocalizedText
	Children    []TreeNode
}

// flatNode pairs a tree node with its resolved ancestry.
type flatNode struct {
	Node           TreeNode
	ParentRemoteID string
	ParentPath     string
}

// FlattenTree walks a nested category payload and returns one Category
// per node, parents strictly before children, with DisplayPath resolved.
// The walk is iterative with an explicit stack and fails with
// ErrTreeTooDeep instead of recursing into malformed payloads.
func FlattenTree(connectorID uuid.UUID, roots []TreeNode) ([]*Category, error) {
	type frame struct {
		flatNode
		depth int
	}

	// Seed in reverse so the stack pops roots in payload order.
	stack := make([]frame, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{flatNode: flatNode{Node: roots[i]}})
	}

	var out []*Category
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if top.depth >= maxTreeDepth {
			return nil, ErrTreeTooDeep
		}

		cat, err := NewCategory(connectorID, top.Node.RemoteID)
		if err != nil {
			return nil, err
		}
		cat.Name = top.Node.Name
		cat.Description = top.Node.Description
		cat.ParentRemoteID = top.ParentRemoteID
		cat.DisplayPath = JoinPath(top.ParentPath, cat.Name.Resolve(cat.RemoteID))
		out = append(out, cat)

		for i := len(top.Node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{
				flatNode: flatNode{
					Node:           top.Node.Children[i],
					ParentRemoteID: cat.RemoteID,
					ParentPath:     cat.DisplayPath,
				},
				depth: top.depth + 1,
			})
		}
	}
	return out, nil
}
