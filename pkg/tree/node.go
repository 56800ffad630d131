package tree

import "github.com/flier/shuffle/pkg/arena"

type color bool

const (
	red   color = true
	black color = false
)

// node is the payload stored in the arena slab. Every field is exported
// only within the package: external callers interact with nodes through
// Ref handles and Tree methods, never directly.
type node[Item any] struct {
	item       Item
	hash       uint64
	generation uint64

	color color
	index arena.Index

	parent, left, right arena.Index

	// children is the count of descendants, excluding self.
	children uint64
	// minGen and maxGen are the minimum and maximum generation over the
	// subtree rooted at this node, inclusive of self.
	minGen, maxGen uint64
}

// Ref addresses a single node within a Tree. It is only meaningful for the
// Tree that produced it; Refs do not survive across trees.
type Ref = arena.Index

// NoRef is the sentinel Ref meaning "no node" (arena.Nil, not the zero
// value, which addresses slot 0).
const NoRef Ref = arena.Nil
