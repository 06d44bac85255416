package kcl

import (
	"fmt"
	"math"

	"github.com/zeusync/ghostsim/pkg/encoding"
	"github.com/zeusync/ghostsim/pkg/geom"
)

const (
	leafFlag   = 0x80000000
	branchSize = 0x20
)

type nodeKind uint8

const (
	nodeLeaf nodeKind = iota
	nodeBranch
)

// node is either a leaf pointing into triLists or a branch pointing into
// branches.
type node struct {
	kind nodeKind
	idx  uint32
}

type octree struct {
	roots    []node
	branches [][8]node
	triLists [][]uint16
}

// rawNode carries the byte offset a node refers to before it is resolved to
// an index.
type rawNode struct {
	kind   nodeKind
	offset uint32
}

type rawTriList struct {
	offset uint32
	tris   []uint16
}

// decodeOctree runs in two passes. The first walks the node words, learning
// where the branch block ends and the triangle lists begin; the second turns
// every byte offset into an index.
func decodeOctree(data []byte) (*octree, error) {
	r := encoding.NewReader(data)

	rootCount := uint32(len(data) / 4)
	var nodesSize uint32
	triListsOffset := uint32(len(data))

	parseNode := func(parentOffset uint32) (rawNode, error) {
		word := r.U32()
		if err := r.Err(); err != nil {
			return rawNode{}, fmt.Errorf("%w: %w", ErrInvalidOctree, err)
		}
		offset := word&^leafFlag + parentOffset
		if word&leafFlag != 0 {
			offset += 2
			triListsOffset = min(triListsOffset, offset)
			return rawNode{kind: nodeLeaf, offset: offset}, nil
		}
		if offset%4 != 0 {
			return rawNode{}, fmt.Errorf("%w: misaligned branch %#x", ErrInvalidOctree, offset)
		}
		nodesSize = max(nodesSize, offset+branchSize)
		return rawNode{kind: nodeBranch, offset: offset}, nil
	}

	var rawRoots []rawNode
	for i := uint32(0); i < rootCount; i++ {
		n, err := parseNode(0)
		if err != nil {
			return nil, err
		}
		rootCount = min(rootCount, n.offset/4)
		rawRoots = append(rawRoots, n)
	}

	branchesOffset := 4 * rootCount
	nodesSize = max(nodesSize, branchesOffset)
	var rawBranches [][8]rawNode
	for i := uint32(0); i < (nodesSize-branchesOffset)/branchSize; i++ {
		branchOffset := branchesOffset + branchSize*i
		var children [8]rawNode
		for j := range children {
			n, err := parseNode(branchOffset)
			if err != nil {
				return nil, err
			}
			children[j] = n
		}
		rawBranches = append(rawBranches, children)
	}

	if nodesSize != triListsOffset {
		return nil, fmt.Errorf("%w: nodes end at %#x, lists start at %#x", ErrInvalidOctree, nodesSize, triListsOffset)
	}

	var lists []rawTriList
	offset := triListsOffset
	for r.Len() > 0 {
		var tris []uint16
		for {
			idx := r.U16()
			if err := r.Err(); err != nil {
				return nil, fmt.Errorf("%w: unterminated triangle list: %w", ErrInvalidOctree, err)
			}
			if idx == 0 {
				break
			}
			tris = append(tris, idx-1)
		}
		lists = append(lists, rawTriList{offset: offset, tris: tris})
		offset += 2 * uint32(len(tris)+1)
	}
	// The terminator of the last list doubles as an empty list.
	lists = append(lists, rawTriList{offset: offset - 2})

	listIdx := make(map[uint32]uint32, len(lists))
	for i, l := range lists {
		if _, ok := listIdx[l.offset]; !ok {
			listIdx[l.offset] = uint32(i)
		}
	}

	resolve := func(raw rawNode) (node, error) {
		switch raw.kind {
		case nodeLeaf:
			idx, ok := listIdx[raw.offset]
			if !ok {
				return node{}, fmt.Errorf("%w: no triangle list at %#x", ErrInvalidOctree, raw.offset)
			}
			return node{kind: nodeLeaf, idx: idx}, nil
		default:
			if raw.offset < branchesOffset || (raw.offset-branchesOffset)%branchSize != 0 {
				return node{}, fmt.Errorf("%w: no branch at %#x", ErrInvalidOctree, raw.offset)
			}
			idx := (raw.offset - branchesOffset) / branchSize
			if int(idx) >= len(rawBranches) {
				return node{}, fmt.Errorf("%w: branch %d of %d", ErrInvalidOctree, idx, len(rawBranches))
			}
			return node{kind: nodeBranch, idx: idx}, nil
		}
	}

	o := &octree{
		roots:    make([]node, len(rawRoots)),
		branches: make([][8]node, len(rawBranches)),
		triLists: make([][]uint16, len(lists)),
	}
	for i, raw := range rawRoots {
		n, err := resolve(raw)
		if err != nil {
			return nil, err
		}
		o.roots[i] = n
	}
	for i, raws := range rawBranches {
		for j, raw := range raws {
			n, err := resolve(raw)
			if err != nil {
				return nil, err
			}
			if n.kind == nodeBranch && n.idx <= uint32(i) {
				return nil, fmt.Errorf("%w: branch %d points back to branch %d", ErrInvalidOctree, i, n.idx)
			}
			o.branches[i][j] = n
		}
	}
	for i, l := range lists {
		o.triLists[i] = l.tris
	}
	return o, nil
}

func (o *octree) validate(rootCount uint32, triCount int) error {
	if uint32(len(o.roots)) != rootCount {
		return fmt.Errorf("%w: %d root nodes, header expects %d", ErrInvalidOctree, len(o.roots), rootCount)
	}
	for _, list := range o.triLists {
		for _, idx := range list {
			if int(idx) >= triCount {
				return fmt.Errorf("%w: triangle %d of %d", ErrIndexOutOfRange, idx, triCount)
			}
		}
	}
	return nil
}

// find returns the triangle list of the leaf containing pos, or nil when pos
// lies outside the grid or the branches nest deeper than the cell size.
func (o *octree) find(h *Header, pos geom.Vec3) []uint16 {
	x := saturatingU32(pos.X - h.Origin.X)
	if x&h.XMask != 0 {
		return nil
	}
	y := saturatingU32(pos.Y - h.Origin.Y)
	if y&h.YMask != 0 {
		return nil
	}
	z := saturatingU32(pos.Z - h.Origin.Z)
	if z&h.ZMask != 0 {
		return nil
	}

	shift := h.Shift
	idx := (z>>shift)<<h.ZShift | (y>>shift)<<h.YShift | x>>shift
	n := o.roots[idx]
	for n.kind == nodeBranch {
		if shift == 0 {
			return nil
		}
		shift--
		child := (z>>shift&1)<<2 | (y>>shift&1)<<1 | x>>shift&1
		n = o.branches[n.idx][child]
	}
	return o.triLists[n.idx]
}

// saturatingU32 truncates towards zero, clamping to the uint32 range and
// mapping NaN to zero.
func saturatingU32(f float32) uint32 {
	switch {
	case f != f || f <= 0:
		return 0
	case f >= math.MaxUint32:
		return math.MaxUint32
	default:
		return uint32(f)
	}
}
