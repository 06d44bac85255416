// Package kcl decodes track collision meshes and answers sphere queries
// against them.
package kcl

import (
	"fmt"

	"github.com/zeusync/ghostsim/pkg/encoding"
	"github.com/zeusync/ghostsim/pkg/geom"
)

const vec3Size = 12

// Hitbox is a query sphere. Triangles whose kind bit is not in Mask are
// ignored. LastPos, when set, is the sphere centre on the previous frame.
type Hitbox struct {
	Pos     geom.Vec3
	Radius  float32
	Mask    uint32
	LastPos *geom.Vec3
}

// Mesh is immutable once decoded and safe for concurrent queries.
type Mesh struct {
	header Header
	tris   []Tri
	octree *octree
}

// Decode parses a complete KCL file.
func Decode(data []byte) (*Mesh, error) {
	r := encoding.NewReader(data)
	header, err := decodeHeader(r)
	if err != nil {
		return nil, err
	}

	poss, err := decodeVecSection(r, header.PossOffset, header.NorsOffset)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}
	nors, err := decodeVecSection(r, header.NorsOffset, header.TrisOffset)
	if err != nil {
		return nil, fmt.Errorf("normals: %w", err)
	}

	section, err := sectionReader(r, header.TrisOffset, header.OctreeOffset, rawTriSize)
	if err != nil {
		return nil, fmt.Errorf("triangles: %w", err)
	}
	tris := make([]Tri, 0, section.Len()/rawTriSize)
	for section.Len() > 0 {
		tri, err := decodeRawTri(section).resolve(poss, nors)
		if err != nil {
			return nil, fmt.Errorf("triangle %d: %w", len(tris), err)
		}
		tris = append(tris, tri)
	}

	octree, err := decodeOctree(r.Bytes(r.Len()))
	if err != nil {
		return nil, err
	}
	if err := octree.validate(header.RootNodeCount, len(tris)); err != nil {
		return nil, err
	}

	return &Mesh{header: header, tris: tris, octree: octree}, nil
}

// sectionReader splits the next [offset, next) bytes off r. The section must
// hold a whole number of elements.
func sectionReader(r *encoding.Reader, offset, next uint32, elemSize int) (*encoding.Reader, error) {
	if next < offset {
		return nil, fmt.Errorf("%w: ends at %#x before starting at %#x", ErrInvalidSection, next, offset)
	}
	size := int(next - offset)
	if size%elemSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrInvalidSection, size, elemSize)
	}
	b := r.Bytes(size)
	if r.Err() != nil {
		return nil, fmt.Errorf("%w: want %d bytes", ErrTruncated, size)
	}
	return encoding.NewReader(b), nil
}

func decodeVecSection(r *encoding.Reader, offset, next uint32) ([]geom.Vec3, error) {
	section, err := sectionReader(r, offset, next, vec3Size)
	if err != nil {
		return nil, err
	}
	vecs := make([]geom.Vec3, 0, section.Len()/vec3Size)
	for section.Len() > 0 {
		vecs = append(vecs, readVec3(section))
	}
	return vecs, nil
}

// Query tests h against the triangles of the octree leaf containing its
// centre.
func (m *Mesh) Query(h Hitbox) Collision {
	var c Collision
	for _, idx := range m.octree.find(&m.header, h.Pos) {
		tri := &m.tris[idx]
		if hit, ok := tri.check(m.header.Thickness, h); ok {
			c.add(hit)
		}
	}
	return c
}

func (m *Mesh) Header() Header {
	return m.header
}

func (m *Mesh) TriCount() int {
	return len(m.tris)
}
