package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/ghostsim/pkg/wii"
)

func TestVec3Basics(t *testing.T) {
	a := NewVec3(1, 2, 3)
	b := NewVec3(4, 5, 6)

	assert.Equal(t, NewVec3(5, 7, 9), a.Add(b))
	assert.Equal(t, NewVec3(-3, -3, -3), a.Sub(b))
	assert.Equal(t, float32(32), a.Dot(b))
	assert.Equal(t, NewVec3(-3, 6, -3), a.Cross(b))
	assert.Equal(t, NewVec3(2, 4, 6), a.Scale(2))
	assert.Equal(t, NewVec3(1, 2, 3), a.Min(b))
	assert.Equal(t, NewVec3(4, 5, 6), a.Max(b))
	assert.Equal(t, Right, Up.Cross(Front))
}

func TestVec3NormalizeDegenerate(t *testing.T) {
	tiny := NewVec3(1e-5, 0, 0)
	assert.Equal(t, float32(0), tiny.Norm())
	assert.Equal(t, tiny, tiny.Normalize())
	assert.Equal(t, Zero, Zero.Normalize())
}

func TestVec3ProjRej(t *testing.T) {
	v := NewVec3(3, 4, 5)
	assert.Equal(t, NewVec3(0, 4, 0), v.ProjUnit(Up))
	assert.Equal(t, NewVec3(3, 0, 5), v.RejUnit(Up))
}

func TestVec3PerpInPlane(t *testing.T) {
	assert.Equal(t, Zero, Up.PerpInPlane(Up, true))
	assert.Equal(t, Zero, Down.PerpInPlane(Up, false))

	perp := NewVec3(0, 3, 4).PerpInPlane(Up, false)
	assert.Equal(t, NewVec3(0, 0, 4), perp)

	unit := NewVec3(0, 3, 4).PerpInPlane(Up, true)
	assert.InDelta(t, 1, unit.Z, 1e-6)
	assert.Equal(t, float32(0), unit.Y)
}

func TestQuatRotate(t *testing.T) {
	assert.Equal(t, Front, Identity.Rotate(Front))
	assert.Equal(t, Back, Flipped.Rotate(Front))
	assert.Equal(t, Front, Flipped.InvRotate(Back))
}

func TestQuatFromAxisAngleMatchesMatrix(t *testing.T) {
	axis := NewVec3(1, 2, -1).Normalize()
	angle := float32(0.7)

	q := QuatFromAxisAngle(axis, angle)
	m := Mat34FromAxisAngle(axis, angle).Mat33()

	for _, v := range []Vec3{Front, Up, Right, NewVec3(3, -2, 1)} {
		byQuat := q.Rotate(v)
		byMat := m.MulVec(v)
		assert.InDelta(t, byQuat.X, byMat.X, 1e-3)
		assert.InDelta(t, byQuat.Y, byMat.Y, 1e-3)
		assert.InDelta(t, byQuat.Z, byMat.Z, 1e-3)
	}
}

func TestQuatFromVecs(t *testing.T) {
	assert.Equal(t, Identity, QuatFromVecs(Up, Down))

	q := QuatFromVecs(Up, Front)
	got := q.Rotate(Up)
	assert.InDelta(t, 0, got.X, 1e-5)
	assert.InDelta(t, 0, got.Y, 1e-5)
	assert.InDelta(t, 1, got.Z, 1e-5)
}

func TestQuatNormalize(t *testing.T) {
	assert.Equal(t, Quat{}, Quat{}.Normalize())
	assert.Equal(t, Identity, Quat{}.NormalizeOrIdentity())

	q := NewQuat(1, 1, 1, 1).Normalize()
	assert.InDelta(t, 1, q.SqNorm(), 1e-5)
}

func TestQuatSlerpEndpoints(t *testing.T) {
	q := QuatFromAngles(NewVec3(0.1, 0.2, 0.3))

	same := q.SlerpTo(q, 0.5)
	assert.InDelta(t, q.X, same.X, 1e-5)
	assert.InDelta(t, q.W, same.W, 1e-5)

	start := Identity.SlerpTo(q, 0)
	assert.InDelta(t, 1, start.W, 1e-5)

	halfway := Identity.SlerpTo(q, 0.5).Normalize()
	assert.InDelta(t, 1, halfway.SqNorm(), 1e-5)
	assert.Less(t, halfway.W, float32(1))
	assert.Greater(t, halfway.W, q.W)
}

func TestMat34Identity(t *testing.T) {
	m := Mat34FromQuatAndPos(Identity, NewVec3(10, 20, 30))
	assert.Equal(t, NewVec3(11, 22, 33), m.MulVec(NewVec3(1, 2, 3)))
	assert.Equal(t, NewVec3(10, 20, 30), m.Pos())
	assert.Equal(t, m, m.Mul(Mat34FromDiag(NewVec3(1, 1, 1))))
}

func TestMat34Transpose(t *testing.T) {
	m := Mat34FromAnglesAndPos(NewVec3(0.3, -0.2, 1.1), NewVec3(1, 2, 3))
	tr := m.Transpose()

	assert.Equal(t, m[0][1], tr[1][0])
	assert.Equal(t, m[2][0], tr[0][2])
	assert.Equal(t, float32(0), tr[0][3])

	prod := m.Mul(tr)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			want := float32(0)
			if r == c {
				want = 1
			}
			assert.InDelta(t, want, prod[r][c], 1e-3)
		}
	}
}

func TestMat34DiagScales(t *testing.T) {
	m := Mat34FromDiag(NewVec3(2, 3, 4)).Mat33()
	assert.Equal(t, NewVec3(2, 3, 4), m.MulVec(NewVec3(1, 1, 1)))
	assert.Equal(t, Right, Mat34FromDiag(NewVec3(1, 1, 1)).Col(0))
}

func TestQuatFromAnglesYaw(t *testing.T) {
	q := QuatFromAngles(NewVec3(0, wii.ToRadians(180), 0))
	got := q.Rotate(Front)
	require.InDelta(t, -1, got.Z, 1e-4)
	assert.InDelta(t, 0, got.X, 1e-4)
}

func TestFlushDenormals(t *testing.T) {
	v := NewVec3(1e-40, 1, -1e-42)
	flushed := v.FlushDenormals()
	assert.Equal(t, float32(0), flushed.X)
	assert.Equal(t, float32(1), flushed.Y)
	assert.Equal(t, [3]uint32{0, 0x3f800000, 0x80000000}, flushed.Bits())
}
