package geom

// Mat33 is a row major rotation or scaling matrix.
type Mat33 [3][3]float32

func (m Mat33) MulVec(v Vec3) Vec3 {
	return Vec3{
		X: float32(m[0][0]*v.X) + float32(m[0][1]*v.Y) + float32(m[0][2]*v.Z),
		Y: float32(m[1][0]*v.X) + float32(m[1][1]*v.Y) + float32(m[1][2]*v.Z),
		Z: float32(m[2][0]*v.X) + float32(m[2][1]*v.Y) + float32(m[2][2]*v.Z),
	}
}

// Mat34 is a row major affine transform; the last column is the translation.
type Mat34 [3][4]float32

func Mat34FromAnglesAndPos(angles, pos Vec3) Mat34 {
	s, c := angles.Sin(), angles.Cos()
	return Mat34{
		{
			float32(c.Y * c.Z),
			float32(float32(s.X*s.Y)*c.Z) - float32(s.Z*c.X),
			float32(float32(c.X*c.Z)*s.Y) + float32(s.X*s.Z),
			pos.X,
		},
		{
			float32(s.Z * c.Y),
			float32(float32(s.X*s.Y)*s.Z) + float32(c.X*c.Z),
			float32(float32(s.Z*c.X)*s.Y) - float32(s.X*c.Z),
			pos.Y,
		},
		{
			-s.Y,
			float32(s.X * c.Y),
			float32(c.X * c.Y),
			pos.Z,
		},
	}
}

func Mat34FromQuatAndPos(q Quat, pos Vec3) Mat34 {
	return Mat34{
		{
			1 - float32(2*q.Y*q.Y) - float32(2*q.Z*q.Z),
			float32(2*q.X*q.Y) - float32(2*q.W*q.Z),
			float32(2*q.X*q.Z) + float32(2*q.W*q.Y),
			pos.X,
		},
		{
			float32(2*q.X*q.Y) + float32(2*q.W*q.Z),
			1 - float32(2*q.X*q.X) - float32(2*q.Z*q.Z),
			float32(2*q.Y*q.Z) - float32(2*q.W*q.X),
			pos.Y,
		},
		{
			float32(2*q.X*q.Z) - float32(2*q.W*q.Y),
			float32(2*q.Y*q.Z) + float32(2*q.W*q.X),
			1 - float32(2*q.X*q.X) - float32(2*q.Y*q.Y),
			pos.Z,
		},
	}
}

func Mat34FromAxisAngle(axis Vec3, angle float32) Mat34 {
	return Mat34FromQuatAndPos(QuatFromAxisAngle(axis, angle), Zero)
}

func Mat34FromDiag(d Vec3) Mat34 {
	return Mat34{
		{d.X, 0, 0, 0},
		{0, d.Y, 0, 0},
		{0, 0, d.Z, 0},
	}
}

// Transpose transposes the rotation part and drops the translation.
func (m Mat34) Transpose() Mat34 {
	return Mat34{
		{m[0][0], m[1][0], m[2][0], 0},
		{m[0][1], m[1][1], m[2][1], 0},
		{m[0][2], m[1][2], m[2][2], 0},
	}
}

// Mat33 drops the translation.
func (m Mat34) Mat33() Mat33 {
	return Mat33{
		{m[0][0], m[0][1], m[0][2]},
		{m[1][0], m[1][1], m[1][2]},
		{m[2][0], m[2][1], m[2][2]},
	}
}

// Col returns column i of the rotation part.
func (m Mat34) Col(i int) Vec3 {
	return Vec3{m[0][i], m[1][i], m[2][i]}
}

func (m Mat34) Pos() Vec3 {
	return Vec3{m[0][3], m[1][3], m[2][3]}
}

// Mul accumulates each entry in double precision, one row term at a time,
// rounding back to single precision after every step like the paired single
// multiply-add the game was compiled to.
func (m Mat34) Mul(o Mat34) Mat34 {
	var out Mat34
	for r := 0; r < 3; r++ {
		for c := 0; c < 4; c++ {
			var last float32
			if c == 3 {
				last = 1
			}
			acc := float32(m[r][0] * o[0][c])
			acc = float32(float64(m[r][1])*float64(o[1][c]) + float64(acc))
			acc = float32(float64(m[r][2])*float64(o[2][c]) + float64(acc))
			acc = float32(float64(m[r][3])*float64(last) + float64(acc))
			out[r][c] = acc
		}
	}
	return out
}

// MulVec transforms the point v.
func (m Mat34) MulVec(v Vec3) Vec3 {
	row := func(r [4]float32) float32 {
		tmp0 := float32(r[0] * v.X)
		tmp0 = float32(float64(r[2])*float64(v.Z) + float64(tmp0))
		tmp1 := float32(r[1]*v.Y) + r[3]
		return tmp0 + tmp1
	}
	return Vec3{row(m[0]), row(m[1]), row(m[2])}
}
