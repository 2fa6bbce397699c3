// pkg/math/geom.go
// Copyright(c) 2022-2026 cdti contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

///////////////////////////////////////////////////////////////////////////
// 2D vectors

func Add2f(a [2]float32, b [2]float32) [2]float32 {
	return [2]float32{a[0] + b[0], a[1] + b[1]}
}

func Sub2f(a [2]float32, b [2]float32) [2]float32 {
	return [2]float32{a[0] - b[0], a[1] - b[1]}
}

func Scale2f(v [2]float32, s float32) [2]float32 {
	return [2]float32{v[0] * s, v[1] * s}
}

func Dot2f(a [2]float32, b [2]float32) float32 {
	return a[0]*b[0] + a[1]*b[1]
}

func Length2f(v [2]float32) float32 {
	return Sqrt(v[0]*v[0] + v[1]*v[1])
}

// Normalize2f returns the given vector scaled to unit length; the zero
// vector is returned unchanged.
func Normalize2f(v [2]float32) [2]float32 {
	l := Length2f(v)
	if l == 0 {
		return v
	}
	return Scale2f(v, 1/l)
}

// HeadingVector returns the unit direction vector (east, north) for an
// aircraft flying the given heading, in degrees clockwise from north.
func HeadingVector(hdg float32) [2]float32 {
	h := Radians(hdg)
	return [2]float32{Sin(h), Cos(h)}
}
