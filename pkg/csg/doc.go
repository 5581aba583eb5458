// Package csg implements boolean operations (union, intersection,
// difference) on closed triangle-mesh solids.
//
// An operation runs in four stages over working copies of both operands:
// the intersector finds where faces of one solid cross faces of the other,
// the triangulator splits crossed faces along those crossings, the
// classifier marks every vertex and face as inside, outside or on the
// boundary of the other solid, and the operation driver keeps the faces the
// operator selects. Solids are arenas of vertices and faces addressed by
// index; Push and Pop bracket each operation so the inputs come back
// unchanged.
package csg
