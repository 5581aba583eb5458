// Package graph defines the design graph of a CSG program: primitive,
// transform, boolean and group nodes with content-addressed IDs, plus
// structural and geometric validation.
package graph
