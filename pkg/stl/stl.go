// Package stl reads and writes STL meshes as csg solids. Files go through
// the sdfx STL loader and writer; streams are decoded here with the sdfx
// record layout. Both encodings are accepted on input; output is binary
// unless ASCII is requested.
package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chazu/tricsg/pkg/csg"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
)

// headerSize is the name block at the start of a binary file.
const headerSize = 80

var (
	prefixSize = binary.Size(render.STLHeader{})
	recordSize = binary.Size(render.STLTriangle{})
)

// ReadResult is a decoded STL file.
type ReadResult struct {
	Solid *csg.Solid

	// Binary reports which encoding was detected.
	Binary bool

	// Skipped counts input triangles dropped as degenerate.
	Skipped int
}

// Read decodes an STL stream into a solid using the default tolerance.
func Read(r io.Reader) (*csg.Solid, error) {
	res, err := Decode(r, 0)
	if err != nil {
		return nil, err
	}
	return res.Solid, nil
}

// ReadFile loads the STL file at path. Binary files are loaded with
// render.LoadSTL and the solid is named after the file, since the loader
// drops the header. eps <= 0 selects csg.Epsilon.
func ReadFile(path string, eps float64) (*ReadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "stl: open")
	}
	defer f.Close()

	bin, err := binaryFile(f)
	if err != nil {
		return nil, errors.Wrapf(err, "stl: %s", path)
	}
	if !bin {
		// The sdfx ASCII loader assumes whole facets; Decode reports the
		// line of a broken one.
		res, err := Decode(f, eps)
		if err != nil {
			return nil, errors.Wrapf(err, "stl: %s", path)
		}
		return res, nil
	}

	mesh, err := render.LoadSTL(path)
	if err != nil {
		return nil, errors.Wrapf(err, "stl: load %s", path)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	res := &ReadResult{Solid: csg.NewSolidEps(name, eps), Binary: true}
	for i, t := range mesh {
		if err := res.add(t[0], t[1], t[2]); err != nil {
			return nil, errors.Wrapf(err, "stl: %s: triangle %d", path, i)
		}
	}
	return res, nil
}

// binaryFile applies the sdfx size rule to f and rewinds it.
func binaryFile(f *os.File) (bool, error) {
	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	var hdr render.STLHeader
	short := binary.Read(f, binary.LittleEndian, &hdr) != nil
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return false, err
	}
	return !short && info.Size() == int64(prefixSize)+int64(hdr.Count)*int64(recordSize), nil
}

// Decode reads a whole STL stream. The stream is binary when its length is
// exactly 84 + 50n bytes for the triangle count n in its header; otherwise
// it must be ASCII starting with "solid".
func Decode(r io.Reader, eps float64) (*ReadResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "stl: read")
	}

	if n, ok := binaryCount(data); ok {
		return decodeBinary(data, n, eps)
	}
	if bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid")) {
		return decodeASCII(data, eps)
	}
	return nil, errors.New("stl: unrecognised format")
}

func binaryCount(data []byte) (uint32, bool) {
	var hdr render.STLHeader
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &hdr); err != nil {
		return 0, false
	}
	return hdr.Count, uint64(len(data)) == uint64(prefixSize)+uint64(recordSize)*uint64(hdr.Count)
}

// add appends one triangle, counting degenerate ones instead of failing.
func (res *ReadResult) add(a, b, c v3.Vec) error {
	_, err := res.Solid.AddFace(a, b, c)
	if errors.Cause(err) == csg.ErrDegenerateFace {
		res.Skipped++
		return nil
	}
	return err
}

func decodeBinary(data []byte, count uint32, eps float64) (*ReadResult, error) {
	name := strings.TrimSpace(string(bytes.TrimRight(data[:headerSize], "\x00")))
	name = strings.TrimPrefix(name, "solid ")
	res := &ReadResult{Solid: csg.NewSolidEps(name, eps), Binary: true}

	br := bytes.NewReader(data[prefixSize:])
	for i := uint32(0); i < count; i++ {
		var d render.STLTriangle
		if err := binary.Read(br, binary.LittleEndian, &d); err != nil {
			return nil, errors.Wrapf(err, "stl: triangle %d", i)
		}
		if err := res.add(toVec(d.Vertex1), toVec(d.Vertex2), toVec(d.Vertex3)); err != nil {
			return nil, errors.Wrapf(err, "stl: triangle %d", i)
		}
	}
	return res, nil
}

func decodeASCII(data []byte, eps float64) (*ReadResult, error) {
	res := &ReadResult{Binary: false}
	scanner := bufio.NewScanner(bytes.NewReader(data))

	var vertices []v3.Vec
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "solid":
			if res.Solid == nil {
				res.Solid = csg.NewSolidEps(strings.Join(fields[1:], " "), eps)
			}

		case "facet":
			vertices = vertices[:0]

		case "vertex":
			if len(fields) != 4 {
				return nil, errors.Errorf("stl: line %d: vertex needs 3 coordinates", line)
			}
			var p [3]float64
			for i := range p {
				f, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return nil, errors.Wrapf(err, "stl: line %d", line)
				}
				p[i] = f
			}
			vertices = append(vertices, v3.Vec{X: p[0], Y: p[1], Z: p[2]})

		case "endfacet":
			if len(vertices) != 3 {
				return nil, errors.Errorf("stl: line %d: facet has %d vertices, want 3", line, len(vertices))
			}
			if res.Solid == nil {
				return nil, errors.Errorf("stl: line %d: facet outside solid", line)
			}
			if err := res.add(vertices[0], vertices[1], vertices[2]); err != nil {
				return nil, errors.Wrapf(err, "stl: line %d", line)
			}
			vertices = vertices[:0]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "stl: scan")
	}
	if res.Solid == nil {
		return nil, errors.New("stl: missing solid header")
	}
	return res, nil
}

func toVec(p [3]float32) v3.Vec {
	return v3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
}

func toFloat32(p v3.Vec) [3]float32 {
	return [3]float32{float32(p.X), float32(p.Y), float32(p.Z)}
}

// Triangles returns the faces of s as sdfx triangles.
func Triangles(s *csg.Solid) []*sdf.Triangle3 {
	tris := s.Triangles()
	out := make([]*sdf.Triangle3, len(tris))
	for i := range tris {
		t := sdf.Triangle3(tris[i])
		out[i] = &t
	}
	return out
}

// Write encodes s as binary STL. The solid name fills the header block,
// which render.STLHeader leaves blank.
func Write(w io.Writer, s *csg.Solid) error {
	bw := bufio.NewWriter(w)

	var header [headerSize]byte
	copy(header[:], s.Name)
	if _, err := bw.Write(header[:]); err != nil {
		return errors.Wrap(err, "stl: write header")
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(s.FaceCount())); err != nil {
		return errors.Wrap(err, "stl: write count")
	}

	for _, id := range s.Faces() {
		p := s.Points(id)
		d := render.STLTriangle{
			Normal:  toFloat32(s.Normal(id)),
			Vertex1: toFloat32(p[0]),
			Vertex2: toFloat32(p[1]),
			Vertex3: toFloat32(p[2]),
		}
		if err := binary.Write(bw, binary.LittleEndian, &d); err != nil {
			return errors.Wrap(err, "stl: write facet")
		}
	}
	return errors.Wrap(bw.Flush(), "stl: flush")
}

// WriteASCII encodes s as ASCII STL.
func WriteASCII(w io.Writer, s *csg.Solid) error {
	bw := bufio.NewWriter(w)
	name := strings.ReplaceAll(s.Name, "\n", " ")

	fmt.Fprintf(bw, "solid %s\n", name)
	for _, id := range s.Faces() {
		n := s.Normal(id)
		fmt.Fprintf(bw, "  facet normal %g %g %g\n", n.X, n.Y, n.Z)
		fmt.Fprintln(bw, "    outer loop")
		for _, p := range s.Points(id) {
			fmt.Fprintf(bw, "      vertex %g %g %g\n", p.X, p.Y, p.Z)
		}
		fmt.Fprintln(bw, "    endloop")
		fmt.Fprintln(bw, "  endfacet")
	}
	fmt.Fprintf(bw, "endsolid %s\n", name)
	return errors.Wrap(bw.Flush(), "stl: flush")
}

// WriteFile writes s to path: binary through render.SaveSTL, or ASCII when
// ascii is set.
func WriteFile(path string, s *csg.Solid, ascii bool) error {
	if !ascii {
		return errors.Wrapf(render.SaveSTL(path, Triangles(s)), "stl: save %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "stl: create")
	}
	err = WriteASCII(f, s)
	if cerr := f.Close(); err == nil {
		err = errors.Wrap(cerr, "stl: close")
	}
	return err
}
