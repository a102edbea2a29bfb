package asset

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"mini-engine/internal/geom"
)

// Magic prefixes every model file
const Magic = "LGMDL\x01"

// Version is the current model payload version
const Version uint32 = 1

var (
	ErrBadMagic           = errors.New("asset: not a model file")
	ErrUnsupportedVersion = errors.New("asset: unsupported model version")
	ErrTruncated          = errors.New("asset: truncated model data")
)

// maxCount bounds any single count read from a file
const maxCount = 1 << 28

// maxNameLen bounds a material name
const maxNameLen = 1 << 16

var order = binary.LittleEndian

// Marshal encodes m into the model file format
func Marshal(m *Model) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a model file. On error no model is returned.
func Unmarshal(data []byte) (*Model, error) {
	return Decode(bytes.NewReader(data))
}

// Encode writes m to w. The stored AABBs are written as-is.
func Encode(w io.Writer, m *Model) error {
	bw := bufio.NewWriter(w)
	e := encoder{w: bw}
	e.bytes([]byte(Magic))
	e.u32(Version)

	e.count(len(m.Meshes))
	for _, mesh := range m.Meshes {
		e.count(len(mesh.Vertices))
		for _, v := range mesh.Vertices {
			e.floats(v.AppendFloats(make([]float32, 0, VertexFloats)))
		}
		e.count(len(mesh.Indices))
		for _, idx := range mesh.Indices {
			e.u32(idx)
		}
		e.u32(mesh.MaterialIndex)
		e.aabb(mesh.AABB)
	}

	e.count(len(m.MaterialNames))
	for _, name := range m.MaterialNames {
		if len(name) > maxNameLen {
			e.err = fmt.Errorf("material name of %d bytes exceeds %d", len(name), maxNameLen)
			break
		}
		e.count(len(name))
		e.bytes([]byte(name))
	}
	if e.err != nil {
		return fmt.Errorf("encode model: %w", e.err)
	}
	return bw.Flush()
}

// Decode reads a model from r and recomputes the merged model AABB.
func Decode(r io.Reader) (*Model, error) {
	d := decoder{r: bufio.NewReader(r)}

	magic := d.bytes(len(Magic))
	if d.err != nil {
		return nil, d.err
	}
	if string(magic) != Magic {
		return nil, ErrBadMagic
	}
	if v := d.u32(); d.err == nil && v != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}

	meshCount := d.count()
	meshes := make([]*Mesh, 0, min(meshCount, 64))
	for i := 0; i < meshCount && d.err == nil; i++ {
		mesh := &Mesh{}
		vc := d.count()
		mesh.Vertices = make([]Vertex, 0, min(vc, 1<<16))
		buf := make([]float32, VertexFloats)
		for j := 0; j < vc && d.err == nil; j++ {
			d.floats(buf)
			mesh.Vertices = append(mesh.Vertices, vertexFromFloats(buf))
		}
		ic := d.count()
		mesh.Indices = make([]uint32, 0, min(ic, 1<<16))
		for j := 0; j < ic && d.err == nil; j++ {
			mesh.Indices = append(mesh.Indices, d.u32())
		}
		mesh.MaterialIndex = d.u32()
		mesh.AABB = d.aabb()
		meshes = append(meshes, mesh)
	}

	nameCount := d.count()
	names := make([]string, 0, min(nameCount, 64))
	for i := 0; i < nameCount && d.err == nil; i++ {
		names = append(names, d.name())
	}
	if d.err != nil {
		return nil, d.err
	}
	// mesh boxes are kept as stored; only the model box is derived
	return NewModel(meshes, names), nil
}

type encoder struct {
	w   io.Writer
	err error
	buf [4]byte
}

func (e *encoder) bytes(b []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(b)
}

func (e *encoder) u32(v uint32) {
	order.PutUint32(e.buf[:], v)
	e.bytes(e.buf[:])
}

func (e *encoder) count(n int) {
	if n > math.MaxUint32 {
		e.err = fmt.Errorf("length %d overflows uint32", n)
		return
	}
	e.u32(uint32(n))
}

func (e *encoder) floats(fs []float32) {
	for _, f := range fs {
		e.u32(math.Float32bits(f))
	}
}

func (e *encoder) aabb(b geom.AABB) {
	e.floats(b.Min[:])
	e.floats(b.Max[:])
}

type decoder struct {
	r   io.Reader
	err error
}

func (d *decoder) bytes(n int) []byte {
	if d.err != nil {
		return nil
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(d.r, b); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			err = ErrTruncated
		}
		d.err = err
		return nil
	}
	return b
}

// name reads a length-prefixed string, growing the buffer only as bytes arrive
func (d *decoder) name() string {
	n := d.u32()
	if d.err != nil {
		return ""
	}
	if n > maxNameLen {
		d.err = fmt.Errorf("%w: name length %d out of range", ErrTruncated, n)
		return ""
	}
	var sb strings.Builder
	copied, err := io.CopyN(&sb, d.r, int64(n))
	if copied < int64(n) {
		if err == nil || errors.Is(err, io.EOF) {
			err = ErrTruncated
		}
		d.err = err
		return ""
	}
	return sb.String()
}

func (d *decoder) u32() uint32 {
	b := d.bytes(4)
	if b == nil {
		return 0
	}
	return order.Uint32(b)
}

func (d *decoder) count() int {
	n := d.u32()
	if d.err == nil && n > maxCount {
		d.err = fmt.Errorf("%w: count %d out of range", ErrTruncated, n)
		return 0
	}
	return int(n)
}

func (d *decoder) floats(dst []float32) {
	for i := range dst {
		dst[i] = math.Float32frombits(d.u32())
	}
}

func (d *decoder) aabb() geom.AABB {
	var b geom.AABB
	d.floats(b.Min[:])
	d.floats(b.Max[:])
	return b
}
