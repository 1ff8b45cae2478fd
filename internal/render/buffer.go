package render

import (
	"github.com/go-gl/gl/v4.1-core/gl"
)

// floatsPerVertex is the vertex layout: x, y, z, r, g, b, a.
const floatsPerVertex = 7

const vertexStride = floatsPerVertex * 4

// Buffer is a VAO/VBO pair holding vertices of a single primitive type. It
// grows by doubling and is otherwise updated in place.
type Buffer struct {
	vao, vbo uint32
	mode     uint32 // GL primitive, e.g. gl.TRIANGLES
	capacity int    // in vertices
	count    int    // in vertices
}

// NewBuffer creates an empty buffer drawing mode primitives.
func NewBuffer(mode uint32) *Buffer {
	b := &Buffer{mode: mode}

	gl.GenVertexArrays(1, &b.vao)
	gl.GenBuffers(1, &b.vbo)

	gl.BindVertexArray(b.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)

	// - Attribute 0: position (vec3)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, vertexStride, gl.PtrOffset(0))
	// - Attribute 1: color (vec4)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 4, gl.FLOAT, false, vertexStride, gl.PtrOffset(3*4))

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return b
}

// Upload replaces the buffer contents with vertices.
func (b *Buffer) Upload(vertices []float32) {
	count := len(vertices) / floatsPerVertex
	b.count = count
	if count == 0 {
		return
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	if count > b.capacity {
		capacity := b.capacity
		if capacity == 0 {
			capacity = 64
		}
		for capacity < count {
			capacity *= 2
		}
		gl.BufferData(gl.ARRAY_BUFFER, capacity*vertexStride, nil, gl.DYNAMIC_DRAW)
		b.capacity = capacity
	}
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, count*vertexStride, gl.Ptr(vertices))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// Len returns the number of vertices uploaded.
func (b *Buffer) Len() int { return b.count }

// Draw draws the uploaded vertices.
func (b *Buffer) Draw() {
	if b.count == 0 {
		return
	}
	gl.BindVertexArray(b.vao)
	gl.DrawArrays(b.mode, 0, int32(b.count))
	gl.BindVertexArray(0)
}

// Cleanup releases the OpenGL resources.
func (b *Buffer) Cleanup() {
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
		b.vao = 0
	}
	if b.vbo != 0 {
		gl.DeleteBuffers(1, &b.vbo)
		b.vbo = 0
	}
}
