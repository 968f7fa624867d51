package event

import (
	"encoding/binary"
	"math"
)

// Context is the 16 byte payload carried by every event. The typed
// accessors view the same bytes as arrays of smaller values, little endian.
type Context struct {
	Data [16]byte
}

func (c Context) U64(i int) uint64 { return binary.LittleEndian.Uint64(c.Data[i*8:]) }
func (c Context) I64(i int) int64  { return int64(c.U64(i)) }
func (c Context) F64(i int) float64 {
	return math.Float64frombits(c.U64(i))
}
func (c Context) U32(i int) uint32 { return binary.LittleEndian.Uint32(c.Data[i*4:]) }
func (c Context) I32(i int) int32  { return int32(c.U32(i)) }
func (c Context) F32(i int) float32 {
	return math.Float32frombits(c.U32(i))
}
func (c Context) U16(i int) uint16 { return binary.LittleEndian.Uint16(c.Data[i*2:]) }
func (c Context) I16(i int) int16  { return int16(c.U16(i)) }
func (c Context) U8(i int) uint8   { return c.Data[i] }
func (c Context) I8(i int) int8    { return int8(c.Data[i]) }

func (c *Context) SetU64(i int, v uint64)  { binary.LittleEndian.PutUint64(c.Data[i*8:], v) }
func (c *Context) SetI64(i int, v int64)   { c.SetU64(i, uint64(v)) }
func (c *Context) SetF64(i int, v float64) { c.SetU64(i, math.Float64bits(v)) }
func (c *Context) SetU32(i int, v uint32)  { binary.LittleEndian.PutUint32(c.Data[i*4:], v) }
func (c *Context) SetI32(i int, v int32)   { c.SetU32(i, uint32(v)) }
func (c *Context) SetF32(i int, v float32) { c.SetU32(i, math.Float32bits(v)) }
func (c *Context) SetU16(i int, v uint16)  { binary.LittleEndian.PutUint16(c.Data[i*2:], v) }
func (c *Context) SetI16(i int, v int16)   { c.SetU16(i, uint16(v)) }
func (c *Context) SetU8(i int, v uint8)    { c.Data[i] = v }
func (c *Context) SetI8(i int, v int8)     { c.Data[i] = uint8(v) }

// ResizeContext packs a framebuffer size for Resized.
func ResizeContext(width, height uint16) Context {
	var c Context
	c.SetU16(0, width)
	c.SetU16(1, height)
	return c
}

// KeyContext packs a key or button code.
func KeyContext(code uint16) Context {
	var c Context
	c.SetU16(0, code)
	return c
}

// MouseContext packs a cursor position.
func MouseContext(x, y int16) Context {
	var c Context
	c.SetI16(0, x)
	c.SetI16(1, y)
	return c
}

// WheelContext packs a scroll delta.
func WheelContext(z int8) Context {
	var c Context
	c.SetI8(0, z)
	return c
}
