// Package clip implements a typed, growable element buffer with cheap
// head-shift semantics.
//
// It is the Go expression of the original program's CLIP type
// (original_source/src/clip.c, clip.h): a single backing slice tagged
// with an element type, grown by doubling, mutated only through
// append/push/pop/clear/set-at/swap/shift. Clip never shares ownership
// of its backing storage across instances; a Shift hands the caller a
// brand new Clip that exclusively owns the elements it took.
package clip

import "github.com/stlalpha/tripipe/internal/fuse"

// Type tags the element kind a Clip holds. Mirrors CLIP_TYPE in clip.h.
type Type int

const (
	// None is the zero value; a Clip in this state accepts no operations.
	None Type = iota
	Byte
	Char
	Long
	VoidPtr
	UCS4
)

// element is the uniform storage cell regardless of Type; Clip only
// ever looks at the field matching its own tag. Go has no portable
// notion of "alignment of the backing block" the way the C source does,
// so a tagged union of fixed-width fields stands in for it.
type element struct {
	b byte
	c int8
	l int64
	p any
	u rune
}

// Clip is a typed, growable sequence. The zero value is not usable;
// construct one with New.
type Clip struct {
	typ  Type
	data []element
}

// New creates an empty Clip of the given type.
func New(t Type) *Clip {
	return &Clip{typ: t}
}

// Type reports the element type this Clip was created with.
func (c *Clip) Type() Type { return c.typ }

// Size reports the current element count.
func (c *Clip) Size() int { return len(c.data) }

// Capacity reports the current backing capacity.
func (c *Clip) Capacity() int { return cap(c.data) }

// IsEmpty reports whether Size() == 0.
func (c *Clip) IsEmpty() bool { return len(c.data) == 0 }

// Clear resets the size to zero without releasing capacity.
func (c *Clip) Clear() { c.data = c.data[:0] }

// Reserve grows the backing capacity to at least n elements, by next
// power of two, if it isn't already that large. Growing never shrinks
// an existing larger capacity.
func (c *Clip) Reserve(n int) bool {
	if cap(c.data) >= n {
		return true
	}
	newCap := nextPowerOfTwo(n)
	grown := make([]element, len(c.data), newCap)
	copy(grown, c.data)
	c.data = grown
	return true
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func (c *Clip) checkType(t Type) bool {
	if c.typ != t {
		fuse.Trip("clip: type mismatch: have %v want %v", c.typ, t)
		return false
	}
	return true
}

// ---- byte ----

func (c *Clip) PushByte(v byte) bool { return c.AppendByteArray([]byte{v}) }

func (c *Clip) AppendByteArray(data []byte) bool {
	if !c.checkType(Byte) {
		return false
	}
	c.Reserve(len(c.data) + len(data))
	for _, v := range data {
		c.data = append(c.data, element{b: v})
	}
	return true
}

func (c *Clip) SetByteArray(data []byte) bool {
	if !c.checkType(Byte) {
		return false
	}
	c.Reserve(len(data))
	c.data = c.data[:0]
	for _, v := range data {
		c.data = append(c.data, element{b: v})
	}
	return true
}

func (c *Clip) GetByteArray() []byte {
	if !c.checkType(Byte) {
		return nil
	}
	out := make([]byte, len(c.data))
	for i, e := range c.data {
		out[i] = e.b
	}
	return out
}

func (c *Clip) ByteAt(i int) byte {
	if !c.checkType(Byte) || i < 0 || i >= len(c.data) {
		fuse.Trip("clip: byte index out of range: %d", i)
		return 0
	}
	return c.data[i].b
}

// ---- char ----

func (c *Clip) AppendCharArray(data []int8) bool {
	if !c.checkType(Char) {
		return false
	}
	c.Reserve(len(c.data) + len(data))
	for _, v := range data {
		c.data = append(c.data, element{c: v})
	}
	return true
}

// ---- long ----

func (c *Clip) PushLong(v int64) bool { return c.AppendLongArray([]int64{v}) }

func (c *Clip) AppendLongArray(data []int64) bool {
	if !c.checkType(Long) {
		return false
	}
	c.Reserve(len(c.data) + len(data))
	for _, v := range data {
		c.data = append(c.data, element{l: v})
	}
	return true
}

func (c *Clip) LongAt(i int) int64 {
	if !c.checkType(Long) || i < 0 || i >= len(c.data) {
		fuse.Trip("clip: long index out of range: %d", i)
		return 0
	}
	return c.data[i].l
}

// ---- voidptr ----

func (c *Clip) PushVoidPtr(v any) bool { return c.AppendVoidPtrArray([]any{v}) }

func (c *Clip) AppendVoidPtrArray(data []any) bool {
	if !c.checkType(VoidPtr) {
		return false
	}
	c.Reserve(len(c.data) + len(data))
	for _, v := range data {
		c.data = append(c.data, element{p: v})
	}
	return true
}

// ---- ucs4 ----

func (c *Clip) PushUCS4(v rune) bool { return c.AppendUCS4Array([]rune{v}) }

func (c *Clip) AppendUCS4Array(data []rune) bool {
	if !c.checkType(UCS4) {
		return false
	}
	c.Reserve(len(c.data) + len(data))
	for _, v := range data {
		c.data = append(c.data, element{u: v})
	}
	return true
}

// Pop removes and discards the last element. No-op on an empty Clip.
func (c *Clip) Pop() {
	if len(c.data) == 0 {
		return
	}
	c.data = c.data[:len(c.data)-1]
}

// AppendClip appends src's elements to c. Both must share a Type. The
// caller (per spec.md §4.1) is responsible for clearing src afterward;
// AppendClip does not touch src.
func (c *Clip) AppendClip(src *Clip) bool {
	if c.typ != src.typ {
		fuse.Trip("clip: AppendClip type mismatch: have %v want %v", src.typ, c.typ)
		return false
	}
	if src.IsEmpty() {
		return true
	}
	c.Reserve(len(c.data) + len(src.data))
	c.data = append(c.data, src.data...)
	return true
}

// Swap exchanges the full contents (type, size, capacity, backing
// storage) of a and b.
func Swap(a, b *Clip) {
	a.typ, b.typ = b.typ, a.typ
	a.data, b.data = b.data, a.data
}

// Shift returns a new Clip that exclusively owns the first n elements
// of c. If n >= c.Size(), the returned Clip takes everything and c
// becomes empty. If n == 0, an empty Clip of the same type is returned
// and c is left untouched.
func (c *Clip) Shift(n int) *Clip {
	out := New(c.typ)
	if n <= 0 {
		return out
	}

	Swap(c, out)

	if n >= len(out.data) {
		return out
	}

	remainder := append([]element(nil), out.data[n:]...)
	out.data = out.data[:n:n]

	c.data = nil
	c.Reserve(len(remainder))
	c.data = append(c.data[:0], remainder...)

	return out
}
