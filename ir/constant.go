package ir

import (
	"fmt"
	"math"
	"math/big"

	"github.com/arc-language/core-builder/types"
)

// ConstantKind tags the variants of Constant
type ConstantKind int

const (
	ConstInt ConstantKind = iota
	ConstFloat
	ConstNull
	ConstUndef
	ConstPoison
	ConstAggregate
	ConstBlockAddress
)

// Constant is an immutable compile-time value
type Constant struct {
	kind  ConstantKind
	typ   types.Type
	bits  *big.Int
	fval  float64
	elems []*Constant

	fn    *Function
	block *BasicBlock
}

func (c *Constant) Type() types.Type { return c.typ }
func (c *Constant) Kind() ValueKind  { return ConstantValue }
func (c *Constant) Name() string     { return "" }
func (c *Constant) isValue()         {}

// IsLive is always true except for block addresses whose function was deleted
func (c *Constant) IsLive() bool {
	if c.kind == ConstBlockAddress {
		return c.fn.IsLive() && c.block.IsLive()
	}
	for _, e := range c.elems {
		if !e.IsLive() {
			return false
		}
	}
	return true
}

// ConstantKind returns the constant's tag
func (c *Constant) ConstantKind() ConstantKind { return c.kind }

// IsNull reports whether the constant is the null value of its type
func (c *Constant) IsNull() bool { return c.kind == ConstNull }

// IsUndef reports whether the constant is undef
func (c *Constant) IsUndef() bool { return c.kind == ConstUndef }

// IsPoison reports whether the constant is poison
func (c *Constant) IsPoison() bool { return c.kind == ConstPoison }

// Bits returns a copy of the stored bit pattern of an integer constant.
// Null integers report zero.
func (c *Constant) Bits() (*big.Int, bool) {
	switch {
	case c.kind == ConstInt:
		return new(big.Int).Set(c.bits), true
	case c.kind == ConstNull && types.IsInteger(c.typ):
		return new(big.Int), true
	}
	return nil, false
}

// ZExtValue returns the low 64 bits of an integer constant, zero extended
func (c *Constant) ZExtValue() uint64 {
	b, ok := c.Bits()
	if !ok {
		return 0
	}
	lo := new(big.Int).And(b, new(big.Int).SetUint64(math.MaxUint64))
	return lo.Uint64()
}

// SExtValue interprets the bit pattern as a signed integer of the constant's width
func (c *Constant) SExtValue() int64 {
	b, ok := c.Bits()
	if !ok {
		return 0
	}
	return signedOf(b, c.typ.(*types.IntType).BitWidth).Int64()
}

// IsAllOnes reports whether every bit of an integer (or integer vector) is set
func (c *Constant) IsAllOnes() bool {
	switch c.kind {
	case ConstInt:
		return c.bits.Cmp(widthMask(c.typ.(*types.IntType).BitWidth)) == 0
	case ConstAggregate:
		if _, ok := c.typ.(*types.VectorType); !ok {
			return false
		}
		for _, e := range c.elems {
			if !e.IsAllOnes() {
				return false
			}
		}
		return true
	}
	return false
}

// FloatValue returns the value of a floating point constant
func (c *Constant) FloatValue() (float64, bool) {
	switch {
	case c.kind == ConstFloat:
		return c.fval, true
	case c.kind == ConstNull && types.IsFloat(c.typ):
		return 0, true
	}
	return 0, false
}

// NumElements returns the member count of an aggregate or vector typed constant
func (c *Constant) NumElements() int {
	switch t := c.typ.(type) {
	case *types.StructType:
		return len(t.Fields)
	case *types.ArrayType:
		return int(t.Length)
	case *types.VectorType:
		return int(t.Length)
	}
	return 0
}

// Element returns member i. Null, undef and poison aggregates produce
// members of the same kind.
func (c *Constant) Element(i int) (*Constant, error) {
	n := c.NumElements()
	if i < 0 || i >= n {
		return nil, fmt.Errorf("%w: element %d of %s constant (has %d)", ErrIndexOutOfRange, i, c.typ, n)
	}
	if c.kind == ConstAggregate {
		return c.elems[i], nil
	}
	mt := memberType(c.typ, i)
	switch c.kind {
	case ConstNull, ConstUndef, ConstPoison:
		return &Constant{kind: c.kind, typ: mt}, nil
	}
	return nil, fmt.Errorf("%w: %s constant has no elements", ErrInvalidOperand, c.typ)
}

// BlockAddress returns the function and block of a blockaddress constant
func (c *Constant) BlockAddress() (*Function, *BasicBlock, bool) {
	if c.kind != ConstBlockAddress {
		return nil, nil, false
	}
	return c.fn, c.block, true
}

func memberType(t types.Type, i int) types.Type {
	switch tt := t.(type) {
	case *types.StructType:
		return tt.Fields[i]
	case *types.ArrayType:
		return tt.ElementType
	case *types.VectorType:
		return tt.ElementType
	}
	return nil
}

func widthMask(w uint) *big.Int {
	m := new(big.Int).Lsh(big.NewInt(1), w)
	return m.Sub(m, big.NewInt(1))
}

func truncate(x *big.Int, w uint) *big.Int {
	return new(big.Int).And(x, widthMask(w))
}

func signedOf(bits *big.Int, w uint) *big.Int {
	if bits.Bit(int(w)-1) == 0 {
		return new(big.Int).Set(bits)
	}
	full := new(big.Int).Lsh(big.NewInt(1), w)
	return full.Sub(bits, full)
}

// ConstInt returns an integer constant. The stored bit pattern is v modulo
// 2^width; for widths above 64 v is sign-extended when signed is set and
// zero-extended otherwise.
func (c *Context) ConstInt(t *types.IntType, v uint64, signed bool) *Constant {
	x := new(big.Int).SetUint64(v)
	if signed && int64(v) < 0 {
		x = big.NewInt(int64(v))
	}
	return &Constant{kind: ConstInt, typ: t, bits: truncate(x, t.BitWidth)}
}

// ConstIntSigned is ConstInt for signed Go integers
func (c *Context) ConstIntSigned(t *types.IntType, v int64) *Constant {
	return c.ConstInt(t, uint64(v), true)
}

// ConstIntBig returns an integer constant from an arbitrary precision value,
// truncated two's complement style to the type's width.
func (c *Context) ConstIntBig(t *types.IntType, v *big.Int) *Constant {
	return &Constant{kind: ConstInt, typ: t, bits: truncate(v, t.BitWidth)}
}

// ConstBool returns an i1 constant
func (c *Context) ConstBool(b bool) *Constant {
	if b {
		return c.ConstInt(c.I1, 1, false)
	}
	return c.ConstInt(c.I1, 0, false)
}

// ConstFloat returns a floating point constant rounded to the type's precision.
// half and fp128 values are held at double precision.
func (c *Context) ConstFloat(t *types.FloatType, v float64) *Constant {
	if t.Precision == types.Single {
		v = float64(float32(v))
	}
	return &Constant{kind: ConstFloat, typ: t, fval: v}
}

// AllOnes returns the constant with every bit set, for integer and integer vector types
func (c *Context) AllOnes(t types.Type) (*Constant, error) {
	switch tt := t.(type) {
	case *types.IntType:
		return &Constant{kind: ConstInt, typ: tt, bits: widthMask(tt.BitWidth)}, nil
	case *types.VectorType:
		lane, err := c.AllOnes(tt.ElementType)
		if err != nil {
			return nil, err
		}
		elems := make([]*Constant, tt.Length)
		for i := range elems {
			elems[i] = lane
		}
		return &Constant{kind: ConstAggregate, typ: tt, elems: elems}, nil
	}
	return nil, fmt.Errorf("%w: all-ones value of %s", ErrInvalidOperand, t)
}

// Null returns the null (zero) value of t
func (c *Context) Null(t types.Type) *Constant {
	return &Constant{kind: ConstNull, typ: t}
}

// NullPointer returns the null pointer of pointer type t
func (c *Context) NullPointer(t *types.PointerType) *Constant {
	return &Constant{kind: ConstNull, typ: t}
}

// Undef returns the undefined value of t
func (c *Context) Undef(t types.Type) *Constant {
	return &Constant{kind: ConstUndef, typ: t}
}

// Poison returns the poison value of t
func (c *Context) Poison(t types.Type) *Constant {
	return &Constant{kind: ConstPoison, typ: t}
}

// ConstStruct returns a struct constant with the given members
func (c *Context) ConstStruct(t *types.StructType, elems []*Constant) (*Constant, error) {
	if t.IsOpaque() {
		return nil, fmt.Errorf("%w: constant of opaque struct %s", ErrInvalidOperand, t)
	}
	if len(elems) != len(t.Fields) {
		return nil, fmt.Errorf("%w: %s has %d fields, got %d values", ErrInvalidOperand, t, len(t.Fields), len(elems))
	}
	for i, e := range elems {
		if e == nil || !e.typ.Equal(t.Fields[i]) {
			return nil, fmt.Errorf("%w: field %d of %s expects %s", ErrInvalidOperand, i, t, t.Fields[i])
		}
	}
	return &Constant{kind: ConstAggregate, typ: t, elems: append([]*Constant(nil), elems...)}, nil
}

// ConstArray returns an array constant
func (c *Context) ConstArray(t *types.ArrayType, elems []*Constant) (*Constant, error) {
	if uint64(len(elems)) != t.Length {
		return nil, fmt.Errorf("%w: %s needs %d elements, got %d", ErrInvalidOperand, t, t.Length, len(elems))
	}
	if err := checkElems(t.ElementType, elems); err != nil {
		return nil, err
	}
	return &Constant{kind: ConstAggregate, typ: t, elems: append([]*Constant(nil), elems...)}, nil
}

// ConstVector returns a vector constant
func (c *Context) ConstVector(t *types.VectorType, elems []*Constant) (*Constant, error) {
	if uint64(len(elems)) != t.Length {
		return nil, fmt.Errorf("%w: %s needs %d lanes, got %d", ErrInvalidOperand, t, t.Length, len(elems))
	}
	if err := checkElems(t.ElementType, elems); err != nil {
		return nil, err
	}
	return &Constant{kind: ConstAggregate, typ: t, elems: append([]*Constant(nil), elems...)}, nil
}

// ConstString returns an [N x i8] array holding s, optionally NUL terminated
func (c *Context) ConstString(s string, nulTerminate bool) *Constant {
	data := []byte(s)
	if nulTerminate {
		data = append(data, 0)
	}
	elems := make([]*Constant, len(data))
	for i, b := range data {
		elems[i] = c.ConstInt(c.I8, uint64(b), false)
	}
	return &Constant{
		kind:  ConstAggregate,
		typ:   &types.ArrayType{ElementType: c.I8, Length: uint64(len(data))},
		elems: elems,
	}
}

// BlockAddress returns the address of bb inside fn, typed as i8*
func (c *Context) BlockAddress(fn *Function, bb *BasicBlock) (*Constant, error) {
	if err := CheckLive(fn); err != nil {
		return nil, err
	}
	if err := CheckLive(bb); err != nil {
		return nil, err
	}
	if bb.parent != fn {
		return nil, fmt.Errorf("%w: block %q does not belong to @%s", ErrInvalidOperand, bb.name, fn.name)
	}
	return &Constant{
		kind:  ConstBlockAddress,
		typ:   &types.PointerType{ElementType: c.I8},
		fn:    fn,
		block: bb,
	}, nil
}

func checkElems(want types.Type, elems []*Constant) error {
	for i, e := range elems {
		if e == nil || !e.typ.Equal(want) {
			return fmt.Errorf("%w: element %d must be %s", ErrInvalidOperand, i, want)
		}
	}
	return nil
}
