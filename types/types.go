// Package types provides the IR type system: first-class and aggregate
// types and the structural relationships between them.
package types

import (
	"fmt"
	"strings"
)

// Kind identifies the variant of a Type
type Kind int

const (
	VoidKind Kind = iota
	LabelKind
	IntegerKind
	FloatKind
	PointerKind
	ArrayKind
	VectorKind
	StructKind
	FunctionKind
)

var kindNames = [...]string{
	VoidKind:     "void",
	LabelKind:    "label",
	IntegerKind:  "integer",
	FloatKind:    "float",
	PointerKind:  "pointer",
	ArrayKind:    "array",
	VectorKind:   "vector",
	StructKind:   "struct",
	FunctionKind: "function",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Type is an immutable type descriptor
type Type interface {
	Kind() Kind
	String() string
	// Equal reports structural equality; named structs compare by identity.
	Equal(other Type) bool
	isType()
}

// VoidType is the type of instructions that produce no value
type VoidType struct{}

func (*VoidType) Kind() Kind            { return VoidKind }
func (*VoidType) String() string        { return "void" }
func (*VoidType) Equal(other Type) bool { return other != nil && other.Kind() == VoidKind }
func (*VoidType) isType()               {}

// LabelType is the type of basic blocks used as branch operands
type LabelType struct{}

func (*LabelType) Kind() Kind            { return LabelKind }
func (*LabelType) String() string        { return "label" }
func (*LabelType) Equal(other Type) bool { return other != nil && other.Kind() == LabelKind }
func (*LabelType) isType()               {}

// IntType is an arbitrary-width integer type
type IntType struct {
	BitWidth uint
}

func (*IntType) Kind() Kind       { return IntegerKind }
func (t *IntType) String() string { return fmt.Sprintf("i%d", t.BitWidth) }
func (*IntType) isType()          {}

func (t *IntType) Equal(other Type) bool {
	o, ok := other.(*IntType)
	return ok && o.BitWidth == t.BitWidth
}

// Mask returns the number of distinct values representable minus one, for
// widths up to 64 bits.
func (t *IntType) Mask() uint64 {
	if t.BitWidth >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << t.BitWidth) - 1
}

// FloatPrecision selects an IEEE floating point format
type FloatPrecision int

const (
	Half FloatPrecision = iota
	Single
	Double
	Quad
)

// FloatType is a floating point type
type FloatType struct {
	Precision FloatPrecision
}

func (*FloatType) Kind() Kind { return FloatKind }
func (*FloatType) isType()    {}

func (t *FloatType) String() string {
	switch t.Precision {
	case Half:
		return "half"
	case Single:
		return "float"
	case Double:
		return "double"
	case Quad:
		return "fp128"
	}
	return fmt.Sprintf("float(%d)", int(t.Precision))
}

func (t *FloatType) Equal(other Type) bool {
	o, ok := other.(*FloatType)
	return ok && o.Precision == t.Precision
}

// BitWidth returns the storage width of the format
func (t *FloatType) BitWidth() uint {
	switch t.Precision {
	case Half:
		return 16
	case Single:
		return 32
	case Double:
		return 64
	default:
		return 128
	}
}

// PointerType is a typed pointer into an address space
type PointerType struct {
	ElementType  Type
	AddressSpace uint
}

func (*PointerType) Kind() Kind { return PointerKind }
func (*PointerType) isType()    {}

func (t *PointerType) String() string {
	if t.AddressSpace != 0 {
		return fmt.Sprintf("%s addrspace(%d)*", t.ElementType, t.AddressSpace)
	}
	return t.ElementType.String() + "*"
}

func (t *PointerType) Equal(other Type) bool {
	o, ok := other.(*PointerType)
	return ok && o.AddressSpace == t.AddressSpace && t.ElementType.Equal(o.ElementType)
}

// ArrayType is a fixed-length sequence of elements
type ArrayType struct {
	ElementType Type
	Length      uint64
}

func (*ArrayType) Kind() Kind       { return ArrayKind }
func (*ArrayType) isType()          {}
func (t *ArrayType) String() string { return fmt.Sprintf("[%d x %s]", t.Length, t.ElementType) }

func (t *ArrayType) Equal(other Type) bool {
	o, ok := other.(*ArrayType)
	return ok && o.Length == t.Length && t.ElementType.Equal(o.ElementType)
}

// Len returns the number of elements
func (t *ArrayType) Len() uint64 { return t.Length }

// VectorType is a fixed-length SIMD vector of scalars
type VectorType struct {
	ElementType Type
	Length      uint64
}

func (*VectorType) Kind() Kind       { return VectorKind }
func (*VectorType) isType()          {}
func (t *VectorType) String() string { return fmt.Sprintf("<%d x %s>", t.Length, t.ElementType) }

func (t *VectorType) Equal(other Type) bool {
	o, ok := other.(*VectorType)
	return ok && o.Length == t.Length && t.ElementType.Equal(o.ElementType)
}

// Len returns the number of lanes
func (t *VectorType) Len() uint64 { return t.Length }

// StructType is an ordered list of fields. Named structs are nominal and
// may start out opaque until their body is set.
type StructType struct {
	Name   string
	Fields []Type
	Packed bool

	hasBody bool
}

func (*StructType) Kind() Kind { return StructKind }
func (*StructType) isType()    {}

func (t *StructType) String() string {
	if t.Name != "" {
		return "%" + t.Name
	}
	return t.BodyString()
}

// BodyString renders the field list regardless of the struct's name
func (t *StructType) BodyString() string {
	if t.Name != "" && !t.hasBody {
		return "opaque"
	}
	if len(t.Fields) == 0 {
		if t.Packed {
			return "<{}>"
		}
		return "{}"
	}
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = f.String()
	}
	body := "{ " + strings.Join(parts, ", ") + " }"
	if t.Packed {
		return "<" + body + ">"
	}
	return body
}

func (t *StructType) Equal(other Type) bool {
	o, ok := other.(*StructType)
	if !ok {
		return false
	}
	if t.Name != "" || o.Name != "" {
		return t == o
	}
	if t.Packed != o.Packed || len(t.Fields) != len(o.Fields) {
		return false
	}
	for i := range t.Fields {
		if !t.Fields[i].Equal(o.Fields[i]) {
			return false
		}
	}
	return true
}

// IsOpaque reports whether a named struct still lacks a body
func (t *StructType) IsOpaque() bool { return t.Name != "" && !t.hasBody }

// NumFields returns the field count
func (t *StructType) NumFields() int { return len(t.Fields) }

// Field returns the type of field i
func (t *StructType) Field(i int) (Type, error) {
	if i < 0 || i >= len(t.Fields) {
		return nil, fmt.Errorf("%w: field %d of %s (has %d)", ErrIndexOutOfRange, i, t, len(t.Fields))
	}
	return t.Fields[i], nil
}

// SetBody assigns the fields of a named struct. It may only be called once.
func (t *StructType) SetBody(fields []Type, packed bool) error {
	if t.Name == "" {
		return fmt.Errorf("%w: cannot set the body of a literal struct", ErrInvalidTypeConstruction)
	}
	if t.hasBody {
		return fmt.Errorf("%w: body of %%%s is already set", ErrInvalidTypeConstruction, t.Name)
	}
	for i, f := range fields {
		if err := checkFieldType(f); err != nil {
			return fmt.Errorf("%w: field %d of %%%s: %v", ErrInvalidTypeConstruction, i, t.Name, err)
		}
	}
	t.Fields = append([]Type(nil), fields...)
	t.Packed = packed
	t.hasBody = true
	return nil
}

// FunctionType is a function signature
type FunctionType struct {
	ReturnType Type
	ParamTypes []Type
	Variadic   bool
}

func (*FunctionType) Kind() Kind { return FunctionKind }
func (*FunctionType) isType()    {}

func (t *FunctionType) String() string {
	parts := make([]string, 0, len(t.ParamTypes)+1)
	for _, p := range t.ParamTypes {
		parts = append(parts, p.String())
	}
	if t.Variadic {
		parts = append(parts, "...")
	}
	return fmt.Sprintf("%s (%s)", t.ReturnType, strings.Join(parts, ", "))
}

func (t *FunctionType) Equal(other Type) bool {
	o, ok := other.(*FunctionType)
	if !ok || o.Variadic != t.Variadic || len(o.ParamTypes) != len(t.ParamTypes) {
		return false
	}
	if !t.ReturnType.Equal(o.ReturnType) {
		return false
	}
	for i := range t.ParamTypes {
		if !t.ParamTypes[i].Equal(o.ParamTypes[i]) {
			return false
		}
	}
	return true
}

// ParamCount returns the number of fixed parameters
func (t *FunctionType) ParamCount() int { return len(t.ParamTypes) }

// Param returns the type of parameter i
func (t *FunctionType) Param(i int) (Type, error) {
	if i < 0 || i >= len(t.ParamTypes) {
		return nil, fmt.Errorf("%w: parameter %d of %s (has %d)", ErrIndexOutOfRange, i, t, len(t.ParamTypes))
	}
	return t.ParamTypes[i], nil
}

// IsVariadic reports whether extra arguments are accepted
func (t *FunctionType) IsVariadic() bool { return t.Variadic }
