package types

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

var (
	// ErrInvalidTypeConstruction is returned when a constructor is given an ill-formed shape
	ErrInvalidTypeConstruction = errors.New("invalid type construction")
	// ErrIndexOutOfRange is returned by bounds-checked queries
	ErrIndexOutOfRange = errors.New("index out of range")
)

// MaxIntBits is the widest integer type that can be constructed
const MaxIntBits = 1<<23 - 1

// Context owns one type universe. Primitive types are preallocated; named
// structs are registered here and are unique per context.
type Context struct {
	// ID identifies the building session this context belongs to
	ID string

	Void  *VoidType
	Label *LabelType

	I1   *IntType
	I8   *IntType
	I16  *IntType
	I32  *IntType
	I64  *IntType
	I128 *IntType

	F16  *FloatType
	F32  *FloatType
	F64  *FloatType
	F128 *FloatType

	named map[string]*StructType
}

// NewContext creates an empty type context
func NewContext() *Context {
	return &Context{
		ID:    uuid.Must(uuid.NewV7()).String(),
		Void:  &VoidType{},
		Label: &LabelType{},
		I1:    &IntType{BitWidth: 1},
		I8:    &IntType{BitWidth: 8},
		I16:   &IntType{BitWidth: 16},
		I32:   &IntType{BitWidth: 32},
		I64:   &IntType{BitWidth: 64},
		I128:  &IntType{BitWidth: 128},
		F16:   &FloatType{Precision: Half},
		F32:   &FloatType{Precision: Single},
		F64:   &FloatType{Precision: Double},
		F128:  &FloatType{Precision: Quad},
		named: make(map[string]*StructType),
	}
}

// Int returns the integer type of the given width
func (c *Context) Int(bits uint) (*IntType, error) {
	if bits == 0 || bits > MaxIntBits {
		return nil, fmt.Errorf("%w: integer width %d must be in [1, %d]", ErrInvalidTypeConstruction, bits, MaxIntBits)
	}
	switch bits {
	case 1:
		return c.I1, nil
	case 8:
		return c.I8, nil
	case 16:
		return c.I16, nil
	case 32:
		return c.I32, nil
	case 64:
		return c.I64, nil
	case 128:
		return c.I128, nil
	}
	return &IntType{BitWidth: bits}, nil
}

// Float returns the floating point type of the given precision
func (c *Context) Float(p FloatPrecision) (*FloatType, error) {
	switch p {
	case Half:
		return c.F16, nil
	case Single:
		return c.F32, nil
	case Double:
		return c.F64, nil
	case Quad:
		return c.F128, nil
	}
	return nil, fmt.Errorf("%w: unknown float precision %d", ErrInvalidTypeConstruction, int(p))
}

// Pointer returns a pointer to elem in the given address space
func (c *Context) Pointer(elem Type, addrSpace uint) (*PointerType, error) {
	if elem == nil {
		return nil, fmt.Errorf("%w: nil pointee", ErrInvalidTypeConstruction)
	}
	switch elem.Kind() {
	case VoidKind, LabelKind:
		return nil, fmt.Errorf("%w: pointer to %s", ErrInvalidTypeConstruction, elem)
	}
	return &PointerType{ElementType: elem, AddressSpace: addrSpace}, nil
}

// Array returns an array of n elements
func (c *Context) Array(elem Type, n uint64) (*ArrayType, error) {
	if err := checkFieldType(elem); err != nil {
		return nil, fmt.Errorf("%w: array element: %v", ErrInvalidTypeConstruction, err)
	}
	return &ArrayType{ElementType: elem, Length: n}, nil
}

// Vector returns a vector of n scalar lanes
func (c *Context) Vector(elem Type, n uint64) (*VectorType, error) {
	if elem == nil {
		return nil, fmt.Errorf("%w: nil vector element", ErrInvalidTypeConstruction)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: vector of zero elements", ErrInvalidTypeConstruction)
	}
	switch elem.Kind() {
	case IntegerKind, FloatKind, PointerKind:
	default:
		return nil, fmt.Errorf("%w: vector element must be integer, float or pointer, got %s", ErrInvalidTypeConstruction, elem)
	}
	return &VectorType{ElementType: elem, Length: n}, nil
}

// Struct returns a literal (unnamed) struct type
func (c *Context) Struct(fields []Type, packed bool) (*StructType, error) {
	for i, f := range fields {
		if err := checkFieldType(f); err != nil {
			return nil, fmt.Errorf("%w: field %d: %v", ErrInvalidTypeConstruction, i, err)
		}
	}
	return &StructType{Fields: append([]Type(nil), fields...), Packed: packed, hasBody: true}, nil
}

// NamedStruct creates an opaque named struct. Its body is assigned later
// with SetBody, which allows recursive types through pointers.
func (c *Context) NamedStruct(name string) (*StructType, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty struct name", ErrInvalidTypeConstruction)
	}
	if _, exists := c.named[name]; exists {
		return nil, fmt.Errorf("%w: struct %%%s already exists", ErrInvalidTypeConstruction, name)
	}
	st := &StructType{Name: name}
	c.named[name] = st
	return st, nil
}

// NewStruct creates a named struct with its body in one step
func (c *Context) NewStruct(name string, fields []Type, packed bool) (*StructType, error) {
	st, err := c.NamedStruct(name)
	if err != nil {
		return nil, err
	}
	if err := st.SetBody(fields, packed); err != nil {
		delete(c.named, name)
		return nil, err
	}
	return st, nil
}

// LookupStruct finds a named struct
func (c *Context) LookupStruct(name string) (*StructType, bool) {
	st, ok := c.named[name]
	return st, ok
}

// NamedStructs returns all named structs sorted by name
func (c *Context) NamedStructs() []*StructType {
	out := make([]*StructType, 0, len(c.named))
	for _, st := range c.named {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Function returns a function signature type
func (c *Context) Function(ret Type, params []Type, variadic bool) (*FunctionType, error) {
	if ret == nil {
		return nil, fmt.Errorf("%w: nil return type", ErrInvalidTypeConstruction)
	}
	switch ret.Kind() {
	case LabelKind, FunctionKind:
		return nil, fmt.Errorf("%w: function cannot return %s", ErrInvalidTypeConstruction, ret)
	}
	for i, p := range params {
		if p == nil {
			return nil, fmt.Errorf("%w: parameter %d is nil", ErrInvalidTypeConstruction, i)
		}
		switch p.Kind() {
		case VoidKind, LabelKind, FunctionKind:
			return nil, fmt.Errorf("%w: parameter %d has type %s", ErrInvalidTypeConstruction, i, p)
		}
	}
	return &FunctionType{ReturnType: ret, ParamTypes: append([]Type(nil), params...), Variadic: variadic}, nil
}

func checkFieldType(t Type) error {
	if t == nil {
		return errors.New("nil type")
	}
	switch t.Kind() {
	case VoidKind, LabelKind, FunctionKind:
		return fmt.Errorf("%s is not a valid element type", t)
	}
	return nil
}
