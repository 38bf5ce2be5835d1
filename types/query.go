package types

// IsInteger reports whether t is an integer type
func IsInteger(t Type) bool { return t != nil && t.Kind() == IntegerKind }

// IsFloat reports whether t is a floating point type
func IsFloat(t Type) bool { return t != nil && t.Kind() == FloatKind }

// IsPointer reports whether t is a pointer type
func IsPointer(t Type) bool { return t != nil && t.Kind() == PointerKind }

// IsAggregate reports whether t is a struct or array
func IsAggregate(t Type) bool {
	return t != nil && (t.Kind() == StructKind || t.Kind() == ArrayKind)
}

// IsFirstClass reports whether values of t can be produced by instructions
func IsFirstClass(t Type) bool {
	return t != nil && t.Kind() != VoidKind && t.Kind() != FunctionKind && t.Kind() != LabelKind
}

// ScalarType returns the lane type of a vector, or t itself
func ScalarType(t Type) Type {
	if v, ok := t.(*VectorType); ok {
		return v.ElementType
	}
	return t
}

// IsIntOrIntVector reports whether t is an integer or a vector of integers
func IsIntOrIntVector(t Type) bool { return IsInteger(ScalarType(t)) }

// IsFPOrFPVector reports whether t is a float or a vector of floats
func IsFPOrFPVector(t Type) bool { return IsFloat(ScalarType(t)) }

// IsPtrOrPtrVector reports whether t is a pointer or a vector of pointers
func IsPtrOrPtrVector(t Type) bool { return IsPointer(ScalarType(t)) }

// ScalarBitWidth returns the width of an integer or float scalar (or vector lane).
// Pointers and aggregates report 0.
func ScalarBitWidth(t Type) uint {
	switch s := ScalarType(t).(type) {
	case *IntType:
		return s.BitWidth
	case *FloatType:
		return s.BitWidth()
	}
	return 0
}

// PrimitiveSizeInBits returns the bit size of scalar and vector types, or 0
// when the size depends on a target (pointers) or the type is an aggregate.
func PrimitiveSizeInBits(t Type) uint64 {
	switch tt := t.(type) {
	case *IntType:
		return uint64(tt.BitWidth)
	case *FloatType:
		return uint64(tt.BitWidth())
	case *VectorType:
		return tt.Length * PrimitiveSizeInBits(tt.ElementType)
	}
	return 0
}

// VectorLen returns the lane count of a vector type, or 0 for scalars
func VectorLen(t Type) uint64 {
	if v, ok := t.(*VectorType); ok {
		return v.Length
	}
	return 0
}

// ElementType returns the element of a pointer, array or vector type
func ElementType(t Type) (Type, bool) {
	switch tt := t.(type) {
	case *PointerType:
		return tt.ElementType, true
	case *ArrayType:
		return tt.ElementType, true
	case *VectorType:
		return tt.ElementType, true
	}
	return nil, false
}
