package builder

import (
	"fmt"

	"github.com/arc-language/core-builder/ir"
	"github.com/arc-language/core-builder/types"
)

// indexedType follows constant indices through nested structs and arrays
func indexedType(t types.Type, indices []uint32) (types.Type, error) {
	if len(indices) == 0 {
		return nil, fmt.Errorf("%w: aggregate access needs at least one index", ErrInvalidOperand)
	}
	cur := t
	for _, idx := range indices {
		switch at := cur.(type) {
		case *types.StructType:
			field, err := at.Field(int(idx))
			if err != nil {
				return nil, err
			}
			cur = field
		case *types.ArrayType:
			if uint64(idx) >= at.Length {
				return nil, fmt.Errorf("%w: index %d into %s", ir.ErrIndexOutOfRange, idx, at)
			}
			cur = at.ElementType
		default:
			return nil, fmt.Errorf("%w: cannot index into %s", ErrInvalidOperand, cur)
		}
	}
	return cur, nil
}

// CreateExtractValue reads the member of agg at the constant index path
func (b *Builder) CreateExtractValue(agg ir.Value, indices []uint32, name string) (*ir.Instruction, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	if err := live(agg); err != nil {
		return nil, err
	}
	member, err := indexedType(agg.Type(), indices)
	if err != nil {
		return nil, err
	}
	inst := ir.NewInstruction(ir.OpExtractValue, member, agg)
	inst.SetIndices(indices)
	return b.insert(inst, name)
}

// CreateInsertValue returns agg with the member at the index path replaced by v
func (b *Builder) CreateInsertValue(agg, v ir.Value, indices []uint32, name string) (*ir.Instruction, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	if err := live(agg, v); err != nil {
		return nil, err
	}
	member, err := indexedType(agg.Type(), indices)
	if err != nil {
		return nil, err
	}
	if !member.Equal(v.Type()) {
		return nil, fmt.Errorf("%w: inserting %s into a member of type %s", ErrInvalidOperand, v.Type(), member)
	}
	inst := ir.NewInstruction(ir.OpInsertValue, agg.Type(), agg, v)
	inst.SetIndices(indices)
	return b.insert(inst, name)
}

func vectorOperands(vec, idx ir.Value) (*types.VectorType, error) {
	vt, ok := vec.Type().(*types.VectorType)
	if !ok {
		return nil, fmt.Errorf("%w: expected a vector, got %s", ErrInvalidOperand, vec.Type())
	}
	if !types.IsInteger(idx.Type()) {
		return nil, fmt.Errorf("%w: lane index must be an integer, got %s", ErrInvalidOperand, idx.Type())
	}
	return vt, nil
}

// CreateExtractElement reads lane idx of vec
func (b *Builder) CreateExtractElement(vec, idx ir.Value, name string) (*ir.Instruction, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	if err := live(vec, idx); err != nil {
		return nil, err
	}
	vt, err := vectorOperands(vec, idx)
	if err != nil {
		return nil, err
	}
	return b.insert(ir.NewInstruction(ir.OpExtractElement, vt.ElementType, vec, idx), name)
}

// CreateInsertElement returns vec with lane idx replaced by elt
func (b *Builder) CreateInsertElement(vec, elt, idx ir.Value, name string) (*ir.Instruction, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	if err := live(vec, elt, idx); err != nil {
		return nil, err
	}
	vt, err := vectorOperands(vec, idx)
	if err != nil {
		return nil, err
	}
	if !vt.ElementType.Equal(elt.Type()) {
		return nil, fmt.Errorf("%w: inserting %s into %s", ErrInvalidOperand, elt.Type(), vt)
	}
	return b.insert(ir.NewInstruction(ir.OpInsertElement, vt, vec, elt, idx), name)
}
