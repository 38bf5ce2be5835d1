package ir

import "fmt"

// Opcode identifies the operation an Instruction performs
type Opcode int

const (
	// Terminators
	OpRet Opcode = iota
	OpBr
	OpSwitch
	OpIndirectBr
	OpUnreachable

	// Binary operators
	OpAdd
	OpFAdd
	OpSub
	OpFSub
	OpMul
	OpFMul
	OpUDiv
	OpSDiv
	OpFDiv
	OpURem
	OpSRem
	OpFRem
	OpShl
	OpLShr
	OpAShr
	OpAnd
	OpOr
	OpXor

	// Unary operators
	OpFNeg

	// Memory
	OpAlloca
	OpLoad
	OpStore
	OpGetElementPtr
	OpInBoundsGetElementPtr

	// Casts
	OpTrunc
	OpZExt
	OpSExt
	OpFPTrunc
	OpFPExt
	OpFPToUI
	OpFPToSI
	OpUIToFP
	OpSIToFP
	OpPtrToInt
	OpIntToPtr
	OpBitCast

	// Other
	OpICmp
	OpFCmp
	OpPhi
	OpSelect
	OpCall
	OpExtractValue
	OpInsertValue
	OpExtractElement
	OpInsertElement
)

var opcodeNames = map[Opcode]string{
	OpRet:                   "ret",
	OpBr:                    "br",
	OpSwitch:                "switch",
	OpIndirectBr:            "indirectbr",
	OpUnreachable:           "unreachable",
	OpAdd:                   "add",
	OpFAdd:                  "fadd",
	OpSub:                   "sub",
	OpFSub:                  "fsub",
	OpMul:                   "mul",
	OpFMul:                  "fmul",
	OpUDiv:                  "udiv",
	OpSDiv:                  "sdiv",
	OpFDiv:                  "fdiv",
	OpURem:                  "urem",
	OpSRem:                  "srem",
	OpFRem:                  "frem",
	OpShl:                   "shl",
	OpLShr:                  "lshr",
	OpAShr:                  "ashr",
	OpAnd:                   "and",
	OpOr:                    "or",
	OpXor:                   "xor",
	OpFNeg:                  "fneg",
	OpAlloca:                "alloca",
	OpLoad:                  "load",
	OpStore:                 "store",
	OpGetElementPtr:         "getelementptr",
	OpInBoundsGetElementPtr: "getelementptr inbounds",
	OpTrunc:                 "trunc",
	OpZExt:                  "zext",
	OpSExt:                  "sext",
	OpFPTrunc:               "fptrunc",
	OpFPExt:                 "fpext",
	OpFPToUI:                "fptoui",
	OpFPToSI:                "fptosi",
	OpUIToFP:                "uitofp",
	OpSIToFP:                "sitofp",
	OpPtrToInt:              "ptrtoint",
	OpIntToPtr:              "inttoptr",
	OpBitCast:               "bitcast",
	OpICmp:                  "icmp",
	OpFCmp:                  "fcmp",
	OpPhi:                   "phi",
	OpSelect:                "select",
	OpCall:                  "call",
	OpExtractValue:          "extractvalue",
	OpInsertValue:           "insertvalue",
	OpExtractElement:        "extractelement",
	OpInsertElement:         "insertelement",
}

func (op Opcode) String() string {
	if s, ok := opcodeNames[op]; ok {
		return s
	}
	return fmt.Sprintf("op(%d)", int(op))
}

// IsTerminator reports whether the opcode ends a basic block
func (op Opcode) IsTerminator() bool { return op >= OpRet && op <= OpUnreachable }

// IsBinaryOp reports whether the opcode is a two-operand arithmetic or logic operation
func (op Opcode) IsBinaryOp() bool { return op >= OpAdd && op <= OpXor }

// IsCast reports whether the opcode converts a value to another type
func (op Opcode) IsCast() bool { return op >= OpTrunc && op <= OpBitCast }

// IsGEP reports whether the opcode is either form of getelementptr
func (op Opcode) IsGEP() bool { return op == OpGetElementPtr || op == OpInBoundsGetElementPtr }

// HasWrapFlags reports whether the opcode accepts nsw/nuw
func (op Opcode) HasWrapFlags() bool {
	switch op {
	case OpAdd, OpSub, OpMul, OpShl:
		return true
	}
	return false
}

// HasExactFlag reports whether the opcode accepts the exact flag
func (op Opcode) HasExactFlag() bool {
	switch op {
	case OpUDiv, OpSDiv, OpURem, OpSRem, OpLShr, OpAShr:
		return true
	}
	return false
}

// WrapSemantics is the declared integer overflow policy of an arithmetic instruction
type WrapSemantics int

const (
	// WrapUnspecified wraps silently modulo 2^n
	WrapUnspecified WrapSemantics = iota
	// NoSignedWrap yields poison on signed overflow
	NoSignedWrap
	// NoUnsignedWrap yields poison on unsigned overflow
	NoUnsignedWrap
)

func (w WrapSemantics) String() string {
	switch w {
	case NoSignedWrap:
		return "nsw"
	case NoUnsignedWrap:
		return "nuw"
	}
	return ""
}

// Predicate is a comparison condition for icmp and fcmp
type Predicate int

// Floating point predicates
const (
	FCmpFalse Predicate = iota
	FCmpOEQ
	FCmpOGT
	FCmpOGE
	FCmpOLT
	FCmpOLE
	FCmpONE
	FCmpORD
	FCmpUNO
	FCmpUEQ
	FCmpUGT
	FCmpUGE
	FCmpULT
	FCmpULE
	FCmpUNE
	FCmpTrue
)

// Integer predicates
const (
	ICmpEQ Predicate = iota + 32
	ICmpNE
	ICmpUGT
	ICmpUGE
	ICmpULT
	ICmpULE
	ICmpSGT
	ICmpSGE
	ICmpSLT
	ICmpSLE
)

var predicateNames = map[Predicate]string{
	FCmpFalse: "false", FCmpOEQ: "oeq", FCmpOGT: "ogt", FCmpOGE: "oge",
	FCmpOLT: "olt", FCmpOLE: "ole", FCmpONE: "one", FCmpORD: "ord",
	FCmpUNO: "uno", FCmpUEQ: "ueq", FCmpUGT: "ugt", FCmpUGE: "uge",
	FCmpULT: "ult", FCmpULE: "ule", FCmpUNE: "une", FCmpTrue: "true",
	ICmpEQ: "eq", ICmpNE: "ne", ICmpUGT: "ugt", ICmpUGE: "uge",
	ICmpULT: "ult", ICmpULE: "ule", ICmpSGT: "sgt", ICmpSGE: "sge",
	ICmpSLT: "slt", ICmpSLE: "sle",
}

func (p Predicate) String() string {
	if s, ok := predicateNames[p]; ok {
		return s
	}
	return fmt.Sprintf("pred(%d)", int(p))
}

// IsIntPredicate reports whether p is valid for icmp
func (p Predicate) IsIntPredicate() bool { return p >= ICmpEQ && p <= ICmpSLE }

// IsFloatPredicate reports whether p is valid for fcmp
func (p Predicate) IsFloatPredicate() bool { return p >= FCmpFalse && p <= FCmpTrue }

// IsSigned reports whether an integer predicate compares as signed
func (p Predicate) IsSigned() bool { return p >= ICmpSGT && p <= ICmpSLE }
