// Package ir defines the mid-end's in-memory representation: basic blocks,
// SSA values, operations, instructions, and the per-function CFG container.
//
// Instruction and block identity is structural object identity (Go pointer
// identity), not value equality: later passes key maps and sets on
// *Instruction and *BasicBlock directly, exactly as they would on an arena
// handle, without needing a separate handle type.
package ir

import "strconv"

// Value is an SSA operand: either a compile-time integer constant, or a
// versioned SSA variable (Name, Version). A variable may additionally carry
// a Base field naming the value that originated the array it addresses;
// Base is nil for scalars and for unresolved pre-SSA use references.
//
// Before the SSA builder runs, CFG-builder-produced Values referencing a
// variable by name carry Version == UnversionedVar; the SSA builder either
// overwrites Version in place (for a definition site) or replaces the
// operand's *Value pointer wholesale with the reaching definition (for a
// use site).
type Value struct {
	IsConst  bool
	ConstVal int64

	Name    string
	Version int

	// Base is the SSA variable that originated the array this value
	// addresses. Base == the value itself for a value that *is* a base
	// (ArrayInit result, array-typed GetArgument); the Append* constructors
	// set that when the CFG is built, and SSA construction propagates Base
	// to derived addresses and ϕ results.
	Base *Value

	Def Instruction // defining instruction; nil for constants
}

// UnversionedVar marks a Value produced by the CFG builder that has not yet
// been assigned an SSA version.
const UnversionedVar = -1

// Const builds a constant operand.
func Const(v int64) *Value {
	return &Value{IsConst: true, ConstVal: v}
}

// UnresolvedRef builds a placeholder pre-SSA reference to a variable by
// name; the SSA builder replaces every such reference with a concrete
// versioned Value during renaming.
func UnresolvedRef(name string) *Value {
	return &Value{Name: name, Version: UnversionedVar}
}

// IsBasePointer reports whether v denotes an address derived from an array.
func (v *Value) IsBasePointer() bool {
	return !v.IsConst && v.Base != nil
}

func (v *Value) String() string {
	if v == nil {
		return "<nil>"
	}
	if v.IsConst {
		return strconv.FormatInt(v.ConstVal, 10)
	}
	return v.Name + "_v" + strconv.Itoa(v.Version)
}
