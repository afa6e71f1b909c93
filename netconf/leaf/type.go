package leaf

import (
	"fmt"
	"math"
)

// Base identifies the built-in YANG type that governs how a leaf value is parsed and formatted.
type Base int

const (
	String Base = iota
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Boolean
	Enumeration
	IdentityRef
	Empty
)

var baseNames = map[Base]string{
	String:      "string",
	Int8:        "int8",
	Int16:       "int16",
	Int32:       "int32",
	Int64:       "int64",
	Uint8:       "uint8",
	Uint16:      "uint16",
	Uint32:      "uint32",
	Uint64:      "uint64",
	Boolean:     "boolean",
	Enumeration: "enumeration",
	IdentityRef: "identityref",
	Empty:       "empty",
}

func (b Base) String() string {
	if name, ok := baseNames[b]; ok {
		return name
	}
	return fmt.Sprintf("unrecognised base type %d", int(b))
}

// Family groups base types that compare with each other.
// Values of different families are never equal.
type Family int

const (
	TextFamily Family = iota
	NumericFamily
	BooleanFamily
	EnumFamily
	IdentityFamily
	EmptyFamily
)

var familyNames = map[Family]string{
	TextFamily:     "text",
	NumericFamily:  "numeric",
	BooleanFamily:  "boolean",
	EnumFamily:     "enum",
	IdentityFamily: "identity",
	EmptyFamily:    "empty",
}

func (f Family) String() string {
	return familyNames[f]
}

// Type is the type tag attached to every leaf value.
type Type struct {
	Base Base
	// Enums lists the names permitted by an enumeration; empty permits any well-formed name.
	Enums []string
}

// Predefined types for the built-in bases.
var (
	StringType      = Type{Base: String}
	Int8Type        = Type{Base: Int8}
	Int16Type       = Type{Base: Int16}
	Int32Type       = Type{Base: Int32}
	Int64Type       = Type{Base: Int64}
	Uint8Type       = Type{Base: Uint8}
	Uint16Type      = Type{Base: Uint16}
	Uint32Type      = Type{Base: Uint32}
	Uint64Type      = Type{Base: Uint64}
	BooleanType     = Type{Base: Boolean}
	IdentityRefType = Type{Base: IdentityRef}
	EmptyType       = Type{Base: Empty}
)

// EnumerationType delivers an enumeration type restricted to names.
func EnumerationType(names ...string) Type {
	return Type{Base: Enumeration, Enums: names}
}

func (t Type) String() string {
	return t.Base.String()
}

// Family delivers the comparison family of the type.
func (t Type) Family() Family {
	switch t.Base { //nolint: exhaustive
	case Int8, Int16, Int32, Int64, Uint8, Uint16, Uint32, Uint64:
		return NumericFamily
	case Boolean:
		return BooleanFamily
	case Enumeration:
		return EnumFamily
	case IdentityRef:
		return IdentityFamily
	case Empty:
		return EmptyFamily
	}
	return TextFamily
}

func (t Type) signed() bool {
	switch t.Base { //nolint: exhaustive
	case Int8, Int16, Int32, Int64:
		return true
	}
	return false
}

// Delivers the bit size used when parsing integer-based types.
func (t Type) bitSize() int {
	switch t.Base { //nolint: exhaustive
	case Int8, Uint8:
		return 8
	case Int16, Uint16:
		return 16
	case Int32, Uint32:
		return 32
	}
	return 64
}

// Delivers the inclusive range of a signed integer type.
func (t Type) signedRange() (int64, int64) {
	switch t.Base { //nolint: exhaustive
	case Int8:
		return math.MinInt8, math.MaxInt8
	case Int16:
		return math.MinInt16, math.MaxInt16
	case Int32:
		return math.MinInt32, math.MaxInt32
	}
	return math.MinInt64, math.MaxInt64
}

// Delivers the upper bound of an unsigned integer type.
func (t Type) unsignedMax() uint64 {
	switch t.Base { //nolint: exhaustive
	case Uint8:
		return math.MaxUint8
	case Uint16:
		return math.MaxUint16
	case Uint32:
		return math.MaxUint32
	}
	return math.MaxUint64
}

func (t Type) permits(name string) bool {
	if len(t.Enums) == 0 {
		return true
	}
	for _, e := range t.Enums {
		if e == name {
			return true
		}
	}
	return false
}
