package leaf

import (
	"cmp"
	"regexp"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

// Definitions and methods used to parse, format and compare the typed scalar values held by leaf nodes.

var (
	// ErrInvalidValue reports text or a native value that does not satisfy the grammar of a leaf type.
	ErrInvalidValue = errors.New("invalid value")

	// ErrNoValue reports an attempt to read the canonical form of a value that was never set.
	ErrNoValue = errors.New("no value")
)

// NoValueMarker is the text delivered by String for a value that was never set.
const NoValueMarker = "<no value>"

var identityPattern = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_.-]*:)?[A-Za-z_][A-Za-z0-9_.-]*$`)

// Value encapsulates the type and the parsed value of a leaf.
// Values are immutable; the zero Value is an unset string.
type Value struct {
	typ Type
	set bool
	// Integer-based values are held as sign and magnitude, so all numeric subtypes compare directly.
	neg bool
	mag uint64
	// Canonical text of non-numeric values.
	text string
}

// Parse delivers the value represented by raw under the grammar of t.
func Parse(t Type, raw string) (Value, error) {
	v := Value{typ: t, set: true}
	switch t.Family() {
	case NumericFamily:
		neg, mag, err := parseInteger(raw)
		if err != nil {
			return Value{}, invalid(t, raw)
		}
		v.neg, v.mag = neg, mag
	case TextFamily:
		v.text = raw
	default:
		v.text = strings.TrimSpace(raw)
	}

	if err := v.Check(); err != nil {
		return Value{}, err
	}
	return v, nil
}

// MustParse is like Parse but panics if raw cannot be parsed.
func MustParse(t Type, raw string) Value {
	v, err := Parse(t, raw)
	if err != nil {
		panic(err)
	}
	return v
}

// New delivers a value of type t from a native go value, which can be a string, a bool or any integer kind.
func New(t Type, native interface{}) (Value, error) {
	switch n := native.(type) {
	case string:
		return Parse(t, n)
	case bool:
		if t.Family() != BooleanFamily {
			return Value{}, invalid(t, native)
		}
		return Value{typ: t, set: true, text: strconv.FormatBool(n)}, nil
	}

	neg, mag, ok := integer(native)
	if !ok {
		return Value{}, errors.Wrapf(ErrInvalidValue, "unsupported native value %T", native)
	}
	if t.Family() != NumericFamily {
		return Value{}, invalid(t, native)
	}
	v := Value{typ: t, set: true, neg: neg, mag: mag}
	if err := v.Check(); err != nil {
		return Value{}, err
	}
	return v, nil
}

// Check validates the value against its type.
func (v Value) Check() error {
	if !v.set {
		return errors.Wrapf(ErrNoValue, "%s leaf", v.typ)
	}

	t := v.typ
	switch t.Family() {
	case NumericFamily:
		if !v.inRange() {
			return invalid(t, formatInteger(v.neg, v.mag))
		}
	case BooleanFamily:
		if v.text != "true" && v.text != "false" {
			return invalid(t, v.text)
		}
	case EnumFamily:
		if v.text == "" || !t.permits(v.text) {
			return invalid(t, v.text)
		}
	case IdentityFamily:
		if !identityPattern.MatchString(v.text) {
			return invalid(t, v.text)
		}
	case EmptyFamily:
		if v.text != "" {
			return invalid(t, v.text)
		}
	}
	return nil
}

func (v Value) inRange() bool {
	t := v.typ
	if !t.signed() {
		return !v.neg && v.mag <= t.unsignedMax()
	}
	lo, hi := t.signedRange()
	if v.neg {
		return v.mag <= uint64(-(lo+1))+1
	}
	return v.mag <= uint64(hi)
}

// Type delivers the type of the value.
func (v Value) Type() Type {
	return v.typ
}

// IsSet reports whether the value was constructed from a string or native value.
func (v Value) IsSet() bool {
	return v.set
}

// Canonical delivers the canonical text of the value.
// ErrNoValue is returned if the value was never set.
func (v Value) Canonical() (string, error) {
	if !v.set {
		return "", errors.Wrapf(ErrNoValue, "%s leaf", v.typ)
	}
	if v.typ.Family() == NumericFamily {
		return formatInteger(v.neg, v.mag), nil
	}
	return v.text, nil
}

// String delivers the canonical text of the value, or NoValueMarker if it was never set.
func (v Value) String() string {
	s, err := v.Canonical()
	if err != nil {
		return NoValueMarker
	}
	return s
}

// Native delivers the value as an int64 (signed types), uint64 (unsigned types), bool or string.
// Delivers nil for an unset value.
func (v Value) Native() interface{} {
	if !v.set {
		return nil
	}
	switch v.typ.Family() { //nolint: exhaustive
	case NumericFamily:
		if v.typ.signed() {
			if v.neg {
				return -int64(v.mag-1) - 1
			}
			return int64(v.mag)
		}
		return v.mag
	case BooleanFamily:
		return v.text == "true"
	}
	return v.text
}

// Equal reports whether v equals other, which can be a Value, a *Value, a string, a bool or any integer kind.
// Equality follows the family of v: numeric leaves equal numbers and numeric text of the same value,
// text leaves only equal identical strings.
func (v Value) Equal(other interface{}) bool {
	switch o := other.(type) {
	case Value:
		return Compare(v, o) == 0
	case *Value:
		return o != nil && Compare(v, *o) == 0
	case string:
		return v.equalString(o)
	case bool:
		return v.set && v.typ.Family() == BooleanFamily && v.text == strconv.FormatBool(o)
	}

	neg, mag, ok := integer(other)
	return ok && v.set && v.typ.Family() == NumericFamily && v.neg == neg && v.mag == mag
}

func (v Value) equalString(s string) bool {
	if !v.set {
		return false
	}
	switch v.typ.Family() { //nolint: exhaustive
	case NumericFamily:
		neg, mag, err := parseInteger(s)
		return err == nil && v.neg == neg && v.mag == mag
	case TextFamily:
		return v.text == s
	}
	return v.text == strings.TrimSpace(s)
}

// Key delivers a string that identifies the value: equal values deliver equal keys.
func (v Value) Key() string {
	if !v.set {
		return v.typ.Family().String() + ":"
	}
	s, _ := v.Canonical()
	return v.typ.Family().String() + "=" + s
}

// Hash delivers a hash of the value that agrees with Equal.
func (v Value) Hash() uint64 {
	return xxhash.Sum64String(v.Key())
}

// Compare delivers a total order over values: by family, unset before set, then by value within the family.
func Compare(a, b Value) int {
	fa, fb := a.typ.Family(), b.typ.Family()
	if fa != fb {
		return cmp.Compare(fa, fb)
	}
	if a.set != b.set {
		if !a.set {
			return -1
		}
		return 1
	}
	if !a.set {
		return 0
	}
	return comparators[fa](a, b)
}

var comparators = map[Family]func(a, b Value) int{
	TextFamily:     compareText,
	NumericFamily:  compareNumeric,
	BooleanFamily:  compareText,
	EnumFamily:     compareText,
	IdentityFamily: compareText,
	EmptyFamily:    compareText,
}

func compareText(a, b Value) int {
	return strings.Compare(a.text, b.text)
}

func compareNumeric(a, b Value) int {
	if a.neg != b.neg {
		if a.neg {
			return -1
		}
		return 1
	}
	c := cmp.Compare(a.mag, b.mag)
	if a.neg {
		return -c
	}
	return c
}

// Parses optionally signed decimal text into sign and magnitude.
func parseInteger(raw string) (neg bool, mag uint64, err error) {
	s := strings.TrimSpace(raw)
	if s != "" {
		switch s[0] {
		case '+':
			s = s[1:]
		case '-':
			neg = true
			s = s[1:]
		}
	}
	if s == "" || s[0] == '+' || s[0] == '-' {
		return false, 0, errors.Errorf("%q is not an integer", raw)
	}
	if mag, err = strconv.ParseUint(s, 10, 64); err != nil {
		return false, 0, err
	}
	return neg && mag != 0, mag, nil
}

func formatInteger(neg bool, mag uint64) string {
	s := strconv.FormatUint(mag, 10)
	if neg {
		return "-" + s
	}
	return s
}

// Delivers the sign and magnitude of any go integer kind.
func integer(n interface{}) (neg bool, mag uint64, ok bool) {
	switch n := n.(type) {
	case int:
		return fromInt64(int64(n))
	case int8:
		return fromInt64(int64(n))
	case int16:
		return fromInt64(int64(n))
	case int32:
		return fromInt64(int64(n))
	case int64:
		return fromInt64(n)
	case uint:
		return false, uint64(n), true
	case uint8:
		return false, uint64(n), true
	case uint16:
		return false, uint64(n), true
	case uint32:
		return false, uint64(n), true
	case uint64:
		return false, n, true
	}
	return false, 0, false
}

func fromInt64(i int64) (bool, uint64, bool) {
	if i < 0 {
		return true, uint64(-(i + 1)) + 1, true
	}
	return false, uint64(i), true
}

func invalid(t Type, value interface{}) error {
	return errors.Wrapf(ErrInvalidValue, "'%v' is not a valid %s", value, t)
}
