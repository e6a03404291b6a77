package cass

import (
	"fmt"
	"strings"
)

// Kind tags the variant held by a ColumnType.
type Kind int

const (
	KindUnknown Kind = iota
	KindAscii
	KindBigInt
	KindBlob
	KindBoolean
	KindCounter
	KindDate
	KindDecimal
	KindDouble
	KindDuration
	KindFloat
	KindInet
	KindInt
	KindSmallInt
	KindTime
	KindTimestamp
	KindTimeUUID
	KindTinyInt
	KindUUID
	KindVarChar
	KindVarInt
	KindList
	KindSet
	KindMap
	KindTuple
	KindUDT
)

var kindNames = map[Kind]string{
	KindUnknown:   "unknown",
	KindAscii:     "ascii",
	KindBigInt:    "bigint",
	KindBlob:      "blob",
	KindBoolean:   "boolean",
	KindCounter:   "counter",
	KindDate:      "date",
	KindDecimal:   "decimal",
	KindDouble:    "double",
	KindDuration:  "duration",
	KindFloat:     "float",
	KindInet:      "inet",
	KindInt:       "int",
	KindSmallInt:  "smallint",
	KindTime:      "time",
	KindTimestamp: "timestamp",
	KindTimeUUID:  "timeuuid",
	KindTinyInt:   "tinyint",
	KindUUID:      "uuid",
	KindVarChar:   "varchar",
	KindVarInt:    "varint",
	KindList:      "list",
	KindSet:       "set",
	KindMap:       "map",
	KindTuple:     "tuple",
	KindUDT:       "udt",
}

var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, n := range kindNames {
		m[n] = k
	}
	return m
}()

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("invalid column type kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	v, ok := kindByName[string(b)]
	if !ok {
		return fmt.Errorf("invalid column type kind %q", string(b))
	}
	*k = v
	return nil
}

func (k Kind) MarshalYAML() (interface{}, error) {
	b, err := k.MarshalText()
	return string(b), err
}

func (k *Kind) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return k.UnmarshalText([]byte(s))
}

// IsCollection reports whether k is list, set or map.
func (k Kind) IsCollection() bool {
	return k == KindList || k == KindSet || k == KindMap
}

/*
	ColumnType is a closed set of variants tagged by Kind.
	Only the fields belonging to the variant are set:
		list, set -> Elem
		map       -> Key, Value
		tuple     -> Elems
		udt       -> UDT
	Values are never mutated once built, so sub-trees may be shared.
*/
type ColumnType struct {
	Kind  Kind             `json:"kind" yaml:"kind"`
	Elem  *ColumnType      `json:"elem,omitempty" yaml:"elem,omitempty"`
	Key   *ColumnType      `json:"key,omitempty" yaml:"key,omitempty"`
	Value *ColumnType      `json:"value,omitempty" yaml:"value,omitempty"`
	Elems []ColumnType     `json:"elems,omitempty" yaml:"elems,omitempty"`
	UDT   *UserDefinedType `json:"udt,omitempty" yaml:"udt,omitempty"`
}

var (
	Ascii     = ColumnType{Kind: KindAscii}
	BigInt    = ColumnType{Kind: KindBigInt}
	Blob      = ColumnType{Kind: KindBlob}
	Boolean   = ColumnType{Kind: KindBoolean}
	Counter   = ColumnType{Kind: KindCounter}
	Date      = ColumnType{Kind: KindDate}
	Decimal   = ColumnType{Kind: KindDecimal}
	Double    = ColumnType{Kind: KindDouble}
	Duration  = ColumnType{Kind: KindDuration}
	Float     = ColumnType{Kind: KindFloat}
	Inet      = ColumnType{Kind: KindInet}
	Int       = ColumnType{Kind: KindInt}
	SmallInt  = ColumnType{Kind: KindSmallInt}
	Time      = ColumnType{Kind: KindTime}
	Timestamp = ColumnType{Kind: KindTimestamp}
	TimeUUID  = ColumnType{Kind: KindTimeUUID}
	TinyInt   = ColumnType{Kind: KindTinyInt}
	UUID      = ColumnType{Kind: KindUUID}
	VarChar   = ColumnType{Kind: KindVarChar}
	VarInt    = ColumnType{Kind: KindVarInt}
)

func ListOf(elem ColumnType) ColumnType {
	return ColumnType{Kind: KindList, Elem: &elem}
}

func SetOf(elem ColumnType) ColumnType {
	return ColumnType{Kind: KindSet, Elem: &elem}
}

func MapOf(key, value ColumnType) ColumnType {
	return ColumnType{Kind: KindMap, Key: &key, Value: &value}
}

func TupleOf(elems ...ColumnType) ColumnType {
	return ColumnType{Kind: KindTuple, Elems: append([]ColumnType(nil), elems...)}
}

func (t ColumnType) IsCollection() bool {
	return t.Kind.IsCollection()
}

func (t ColumnType) IsUDT() bool {
	return t.Kind == KindUDT
}

// Equal compares types structurally. User types compare by name and fields.
func (t ColumnType) Equal(o ColumnType) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindList, KindSet:
		return ptrTypeEqual(t.Elem, o.Elem)
	case KindMap:
		return ptrTypeEqual(t.Key, o.Key) && ptrTypeEqual(t.Value, o.Value)
	case KindTuple:
		return typesEqual(t.Elems, o.Elems)
	case KindUDT:
		if t.UDT == nil || o.UDT == nil {
			return t.UDT == o.UDT
		}
		return t.UDT.Equal(*o.UDT)
	}
	return true
}

func ptrTypeEqual(a, b *ColumnType) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func typesEqual(a, b []ColumnType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// String renders the type as CQL.
func (t ColumnType) String() string {
	return t.cql(false)
}

func (t ColumnType) cql(nested bool) string {
	var s string
	switch t.Kind {
	case KindVarChar:
		return "text"
	case KindList, KindSet:
		s = fmt.Sprintf("%s<%s>", t.Kind, t.Elem.cqlOrUnknown())
	case KindMap:
		s = fmt.Sprintf("map<%s, %s>", t.Key.cqlOrUnknown(), t.Value.cqlOrUnknown())
	case KindTuple:
		parts := make([]string, len(t.Elems))
		for i := range t.Elems {
			parts[i] = t.Elems[i].cql(true)
		}
		// tuples are always frozen
		return "tuple<" + strings.Join(parts, ", ") + ">"
	case KindUDT:
		if t.UDT == nil {
			return "frozen<?>"
		}
		return "frozen<" + quoteIdent(t.UDT.Name) + ">"
	default:
		return t.Kind.String()
	}
	if nested {
		return "frozen<" + s + ">"
	}
	return s
}

func (t *ColumnType) cqlOrUnknown() string {
	if t == nil {
		return "?"
	}
	return t.cql(true)
}

// UserDefinedType is a named composite with ordered fields.
type UserDefinedType struct {
	Keyspace   string       `json:"keyspace" yaml:"keyspace"`
	Name       string       `json:"name" yaml:"name"`
	FieldNames []string     `json:"field_names" yaml:"field_names"`
	FieldTypes []ColumnType `json:"field_types" yaml:"field_types"`
}

// Type wraps u as a column type.
func (u *UserDefinedType) Type() ColumnType {
	return ColumnType{Kind: KindUDT, UDT: u}
}

func (u *UserDefinedType) FieldType(name string) (ColumnType, error) {
	for i := range u.FieldNames {
		if u.FieldNames[i] == name {
			return u.FieldTypes[i], nil
		}
	}
	return ColumnType{}, ErrNotFound("field", u.Name+"."+name)
}

func (u UserDefinedType) Equal(o UserDefinedType) bool {
	if u.Name != o.Name || len(u.FieldNames) != len(o.FieldNames) {
		return false
	}
	for i := range u.FieldNames {
		if u.FieldNames[i] != o.FieldNames[i] {
			return false
		}
	}
	return typesEqual(u.FieldTypes, o.FieldTypes)
}
