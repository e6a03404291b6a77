package cass

import (
	"fmt"
	"strings"
	"sync"
)

var scalarKinds = map[string]Kind{
	"ascii":     KindAscii,
	"bigint":    KindBigInt,
	"blob":      KindBlob,
	"boolean":   KindBoolean,
	"counter":   KindCounter,
	"date":      KindDate,
	"decimal":   KindDecimal,
	"double":    KindDouble,
	"duration":  KindDuration,
	"float":     KindFloat,
	"inet":      KindInet,
	"int":       KindInt,
	"smallint":  KindSmallInt,
	"text":      KindVarChar,
	"time":      KindTime,
	"timestamp": KindTimestamp,
	"timeuuid":  KindTimeUUID,
	"tinyint":   KindTinyInt,
	"uuid":      KindUUID,
	"varchar":   KindVarChar,
	"varint":    KindVarInt,
}

// typeExpr is a parsed descriptor: a name with optional type arguments.
type typeExpr struct {
	name   string
	quoted bool
	args   []typeExpr
}

type typeLexer struct {
	src string
	pos int
}

func (l *typeLexer) skipSpace() {
	for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t' || l.src[l.pos] == '\n') {
		l.pos++
	}
}

func (l *typeLexer) peek() byte {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *typeLexer) expect(c byte) error {
	if l.peek() != c {
		return fmt.Errorf("expected '%c' at offset %d", c, l.pos)
	}
	l.pos++
	return nil
}

func (l *typeLexer) ident() (string, bool, error) {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return "", false, fmt.Errorf("unexpected end of descriptor")
	}
	switch l.src[l.pos] {
	case '"':
		// "" escapes a quote inside a quoted identifier
		var sb strings.Builder
		l.pos++
		for l.pos < len(l.src) {
			c := l.src[l.pos]
			l.pos++
			if c != '"' {
				sb.WriteByte(c)
				continue
			}
			if l.pos < len(l.src) && l.src[l.pos] == '"' {
				sb.WriteByte('"')
				l.pos++
				continue
			}
			return sb.String(), true, nil
		}
		return "", false, fmt.Errorf("unterminated quoted identifier")
	case '\'':
		end := strings.IndexByte(l.src[l.pos+1:], '\'')
		if end < 0 {
			return "", false, fmt.Errorf("unterminated custom type")
		}
		s := l.src[l.pos : l.pos+end+2]
		l.pos += end + 2
		return s, true, nil
	}
	start := l.pos
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '<' || c == '>' || c == ',' || c == ' ' || c == '\t' || c == '\n' {
			break
		}
		l.pos++
	}
	if start == l.pos {
		return "", false, fmt.Errorf("expected identifier at offset %d", start)
	}
	return strings.ToLower(l.src[start:l.pos]), false, nil
}

func (l *typeLexer) expr() (typeExpr, error) {
	var e typeExpr
	var err error
	if e.name, e.quoted, err = l.ident(); err != nil {
		return e, err
	}
	if l.peek() != '<' {
		return e, nil
	}
	l.pos++
	for {
		arg, err := l.expr()
		if err != nil {
			return e, err
		}
		e.args = append(e.args, arg)
		if l.peek() == ',' {
			l.pos++
			continue
		}
		return e, l.expect('>')
	}
}

func parseTypeExpr(descriptor string) (typeExpr, error) {
	l := &typeLexer{src: descriptor}
	e, err := l.expr()
	if err != nil {
		return e, err
	}
	if l.peek() != 0 {
		return e, fmt.Errorf("trailing input at offset %d", l.pos)
	}
	return e, nil
}

/*
	TypeResolver maps catalog type descriptors of one keyspace
	into ColumnType values.
	User types are resolved lazily from their raw descriptors and memoized,
	so a type shared by many tables is resolved once.
*/
type TypeResolver struct {
	keyspace string
	raw      map[string]UserTypeDescriptor

	mu        sync.Mutex
	resolved  map[string]*UserDefinedType
	resolving map[string]bool
}

func NewTypeResolver(keyspace string, userTypes []UserTypeDescriptor) *TypeResolver {
	r := &TypeResolver{
		keyspace:  keyspace,
		raw:       make(map[string]UserTypeDescriptor, len(userTypes)),
		resolved:  make(map[string]*UserDefinedType),
		resolving: make(map[string]bool),
	}
	for _, u := range userTypes {
		r.raw[u.Name] = u
	}
	return r
}

// Resolve maps descriptor to its ColumnType.
// Unknown or malformed descriptors fail with *UnsupportedTypeError.
func (r *TypeResolver) Resolve(descriptor string) (ColumnType, error) {
	e, err := parseTypeExpr(descriptor)
	if err != nil {
		return ColumnType{}, ErrUnsupportedType(descriptor, err.Error())
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolve(descriptor, e)
}

// UserType resolves the keyspace user type called name.
func (r *TypeResolver) UserType(name string) (*UserDefinedType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.userType(name)
}

// UserTypes resolves every user type known to r.
func (r *TypeResolver) UserTypes() (map[string]*UserDefinedType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ret := make(map[string]*UserDefinedType, len(r.raw))
	for name := range r.raw {
		u, err := r.userType(name)
		if err != nil {
			return nil, err
		}
		ret[name] = u
	}
	return ret, nil
}

func (r *TypeResolver) resolve(descriptor string, e typeExpr) (ColumnType, error) {
	arity := func(n int) error {
		if len(e.args) != n {
			return ErrUnsupportedType(descriptor,
				fmt.Sprintf("%s expects %d type arguments, got %d", e.name, n, len(e.args)))
		}
		return nil
	}

	if e.quoted && strings.HasPrefix(e.name, "'") {
		return ColumnType{}, ErrUnsupportedType(descriptor, "custom types are not supported")
	}

	if !e.quoted {
		switch e.name {
		case "frozen":
			if err := arity(1); err != nil {
				return ColumnType{}, err
			}
			return r.resolve(descriptor, e.args[0])
		case "list", "set":
			if err := arity(1); err != nil {
				return ColumnType{}, err
			}
			elem, err := r.resolve(descriptor, e.args[0])
			if err != nil {
				return ColumnType{}, err
			}
			if e.name == "list" {
				return ListOf(elem), nil
			}
			return SetOf(elem), nil
		case "map":
			if err := arity(2); err != nil {
				return ColumnType{}, err
			}
			k, err := r.resolve(descriptor, e.args[0])
			if err != nil {
				return ColumnType{}, err
			}
			v, err := r.resolve(descriptor, e.args[1])
			if err != nil {
				return ColumnType{}, err
			}
			return MapOf(k, v), nil
		case "tuple":
			if len(e.args) == 0 {
				return ColumnType{}, ErrUnsupportedType(descriptor, "empty tuple")
			}
			elems := make([]ColumnType, len(e.args))
			for i := range e.args {
				t, err := r.resolve(descriptor, e.args[i])
				if err != nil {
					return ColumnType{}, err
				}
				elems[i] = t
			}
			return TupleOf(elems...), nil
		}
		if k, ok := scalarKinds[e.name]; ok {
			if len(e.args) != 0 {
				return ColumnType{}, ErrUnsupportedType(descriptor, e.name+" takes no type arguments")
			}
			return ColumnType{Kind: k}, nil
		}
	}

	if len(e.args) != 0 {
		return ColumnType{}, ErrUnsupportedType(descriptor, "unknown parameterized type "+e.name)
	}
	if _, ok := r.raw[e.name]; !ok {
		return ColumnType{}, ErrUnsupportedType(descriptor, "")
	}
	u, err := r.userType(e.name)
	if err != nil {
		return ColumnType{}, err
	}
	return u.Type(), nil
}

// userType expects r.mu to be held.
func (r *TypeResolver) userType(name string) (*UserDefinedType, error) {
	if u, ok := r.resolved[name]; ok {
		return u, nil
	}
	raw, ok := r.raw[name]
	if !ok {
		return nil, ErrNotFound("user type", r.keyspace+"."+name)
	}
	if len(raw.FieldNames) != len(raw.FieldTypes) {
		return nil, ErrUnsupportedType(name,
			fmt.Sprintf("user type has %d field names and %d field types",
				len(raw.FieldNames), len(raw.FieldTypes)))
	}
	if r.resolving[name] {
		return nil, ErrUnsupportedType(name, "recursive user type")
	}
	r.resolving[name] = true
	defer delete(r.resolving, name)

	u := &UserDefinedType{
		Keyspace:   r.keyspace,
		Name:       name,
		FieldNames: append([]string(nil), raw.FieldNames...),
		FieldTypes: make([]ColumnType, len(raw.FieldTypes)),
	}
	for i, d := range raw.FieldTypes {
		e, err := parseTypeExpr(d)
		if err != nil {
			return nil, ErrUnsupportedType(d, err.Error())
		}
		if u.FieldTypes[i], err = r.resolve(d, e); err != nil {
			return nil, err
		}
	}
	r.resolved[name] = u
	return u, nil
}
