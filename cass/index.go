package cass

import (
	"fmt"
	"strings"
)

// IndexKind tells which part of the target column an index covers.
type IndexKind int

const (
	IndexColumn IndexKind = iota
	IndexMapKeys
	IndexMapValues
	IndexMapEntries
	IndexFullCollection
)

var indexKindNames = map[IndexKind]string{
	IndexColumn:         "column",
	IndexMapKeys:        "keys",
	IndexMapValues:      "values",
	IndexMapEntries:     "entries",
	IndexFullCollection: "full",
}

func (k IndexKind) String() string {
	if n, ok := indexKindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("index_kind(%d)", int(k))
}

func (k IndexKind) MarshalText() ([]byte, error) {
	if _, ok := indexKindNames[k]; !ok {
		return nil, fmt.Errorf("invalid index kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *IndexKind) UnmarshalText(b []byte) error {
	for v, n := range indexKindNames {
		if n == string(b) {
			*k = v
			return nil
		}
	}
	return fmt.Errorf("invalid index kind %q", string(b))
}

func (k IndexKind) MarshalYAML() (interface{}, error) {
	b, err := k.MarshalText()
	return string(b), err
}

func (k *IndexKind) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return k.UnmarshalText([]byte(s))
}

const sasiClassName = "org.apache.cassandra.index.sasi.SASIIndex"

type IndexDef struct {
	Name      string    `json:"name" yaml:"name"`
	Target    string    `json:"target" yaml:"target"`
	Kind      IndexKind `json:"kind" yaml:"kind"`
	ClassName string    `json:"class_name,omitempty" yaml:"class_name,omitempty"`
}

// NewIndexDef builds an index from a catalog target expression
// such as "c", "keys(m)" or "entries(\"M\")".
func NewIndexDef(name, target string) (IndexDef, error) {
	column, kind, err := ParseIndexTarget(target)
	if err != nil {
		return IndexDef{}, err
	}
	return IndexDef{Name: name, Target: column, Kind: kind}, nil
}

func (i IndexDef) IsCustom() bool {
	return i.ClassName != ""
}

func (i IndexDef) IsSASI() bool {
	return i.ClassName == sasiClassName
}

// TargetExpr renders the index target as used in create index.
func (i IndexDef) TargetExpr() string {
	if i.Kind == IndexColumn {
		return quoteIdent(i.Target)
	}
	return fmt.Sprintf("%s(%s)", i.Kind, quoteIdent(i.Target))
}

// ParseIndexTarget splits a catalog target expression into column and kind.
func ParseIndexTarget(target string) (string, IndexKind, error) {
	t := strings.TrimSpace(target)
	if t == "" {
		return "", IndexColumn, ErrValidation("couldnt find target for index")
	}
	kind := IndexColumn
	if open := strings.IndexByte(t, '('); open > 0 && strings.HasSuffix(t, ")") && t[0] != '"' {
		var ok bool
		for k, n := range indexKindNames {
			if k != IndexColumn && strings.EqualFold(t[:open], n) {
				kind, ok = k, true
				break
			}
		}
		if !ok {
			return "", IndexColumn, ErrValidation("unknown index target %q", target)
		}
		t = strings.TrimSpace(t[open+1 : len(t)-1])
	}
	name, err := unquoteIdent(t)
	if err != nil {
		return "", IndexColumn, ErrValidation("index target %q: %v", target, err)
	}
	return name, kind, nil
}

func unquoteIdent(s string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("empty identifier")
	}
	if s[0] != '"' {
		return s, nil
	}
	if len(s) < 2 || s[len(s)-1] != '"' {
		return "", fmt.Errorf("unterminated quoted identifier")
	}
	return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`), nil
}
