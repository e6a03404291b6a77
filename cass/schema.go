package cass

import "sort"

// KeyspaceDef groups the tables, views and user types of one keyspace.
type KeyspaceDef struct {
	Name      string                      `json:"name" yaml:"name"`
	Tables    map[string]*TableDef        `json:"tables,omitempty" yaml:"tables,omitempty"`
	UserTypes map[string]*UserDefinedType `json:"user_types,omitempty" yaml:"user_types,omitempty"`
}

func NewKeyspaceDef(name string, tables []*TableDef, userTypes []*UserDefinedType) *KeyspaceDef {
	k := &KeyspaceDef{Name: name}
	if len(tables) > 0 {
		k.Tables = make(map[string]*TableDef, len(tables))
		for _, t := range tables {
			k.Tables[t.Name] = t
		}
	}
	if len(userTypes) > 0 {
		k.UserTypes = make(map[string]*UserDefinedType, len(userTypes))
		for _, u := range userTypes {
			k.UserTypes[u.Name] = u
		}
	}
	return k
}

func (k *KeyspaceDef) TableByName(name string) (*TableDef, error) {
	if t, ok := k.Tables[name]; ok {
		return t, nil
	}
	return nil, ErrNotFound("table", k.Name+"."+name)
}

func (k *KeyspaceDef) UserTypeByName(name string) (*UserDefinedType, error) {
	if u, ok := k.UserTypes[name]; ok {
		return u, nil
	}
	return nil, ErrNotFound("user type", k.Name+"."+name)
}

func (k *KeyspaceDef) TableNames() []string {
	return sortedKeys(k.Tables)
}

func (k *KeyspaceDef) UserTypeNames() []string {
	return sortedKeys(k.UserTypes)
}

// Schema is the root of the model: keyspaces by name.
type Schema struct {
	Keyspaces map[string]*KeyspaceDef `json:"keyspaces" yaml:"keyspaces"`
}

func NewSchema(keyspaces ...*KeyspaceDef) *Schema {
	s := &Schema{Keyspaces: make(map[string]*KeyspaceDef, len(keyspaces))}
	for _, k := range keyspaces {
		s.Keyspaces[k.Name] = k
	}
	return s
}

func (s *Schema) KeyspaceByName(name string) (*KeyspaceDef, error) {
	if k, ok := s.Keyspaces[name]; ok {
		return k, nil
	}
	return nil, ErrNotFound("keyspace", name)
}

func (s *Schema) KeyspaceNames() []string {
	return sortedKeys(s.Keyspaces)
}

// TableByName looks the table up in keyspace ks.
func (s *Schema) TableByName(ks, name string) (*TableDef, error) {
	k, err := s.KeyspaceByName(ks)
	if err != nil {
		return nil, err
	}
	return k.TableByName(name)
}

// Tables lists every table ordered by keyspace and table name.
func (s *Schema) Tables() []*TableDef {
	var ret []*TableDef
	for _, ks := range s.KeyspaceNames() {
		k := s.Keyspaces[ks]
		for _, tn := range k.TableNames() {
			ret = append(ret, k.Tables[tn])
		}
	}
	return ret
}

func sortedKeys[V any](m map[string]V) []string {
	ret := make([]string, 0, len(m))
	for k := range m {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}
