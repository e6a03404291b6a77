package cass

import (
	"sort"
	"strconv"
)

/*
	TableDef is the model of one table (or materialized view).
	Columns hold the declaration order: partition key, clustering key,
	then regular columns. Key views are derived from Columns on every call,
	so a table built by hand and one read from the catalog behave the same.
	A TableDef must not be modified after construction.
*/
type TableDef struct {
	Keyspace    string      `json:"keyspace" yaml:"keyspace"`
	Name        string      `json:"name" yaml:"name"`
	Columns     []ColumnDef `json:"columns" yaml:"columns"`
	Indexes     []IndexDef  `json:"indexes,omitempty" yaml:"indexes,omitempty"`
	IsView      bool        `json:"is_view,omitempty" yaml:"is_view,omitempty"`
	BaseTable   string      `json:"base_table,omitempty" yaml:"base_table,omitempty"`
	WhereClause string      `json:"where_clause,omitempty" yaml:"where_clause,omitempty"`
}

/*
	NewTableDef builds a table from explicit columns.
	Roles and component indexes are assigned from the slice each column
	is passed in; the order of partition and clustering slices is the key order.
*/
func NewTableDef(
	keyspace, name string,
	partitionKey, clusteringColumns, regularColumns []ColumnDef,
	indexes []IndexDef,
) (*TableDef, error) {
	if name == "" {
		return nil, ErrValidation("table in keyspace %s doesnt have name specified", keyspace)
	}
	if len(partitionKey) == 0 {
		return nil, ErrValidation("table %s.%s: partition key is empty", keyspace, name)
	}

	n := len(partitionKey) + len(clusteringColumns) + len(regularColumns)
	t := &TableDef{
		Keyspace: keyspace,
		Name:     name,
		Columns:  make([]ColumnDef, 0, n),
	}
	seen := make(map[string]struct{}, n)
	add := func(c ColumnDef) error {
		if c.Name == "" {
			return ErrValidation("table %s.%s: column without name", keyspace, name)
		}
		if c.Type.Kind == KindUnknown {
			return ErrValidation("table %s.%s: column %s doesnt specify type", keyspace, name, c.Name)
		}
		if _, ok := seen[c.Name]; ok {
			return ErrValidation("table %s.%s: duplicate column %s", keyspace, name, c.Name)
		}
		seen[c.Name] = struct{}{}
		t.Columns = append(t.Columns, c)
		return nil
	}

	for _, c := range partitionKey {
		c.Role = RolePartitionKey
		c.ComponentIndex = nil
		c.Order = ""
		c.Static = false
		if err := add(c); err != nil {
			return nil, err
		}
	}
	for i, c := range clusteringColumns {
		idx := i
		c.Role = RoleClustering
		c.ComponentIndex = &idx
		c.Static = false
		if c.Order == "" {
			c.Order = OrderAsc
		}
		if c.Order != OrderAsc && c.Order != OrderDesc {
			return nil, ErrValidation("table %s.%s: invalid clustering order %q for %s",
				keyspace, name, c.Order, c.Name)
		}
		if err := add(c); err != nil {
			return nil, err
		}
	}
	for _, c := range regularColumns {
		c.Role = RoleRegular
		c.ComponentIndex = nil
		c.Order = ""
		if err := add(c); err != nil {
			return nil, err
		}
	}

	for _, idx := range indexes {
		if _, ok := seen[idx.Target]; !ok {
			return nil, ErrNotFound("column", keyspace+"."+name+"."+idx.Target)
		}
		t.Indexes = append(t.Indexes, idx)
	}
	return t, nil
}

func (t *TableDef) filter(role ColumnRole) []ColumnDef {
	var ret []ColumnDef
	for _, c := range t.Columns {
		if c.Role == role {
			ret = append(ret, c)
		}
	}
	return ret
}

func (t *TableDef) PartitionKey() []ColumnDef {
	return t.filter(RolePartitionKey)
}

func (t *TableDef) ClusteringColumns() []ColumnDef {
	ret := t.filter(RoleClustering)
	sort.SliceStable(ret, func(i, j int) bool {
		return componentIndex(ret[i]) < componentIndex(ret[j])
	})
	return ret
}

func componentIndex(c ColumnDef) int {
	if c.ComponentIndex == nil {
		return -1
	}
	return *c.ComponentIndex
}

// PrimaryKey is the partition key followed by the clustering columns.
func (t *TableDef) PrimaryKey() []ColumnDef {
	return append(t.PartitionKey(), t.ClusteringColumns()...)
}

func (t *TableDef) RegularColumns() []ColumnDef {
	return t.filter(RoleRegular)
}

func (t *TableDef) ColumnNames() []string {
	ret := make([]string, len(t.Columns))
	for i := range t.Columns {
		ret[i] = t.Columns[i].Name
	}
	return ret
}

func (t *TableDef) HasColumn(name string) bool {
	_, err := t.ColumnByName(name)
	return err == nil
}

func (t *TableDef) ColumnByName(name string) (ColumnDef, error) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, nil
		}
	}
	return ColumnDef{}, ErrNotFound("column", t.Keyspace+"."+t.Name+"."+name)
}

func (t *TableDef) ColumnByIndex(i int) (ColumnDef, error) {
	if i < 0 || i >= len(t.Columns) {
		return ColumnDef{}, &NotFoundError{
			Kind: "column index",
			Name: t.Keyspace + "." + t.Name + "[" + strconv.Itoa(i) + "]",
		}
	}
	return t.Columns[i], nil
}

/*
	MissingColumns returns stand-ins for the requested names that the table
	doesnt have, in request order. A stand-in carries only the name.
	A name requested twice is reported once.
*/
func (t *TableDef) MissingColumns(names []string) []ColumnDef {
	present := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		present[c.Name] = struct{}{}
	}
	var ret []ColumnDef
	for _, n := range names {
		if _, ok := present[n]; ok {
			continue
		}
		present[n] = struct{}{}
		ret = append(ret, ColumnDef{Name: n})
	}
	return ret
}

/*
	IndexedColumns returns the distinct columns covered by plain column indexes,
	in declaration order. Columns indexed only by keys/values/entries/full
	indexes are left out.
*/
func (t *TableDef) IndexedColumns() []ColumnDef {
	indexed := make(map[string]struct{}, len(t.Indexes))
	for _, idx := range t.Indexes {
		if idx.Kind == IndexColumn {
			indexed[idx.Target] = struct{}{}
		}
	}
	var ret []ColumnDef
	for _, c := range t.Columns {
		if _, ok := indexed[c.Name]; ok {
			ret = append(ret, c)
		}
	}
	return ret
}

func (t *TableDef) IndexByName(name string) (IndexDef, error) {
	for _, idx := range t.Indexes {
		if idx.Name == name {
			return idx, nil
		}
	}
	return IndexDef{}, ErrNotFound("index", t.Keyspace+"."+name)
}

// SameKey reports whether both tables have the same primary key columns,
// types and clustering orders.
func (t *TableDef) SameKey(o *TableDef) bool {
	p1, p2 := t.PartitionKey(), o.PartitionKey()
	c1, c2 := t.ClusteringColumns(), o.ClusteringColumns()
	if len(p1) != len(p2) || len(c1) != len(c2) {
		return false
	}
	for i := range p1 {
		if p1[i].Name != p2[i].Name || !p1[i].Type.Equal(p2[i].Type) {
			return false
		}
	}
	for i := range c1 {
		if c1[i].Name != c2[i].Name || c1[i].Order != c2[i].Order || !c1[i].Type.Equal(c2[i].Type) {
			return false
		}
	}
	return true
}

func (t *TableDef) QualifiedName() string {
	if t.Keyspace == "" {
		return quoteIdent(t.Name)
	}
	return quoteIdent(t.Keyspace) + "." + quoteIdent(t.Name)
}
