package cass

import "fmt"

type ColumnRole int

const (
	RoleRegular ColumnRole = iota
	RolePartitionKey
	RoleClustering
)

var roleNames = map[ColumnRole]string{
	RoleRegular:      "regular",
	RolePartitionKey: "partition_key",
	RoleClustering:   "clustering",
}

func (r ColumnRole) String() string {
	if n, ok := roleNames[r]; ok {
		return n
	}
	return fmt.Sprintf("role(%d)", int(r))
}

func (r ColumnRole) MarshalText() ([]byte, error) {
	if _, ok := roleNames[r]; !ok {
		return nil, fmt.Errorf("invalid column role %d", int(r))
	}
	return []byte(r.String()), nil
}

func (r *ColumnRole) UnmarshalText(b []byte) error {
	for k, n := range roleNames {
		if n == string(b) {
			*r = k
			return nil
		}
	}
	return fmt.Errorf("invalid column role %q", string(b))
}

func (r ColumnRole) MarshalYAML() (interface{}, error) {
	b, err := r.MarshalText()
	return string(b), err
}

func (r *ColumnRole) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return r.UnmarshalText([]byte(s))
}

// clustering order as reported by system_schema.columns
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

/*
	ColumnDef describes one column of a table.
	ComponentIndex is set only for clustering columns
	and holds the zero-based position within the clustering key.
*/
type ColumnDef struct {
	Name           string     `json:"name" yaml:"name"`
	Type           ColumnType `json:"type" yaml:"type"`
	Role           ColumnRole `json:"role" yaml:"role"`
	ComponentIndex *int       `json:"component_index,omitempty" yaml:"component_index,omitempty"`
	Order          string     `json:"order,omitempty" yaml:"order,omitempty"`
	Static         bool       `json:"static,omitempty" yaml:"static,omitempty"`
}

func PartitionKeyColumn(name string, t ColumnType) ColumnDef {
	return ColumnDef{Name: name, Type: t, Role: RolePartitionKey}
}

// ClusteringColumn builds a clustering column. An empty order means ascending.
func ClusteringColumn(name string, t ColumnType, order string) ColumnDef {
	if order == "" {
		order = OrderAsc
	}
	return ColumnDef{Name: name, Type: t, Role: RoleClustering, Order: order}
}

func RegularColumn(name string, t ColumnType) ColumnDef {
	return ColumnDef{Name: name, Type: t, Role: RoleRegular}
}

func StaticColumn(name string, t ColumnType) ColumnDef {
	return ColumnDef{Name: name, Type: t, Role: RoleRegular, Static: true}
}

func (c ColumnDef) IsPartitionKeyColumn() bool {
	return c.Role == RolePartitionKey
}

func (c ColumnDef) IsClusteringColumn() bool {
	return c.Role == RoleClustering
}

func (c ColumnDef) IsPrimaryKeyColumn() bool {
	return c.Role == RolePartitionKey || c.Role == RoleClustering
}

func (c ColumnDef) IsRegularColumn() bool {
	return c.Role == RoleRegular
}

func (c ColumnDef) IsCollection() bool {
	return c.Type.IsCollection()
}

func (c ColumnDef) String() string {
	return c.Name + " " + c.Type.String()
}
