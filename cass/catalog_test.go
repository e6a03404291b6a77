package cass

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeKeyspace struct {
	tables  map[string][]ColumnDescriptor
	indexes map[string][]IndexDescriptor
	types   []UserTypeDescriptor
	views   []ViewDescriptor
}

// fakeCatalog is an in-memory Catalog. It is only read after construction.
type fakeCatalog struct {
	keyspaces map[string]*fakeKeyspace
}

func (f *fakeCatalog) ListKeyspaces(ctx context.Context) ([]string, error) {
	ret := make([]string, 0, len(f.keyspaces))
	for k := range f.keyspaces {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret, nil
}

func (f *fakeCatalog) ListTables(ctx context.Context, keyspace string) ([]string, error) {
	k, ok := f.keyspaces[keyspace]
	if !ok {
		return nil, nil
	}
	ret := make([]string, 0, len(k.tables))
	for t := range k.tables {
		if !k.isView(t) {
			ret = append(ret, t)
		}
	}
	sort.Strings(ret)
	return ret, nil
}

func (k *fakeKeyspace) isView(name string) bool {
	for _, v := range k.views {
		if v.Name == name {
			return true
		}
	}
	return false
}

func (f *fakeCatalog) ListColumns(ctx context.Context, keyspace, table string) ([]ColumnDescriptor, error) {
	if k, ok := f.keyspaces[keyspace]; ok {
		return k.tables[table], nil
	}
	return nil, nil
}

func (f *fakeCatalog) ListIndexes(ctx context.Context, keyspace, table string) ([]IndexDescriptor, error) {
	if k, ok := f.keyspaces[keyspace]; ok {
		return k.indexes[table], nil
	}
	return nil, nil
}

func (f *fakeCatalog) ListUserTypes(ctx context.Context, keyspace string) ([]UserTypeDescriptor, error) {
	if k, ok := f.keyspaces[keyspace]; ok {
		return k.types, nil
	}
	return nil, nil
}

func (f *fakeCatalog) ListViews(ctx context.Context, keyspace string) ([]ViewDescriptor, error) {
	if k, ok := f.keyspaces[keyspace]; ok {
		return k.views, nil
	}
	return nil, nil
}

// mockCatalog lets tests fail single catalog calls.
type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) ListKeyspaces(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockCatalog) ListTables(ctx context.Context, keyspace string) ([]string, error) {
	args := m.Called(ctx, keyspace)
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockCatalog) ListColumns(ctx context.Context, keyspace, table string) ([]ColumnDescriptor, error) {
	args := m.Called(ctx, keyspace, table)
	return args.Get(0).([]ColumnDescriptor), args.Error(1)
}

func (m *mockCatalog) ListIndexes(ctx context.Context, keyspace, table string) ([]IndexDescriptor, error) {
	args := m.Called(ctx, keyspace, table)
	return args.Get(0).([]IndexDescriptor), args.Error(1)
}

func (m *mockCatalog) ListUserTypes(ctx context.Context, keyspace string) ([]UserTypeDescriptor, error) {
	args := m.Called(ctx, keyspace)
	return args.Get(0).([]UserTypeDescriptor), args.Error(1)
}

func (m *mockCatalog) ListViews(ctx context.Context, keyspace string) ([]ViewDescriptor, error) {
	args := m.Called(ctx, keyspace)
	return args.Get(0).([]ViewDescriptor), args.Error(1)
}

var addressType = UserTypeDescriptor{
	Name:       "address",
	FieldNames: []string{"street", "city", "zip"},
	FieldTypes: []string{"varchar", "varchar", "int"},
}

// wideColumns describes app.wide: key (k1,k2,k3),c1,c2,c3 and 16 regular columns.
// Entries are deliberately not in key order.
func wideColumns() []ColumnDescriptor {
	cols := []ColumnDescriptor{
		{Name: "c2", Type: "int", Kind: ColumnKindClustering, Position: 1, ClusteringOrder: "desc"},
		{Name: "k3", Type: "int", Kind: ColumnKindPartitionKey, Position: 2, ClusteringOrder: "none"},
		{Name: "c1", Type: "timestamp", Kind: ColumnKindClustering, Position: 0, ClusteringOrder: "asc"},
		{Name: "k1", Type: "uuid", Kind: ColumnKindPartitionKey, Position: 0, ClusteringOrder: "none"},
		{Name: "c3", Type: "text", Kind: ColumnKindClustering, Position: 2, ClusteringOrder: "asc"},
		{Name: "k2", Type: "text", Kind: ColumnKindPartitionKey, Position: 1, ClusteringOrder: "none"},
	}
	regular := []struct{ name, typ string }{
		{"d01_text", "text"},
		{"d02_int", "int"},
		{"d03_bigint", "bigint"},
		{"d04_bool", "boolean"},
		{"d05_tags", "set<text>"},
		{"d06_attrs", "map<text, int>"},
		{"d07_list", "list<bigint>"},
		{"d08_blob", "blob"},
		{"d09_double", "double"},
		{"d10_float", "float"},
		{"d11_ts", "timestamp"},
		{"d12_uuid", "uuid"},
		{"d13_decimal", "decimal"},
		{"d14_inet", "inet"},
		{"d15_nested", "map<text, frozen<list<int>>>"},
		{"d16_address", "frozen<address>"},
	}
	for _, r := range regular {
		cols = append(cols, ColumnDescriptor{
			Name: r.name, Type: r.typ, Kind: ColumnKindRegular, Position: -1, ClusteringOrder: "none",
		})
	}
	return cols
}

func newTestCatalog() *fakeCatalog {
	return &fakeCatalog{keyspaces: map[string]*fakeKeyspace{
		"app": {
			tables: map[string][]ColumnDescriptor{
				"wide": wideColumns(),
				"users": {
					{Name: "id", Type: "uuid", Kind: ColumnKindPartitionKey, Position: 0, ClusteringOrder: "none"},
					{Name: "email", Type: "text", Kind: ColumnKindRegular, Position: -1, ClusteringOrder: "none"},
					{Name: "home", Type: "frozen<address>", Kind: ColumnKindRegular, Position: -1, ClusteringOrder: "none"},
					{Name: "version", Type: "int", Kind: ColumnKindStatic, Position: -1, ClusteringOrder: "none"},
				},
				"users_by_email": {
					{Name: "email", Type: "text", Kind: ColumnKindPartitionKey, Position: 0, ClusteringOrder: "none"},
					{Name: "id", Type: "uuid", Kind: ColumnKindClustering, Position: 0, ClusteringOrder: "asc"},
				},
			},
			indexes: map[string][]IndexDescriptor{
				"wide": {
					{Name: "wide_d01", Kind: "COMPOSITES", Options: map[string]string{"target": "d01_text"}},
					{Name: "wide_tags", Kind: "COMPOSITES", Options: map[string]string{"target": "values(d05_tags)"}},
					{Name: "wide_attr_keys", Kind: "COMPOSITES", Options: map[string]string{"target": "keys(d06_attrs)"}},
					{Name: "wide_attr_entries", Kind: "COMPOSITES", Options: map[string]string{"target": "entries(d06_attrs)"}},
					{Name: "wide_d02_sasi", Kind: "CUSTOM", Options: map[string]string{
						"target":     "d02_int",
						"class_name": sasiClassName,
					}},
				},
			},
			types: []UserTypeDescriptor{addressType},
			views: []ViewDescriptor{
				{Name: "users_by_email", BaseTable: "users", WhereClause: "email IS NOT NULL AND id IS NOT NULL"},
			},
		},
		"audit": {
			tables: map[string][]ColumnDescriptor{
				"events": {
					{Name: "day", Type: "date", Kind: ColumnKindPartitionKey, Position: 0, ClusteringOrder: "none"},
					{Name: "at", Type: "timeuuid", Kind: ColumnKindClustering, Position: 0, ClusteringOrder: "desc"},
					{Name: "payload", Type: "blob", Kind: ColumnKindRegular, Position: -1, ClusteringOrder: "none"},
				},
				"users": {
					{Name: "id", Type: "uuid", Kind: ColumnKindPartitionKey, Position: 0, ClusteringOrder: "none"},
				},
			},
		},
		"empty": {},
	}}
}

func mustTable(t testing.TB, s *Schema, ks, name string) *TableDef {
	t.Helper()
	tbl, err := s.TableByName(ks, name)
	require.NoError(t, err)
	return tbl
}
