package cass

import "context"

// column kinds as reported by system_schema.columns
const (
	ColumnKindPartitionKey = "partition_key"
	ColumnKindClustering   = "clustering"
	ColumnKindRegular      = "regular"
	ColumnKindStatic       = "static"
)

type ColumnDescriptor struct {
	Name            string
	Type            string
	Kind            string
	Position        int
	ClusteringOrder string
}

type IndexDescriptor struct {
	Name    string
	Kind    string
	Options map[string]string
}

type UserTypeDescriptor struct {
	Name       string
	FieldNames []string
	FieldTypes []string
}

type ViewDescriptor struct {
	Name        string
	BaseTable   string
	WhereClause string
}

/*
	Catalog is the read side of the cluster metadata.
	Errors are passed through to callers untouched.
	Implementations must not be referenced by model values.
*/
type Catalog interface {
	ListKeyspaces(ctx context.Context) ([]string, error)
	ListTables(ctx context.Context, keyspace string) ([]string, error)
	ListColumns(ctx context.Context, keyspace, table string) ([]ColumnDescriptor, error)
	ListIndexes(ctx context.Context, keyspace, table string) ([]IndexDescriptor, error)
	ListUserTypes(ctx context.Context, keyspace string) ([]UserTypeDescriptor, error)
	ListViews(ctx context.Context, keyspace string) ([]ViewDescriptor, error)
}
