package cass

import (
	"context"

	"github.com/gocql/gocql"
)

// RemoteCatalog reads system_schema through a gocql session.
type RemoteCatalog struct {
	sess *gocql.Session
}

func NewRemoteCatalog(sess *gocql.Session) *RemoteCatalog {
	return &RemoteCatalog{sess: sess}
}

func (r *RemoteCatalog) ListKeyspaces(ctx context.Context) ([]string, error) {
	const q = "select keyspace_name from system_schema.keyspaces"
	return r.scanNames(ctx, q)
}

func (r *RemoteCatalog) ListTables(ctx context.Context, keyspace string) ([]string, error) {
	const q = "select table_name from system_schema.tables where keyspace_name = ?"
	return r.scanNames(ctx, q, keyspace)
}

func (r *RemoteCatalog) scanNames(ctx context.Context, q string, args ...interface{}) ([]string, error) {
	i := r.sess.Query(q, args...).WithContext(ctx).Iter()
	var tmp string
	ret := make([]string, 0, 10)
	for i.Scan(&tmp) {
		ret = append(ret, tmp)
	}
	return ret, i.Close()
}

func (r *RemoteCatalog) ListColumns(
	ctx context.Context,
	keyspace string,
	table string,
) ([]ColumnDescriptor, error) {
	const q = `select
			column_name,
			type,
			kind,
			position,
			clustering_order
		from system_schema.columns
		where keyspace_name = ? and table_name = ?`
	i := r.sess.Query(q, keyspace, table).WithContext(ctx).Iter()
	var tmp ColumnDescriptor
	ret := make([]ColumnDescriptor, 0, 10)
	for i.Scan(&tmp.Name, &tmp.Type, &tmp.Kind, &tmp.Position, &tmp.ClusteringOrder) {
		ret = append(ret, tmp)
	}
	return ret, i.Close()
}

func (r *RemoteCatalog) ListIndexes(
	ctx context.Context, keyspace, table string,
) ([]IndexDescriptor, error) {
	const q = `
		select index_name, kind, options
		from system_schema.indexes where keyspace_name = ? and table_name = ?`
	i := r.sess.Query(q, keyspace, table).WithContext(ctx).Iter()
	var tmp IndexDescriptor
	var options map[string]string
	ret := make([]IndexDescriptor, 0, 4)
	for i.Scan(&tmp.Name, &tmp.Kind, &options) {
		// gocql reuses the scanned map
		tmp.Options = make(map[string]string, len(options))
		for k, v := range options {
			tmp.Options[k] = v
		}
		ret = append(ret, tmp)
	}
	return ret, i.Close()
}

func (r *RemoteCatalog) ListUserTypes(
	ctx context.Context, keyspace string,
) ([]UserTypeDescriptor, error) {
	const q = `
		select type_name, field_names, field_types
		from system_schema.types where keyspace_name = ?`
	i := r.sess.Query(q, keyspace).WithContext(ctx).Iter()
	var name string
	var fields, types []string
	ret := make([]UserTypeDescriptor, 0, 4)
	for i.Scan(&name, &fields, &types) {
		ret = append(ret, UserTypeDescriptor{
			Name:       name,
			FieldNames: append([]string(nil), fields...),
			FieldTypes: append([]string(nil), types...),
		})
	}
	return ret, i.Close()
}

func (r *RemoteCatalog) ListViews(
	ctx context.Context, keyspace string,
) ([]ViewDescriptor, error) {
	const q = `select view_name, base_table_name, where_clause
		from system_schema.views
		where keyspace_name = ?`
	i := r.sess.Query(q, keyspace).WithContext(ctx).Iter()
	var tmp ViewDescriptor
	ret := make([]ViewDescriptor, 0, 4)
	for i.Scan(&tmp.Name, &tmp.BaseTable, &tmp.WhereClause) {
		ret = append(ret, tmp)
	}
	return ret, i.Close()
}
