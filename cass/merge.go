package cass

import (
	"fmt"
	"strings"
)

// LocalDefs are the user types, tables and views defined in local files.
type LocalDefs struct {
	Types  []*UserDefinedType
	Tables []*TableDef
	Views  []*TableDef
}

/*
	MergeScriptCtx collects statements per phase.
	String joins the phases in the order cassandra accepts them:
	views are dropped before anything they select from,
	indexes before the columns they cover,
	and views are created after their base tables.
*/
type MergeScriptCtx struct {
	DropViews     strings.Builder
	DropIndexes   strings.Builder
	Drop          strings.Builder
	Create        strings.Builder
	CreateIndexes strings.Builder
	CreateViews   strings.Builder

	// base tables which lose columns or get recreated
	altered map[string]struct{}
}

func (sctx *MergeScriptCtx) markAltered(t *TableDef) {
	if sctx.altered == nil {
		sctx.altered = make(map[string]struct{})
	}
	sctx.altered[t.QualifiedName()] = struct{}{}
}

func (sctx *MergeScriptCtx) String() string {
	return sctx.DropViews.String() +
		sctx.DropIndexes.String() +
		sctx.Drop.String() +
		sctx.Create.String() +
		sctx.CreateIndexes.String() +
		sctx.CreateViews.String()
}

func StmtDropColumn(t *TableDef, c ColumnDef) string {
	return fmt.Sprintf("alter table %s drop %s;\n", t.QualifiedName(), quoteIdent(c.Name))
}

func StmtDropIndex(keyspace string, idx IndexDef) string {
	name := quoteIdent(idx.Name)
	if keyspace != "" {
		name = quoteIdent(keyspace) + "." + name
	}
	return "drop index " + name + ";\n"
}

func StmtAlterTypeAdd(u *UserDefinedType, field string, t ColumnType) string {
	return fmt.Sprintf("alter type %s.%s add %s %s;\n",
		quoteIdent(u.Keyspace), quoteIdent(u.Name), quoteIdent(field), t.cql(true))
}

func remoteTable(remote *Schema, keyspace, name string) *TableDef {
	if remote == nil {
		return nil
	}
	t, err := remote.TableByName(keyspace, name)
	if err != nil {
		return nil
	}
	return t
}

func MergeTypes(sctx *MergeScriptCtx, local []*UserDefinedType, remote *Schema) {
	for _, lu := range local {
		var ru *UserDefinedType
		if remote != nil {
			if k, err := remote.KeyspaceByName(lu.Keyspace); err == nil {
				ru, _ = k.UserTypeByName(lu.Name)
			}
		}
		if ru == nil {
			sctx.Create.WriteString(StmtCreateType(lu))
			continue
		}
		// fields can only be appended to an existing type
		existing := make(map[string]struct{}, len(ru.FieldNames))
		for _, f := range ru.FieldNames {
			existing[f] = struct{}{}
		}
		for i, f := range lu.FieldNames {
			if _, ok := existing[f]; !ok {
				sctx.Create.WriteString(StmtAlterTypeAdd(ru, f, lu.FieldTypes[i]))
			}
		}
	}
}

/*
	ChangedColumns returns names of columns present in both tables
	whose declared type or static flag differ.
	Types are compared as cql, so a user type that only gained fields
	(handled by alter type) doesnt count as a change.
*/
func ChangedColumns(lt, rt *TableDef) map[string]struct{} {
	ret := make(map[string]struct{})
	for _, lc := range lt.Columns {
		rc, err := rt.ColumnByName(lc.Name)
		if err != nil {
			continue
		}
		if lc.Type.String() != rc.Type.String() || lc.Static != rc.Static {
			ret[lc.Name] = struct{}{}
		}
	}
	return ret
}

/*
	MergeColumns adds local columns missing on remote and drops remote
	columns missing locally. Columns in changed are dropped and added
	again: cassandra doesnt allow changing the type of an existing column.
*/
func MergeColumns(sctx *MergeScriptCtx, lt, rt *TableDef, changed map[string]struct{}) {
	for _, m := range lt.MissingColumns(rt.ColumnNames()) {
		sctx.Drop.WriteString(StmtDropColumn(rt, m))
		sctx.markAltered(rt)
	}
	for _, rc := range rt.Columns {
		if _, ok := changed[rc.Name]; ok {
			sctx.Drop.WriteString(StmtDropColumn(rt, rc))
			sctx.markAltered(rt)
		}
	}
	for _, lc := range lt.Columns {
		_, recreated := changed[lc.Name]
		if recreated || !rt.HasColumn(lc.Name) {
			sctx.Create.WriteString(StmtAddColumn(rt, lc))
		}
	}
}

// MergeIndexes also recreates indexes on columns listed in changed.
func MergeIndexes(sctx *MergeScriptCtx, lt, rt *TableDef, changed map[string]struct{}) {
	recreate := make(map[string]struct{})
	for _, ri := range rt.Indexes {
		li, err := lt.IndexByName(ri.Name)
		_, onChanged := changed[ri.Target]
		switch {
		case err != nil:
			sctx.DropIndexes.WriteString(StmtDropIndex(rt.Keyspace, ri))
		case onChanged || li != ri:
			sctx.DropIndexes.WriteString(StmtDropIndex(rt.Keyspace, ri))
			recreate[ri.Name] = struct{}{}
		}
	}
	for _, li := range lt.Indexes {
		_, again := recreate[li.Name]
		if _, err := rt.IndexByName(li.Name); err != nil || again {
			sctx.CreateIndexes.WriteString(StmtCreateIndex(lt, li))
		}
	}
}

func createTable(sctx *MergeScriptCtx, lt *TableDef) {
	sctx.Create.WriteString(StmtCreateTable(lt))
	for _, idx := range lt.Indexes {
		sctx.CreateIndexes.WriteString(StmtCreateIndex(lt, idx))
	}
}

func MergeTables(sctx *MergeScriptCtx, local []*TableDef, remote *Schema) {
	for _, lt := range local {
		rt := remoteTable(remote, lt.Keyspace, lt.Name)
		if rt == nil {
			createTable(sctx, lt)
			continue
		}
		// if primary key differs
		// then we dont have other choice than to recreate the table
		if lt.SameKey(rt) {
			changed := ChangedColumns(lt, rt)
			MergeIndexes(sctx, lt, rt, changed)
			MergeColumns(sctx, lt, rt, changed)
		} else {
			sctx.Drop.WriteString(StmtDropTable(rt))
			sctx.markAltered(rt)
			createTable(sctx, lt)
		}
	}
}

func normalizeWhere(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SameView reports whether both views select the same columns
// with the same key and filter from the same base table.
func SameView(lv, rv *TableDef) bool {
	if lv.BaseTable != rv.BaseTable || !lv.SameKey(rv) {
		return false
	}
	if !strings.EqualFold(normalizeWhere(lv.WhereClause), normalizeWhere(rv.WhereClause)) {
		return false
	}
	if len(lv.Columns) != len(rv.Columns) {
		return false
	}
	return len(lv.MissingColumns(rv.ColumnNames())) == 0
}

/*
	MergeViews creates local views missing on remote and recreates
	the ones which differ or whose base table is altered by this script.
	Remote views over locally defined tables that have no local
	definition are dropped.
*/
func MergeViews(sctx *MergeScriptCtx, local *LocalDefs, remote *Schema) {
	defined := make(map[string]struct{}, len(local.Views))
	for _, lv := range local.Views {
		defined[lv.QualifiedName()] = struct{}{}
		rv := remoteTable(remote, lv.Keyspace, lv.Name)
		if rv == nil {
			sctx.CreateViews.WriteString(StmtCreateMaterializedView(lv))
			continue
		}
		base := &TableDef{Keyspace: lv.Keyspace, Name: lv.BaseTable}
		_, altered := sctx.altered[base.QualifiedName()]
		if altered || !SameView(lv, rv) {
			sctx.DropViews.WriteString(StmtDropMaterializedView(rv))
			sctx.CreateViews.WriteString(StmtCreateMaterializedView(lv))
		}
	}
	if remote == nil {
		return
	}
	for _, lt := range local.Tables {
		k, err := remote.KeyspaceByName(lt.Keyspace)
		if err != nil {
			continue
		}
		for _, n := range k.TableNames() {
			rv := k.Tables[n]
			if !rv.IsView || rv.BaseTable != lt.Name {
				continue
			}
			if _, ok := defined[rv.QualifiedName()]; !ok {
				sctx.DropViews.WriteString(StmtDropMaterializedView(rv))
			}
		}
	}
}

// Merge returns the cql which brings remote up to the local definitions.
// An empty string means remote is already up to date.
func Merge(local *LocalDefs, remote *Schema) string {
	var sctx MergeScriptCtx
	MergeTypes(&sctx, local.Types, remote)
	MergeTables(&sctx, local.Tables, remote)
	MergeViews(&sctx, local, remote)
	return sctx.String()
}
