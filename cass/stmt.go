package cass

import (
	"fmt"
	"strings"
)

func isPlainIdent(s string) bool {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_') {
			return false
		}
	}
	return true
}

// quoteIdent double-quotes identifiers that are not plain lower-case names.
func quoteIdent(s string) string {
	if isPlainIdent(s) {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func columnList(cols []ColumnDef) string {
	names := make([]string, len(cols))
	for i := range cols {
		names[i] = quoteIdent(cols[i].Name)
	}
	return strings.Join(names, ",")
}

func StmtPKDef(t *TableDef) string {
	s := "primary key((" + columnList(t.PartitionKey()) + ")"
	if cc := t.ClusteringColumns(); len(cc) > 0 {
		s += "," + columnList(cc)
	}
	s += ")"
	return s
}

func StmtCreateTable(t *TableDef) string {
	s := "create table " + t.QualifiedName() + " (\n"
	for _, c := range t.Columns {
		s += fmt.Sprintf("\t%s %s", quoteIdent(c.Name), c.Type)
		if c.Static {
			s += " static"
		}
		s += ",\n"
	}
	s += "\t" + StmtPKDef(t)
	s += "\n)"
	s += stmtClusteringOrder(t)
	s += ";\n"
	return s
}

func stmtClusteringOrder(t *TableDef) string {
	s := ""
	addedTag := false
	for _, cc := range t.ClusteringColumns() {
		if !addedTag {
			addedTag = true
			s += " with clustering order by ("
		}
		s += fmt.Sprintf("%s %s,", quoteIdent(cc.Name), cc.Order)
	}
	if addedTag {
		s = strings.TrimSuffix(s, ",")
		s += ")"
	}
	return s
}

func StmtDropTable(t *TableDef) string {
	return "drop table " + t.QualifiedName() + ";\n"
}

func StmtAddColumn(t *TableDef, c ColumnDef) string {
	s := fmt.Sprintf("alter table %s add %s %s", t.QualifiedName(), quoteIdent(c.Name), c.Type)
	if c.Static {
		s += " static"
	}
	return s + ";\n"
}

func StmtCreateIndex(t *TableDef, idx IndexDef) string {
	s := "create "
	if idx.IsCustom() {
		s += "custom "
	}
	s += fmt.Sprintf("index %s on %s (%s)", quoteIdent(idx.Name), t.QualifiedName(), idx.TargetExpr())
	if idx.IsCustom() {
		s += fmt.Sprintf(" using '%s'", idx.ClassName)
	}
	return s + ";\n"
}

func StmtCreateType(u *UserDefinedType) string {
	name := quoteIdent(u.Name)
	if u.Keyspace != "" {
		name = quoteIdent(u.Keyspace) + "." + name
	}
	s := "create type " + name + " (\n"
	for i := range u.FieldNames {
		s += fmt.Sprintf("\t%s %s,\n", quoteIdent(u.FieldNames[i]), u.FieldTypes[i].cql(true))
	}
	s = strings.TrimSuffix(s, ",\n") + "\n);\n"
	return s
}

func StmtCreateMaterializedView(v *TableDef) string {
	base := quoteIdent(v.BaseTable)
	if v.Keyspace != "" {
		base = quoteIdent(v.Keyspace) + "." + base
	}
	s := "create materialized view " + v.QualifiedName() + " as\n"
	s += "\tselect " + columnList(v.Columns) + " from " + base + "\n"
	s += "\twhere " + v.WhereClause + "\n"
	s += "\t" + StmtPKDef(v)
	s += stmtClusteringOrder(v)
	s += ";\n"
	return s
}

func StmtDropMaterializedView(v *TableDef) string {
	return "drop materialized view " + v.QualifiedName() + ";\n"
}
