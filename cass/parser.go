package cass

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/kzaag/cqlschema/cmn"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

/*
	local definition files.
	every yaml file holds exactly one object, either
		table:
			keyspace: ks
			name: users
			columns:
				- name: id
				  type: uuid
			primary:
				partition: [id]
				clustering:
					- name: ts
					  order: desc
			indexes:
				- name: users_tags
				  target: values(tags)
	or
		view:
			keyspace: ks
			name: users_by_email
			base: users
			columns: [email, id]
			where: email is not null and id is not null
			primary:
				partition: [email]
				clustering:
					- name: id
	or
		type:
			keyspace: ks
			name: address
			fields:
				- name: street
				  type: text
*/

type yamlField struct {
	Name   string
	Type   string
	Static bool
}

type yamlClustering struct {
	Name  string
	Order string
}

type yamlPrimaryKey struct {
	Partition  []string
	Clustering []yamlClustering
}

type yamlIndex struct {
	Name   string
	Target string
	Class  string
}

type yamlTable struct {
	Keyspace string
	Name     string
	Columns  []yamlField
	Primary  *yamlPrimaryKey
	Indexes  []yamlIndex
	path     string
}

// yamlView selects from a base table defined in the same set of files.
// No columns means every column of the base.
type yamlView struct {
	Keyspace string
	Name     string
	Base     string
	Columns  []string
	Where    string
	Primary  *yamlPrimaryKey
	path     string
}

type yamlType struct {
	Keyspace string
	Name     string
	Fields   []yamlField
	path     string
}

type ParseCtx struct {
	tables []*yamlTable
	views  []*yamlView
	types  map[string][]UserTypeDescriptor
}

func parserValidateTable(t *yamlTable, path string) error {
	if t.Name == "" {
		return ErrValidation("Validate %s: table doesnt have name specified", path)
	}
	if t.Keyspace == "" {
		return ErrValidation("Validate %s: table doesnt have keyspace specified", path)
	}
	if t.Primary == nil || len(t.Primary.Partition) == 0 {
		return ErrValidation("Validate %s: table primary key doesnt exist", path)
	}
	for _, c := range t.Columns {
		if c.Name == "" {
			return ErrValidation("Validate %s: column without name", path)
		}
		if c.Type == "" {
			return ErrValidation("Validate %s: column %s doesnt specify type", path, c.Name)
		}
	}
	return nil
}

func parserValidateView(v *yamlView, path string) error {
	if v.Name == "" {
		return ErrValidation("Validate %s: view doesnt have name specified", path)
	}
	if v.Keyspace == "" {
		return ErrValidation("Validate %s: view doesnt have keyspace specified", path)
	}
	if v.Base == "" {
		return ErrValidation("Validate %s: view doesnt have base table specified", path)
	}
	if v.Where == "" {
		return ErrValidation("Validate %s: view doesnt have where clause", path)
	}
	if v.Primary == nil || len(v.Primary.Partition) == 0 {
		return ErrValidation("Validate %s: view primary key doesnt exist", path)
	}
	return nil
}

func parserValidateType(t *yamlType, path string) error {
	if t.Name == "" {
		return ErrValidation("Validate %s: type doesnt have name specified", path)
	}
	if t.Keyspace == "" {
		return ErrValidation("Validate %s: type doesnt have keyspace specified", path)
	}
	if len(t.Fields) == 0 {
		return ErrValidation("Validate %s: type %s has no fields", path, t.Name)
	}
	return nil
}

func ParserGetValidateObject(path string, fc []byte, args interface{}) error {
	ext := filepath.Ext(path)
	if ext != ".yml" && ext != ".yaml" {
		return nil
	}
	ctx := args.(*ParseCtx)
	var obj struct {
		Table *yamlTable
		View  *yamlView
		Type  *yamlType
	}
	if err := yaml.Unmarshal(fc, &obj); err != nil {
		return fmt.Errorf("couldnt unmarshal %s %s", path, err.Error())
	}
	n := 0
	for _, set := range []bool{obj.Table != nil, obj.View != nil, obj.Type != nil} {
		if set {
			n++
		}
	}
	if n != 1 {
		return ErrValidation("couldnt validate %s, assert exactly one of table, view, type failed", path)
	}
	if obj.Table != nil {
		if err := parserValidateTable(obj.Table, path); err != nil {
			return err
		}
		obj.Table.path = path
		ctx.tables = append(ctx.tables, obj.Table)
		return nil
	}
	if obj.View != nil {
		if err := parserValidateView(obj.View, path); err != nil {
			return err
		}
		obj.View.path = path
		ctx.views = append(ctx.views, obj.View)
		return nil
	}
	if err := parserValidateType(obj.Type, path); err != nil {
		return err
	}
	d := UserTypeDescriptor{Name: obj.Type.Name}
	for _, f := range obj.Type.Fields {
		d.FieldNames = append(d.FieldNames, f.Name)
		d.FieldTypes = append(d.FieldTypes, f.Type)
	}
	ctx.types[obj.Type.Keyspace] = append(ctx.types[obj.Type.Keyspace], d)
	return nil
}

func (t *yamlTable) build(r *TypeResolver) (*TableDef, error) {
	cols := make(map[string]yamlField, len(t.Columns))
	for _, c := range t.Columns {
		cols[c.Name] = c
	}
	typed := func(name string) (ColumnDef, error) {
		c, ok := cols[name]
		if !ok {
			return ColumnDef{}, ErrValidation("Validate %s: key column %s is not declared", t.path, name)
		}
		ct, err := r.Resolve(c.Type)
		if err != nil {
			return ColumnDef{}, fmt.Errorf("%s: column %s: %w", t.path, name, err)
		}
		return ColumnDef{Name: name, Type: ct, Static: c.Static}, nil
	}

	inKey := make(map[string]struct{})
	var partition, clustering, regular []ColumnDef
	for _, n := range t.Primary.Partition {
		c, err := typed(n)
		if err != nil {
			return nil, err
		}
		inKey[n] = struct{}{}
		partition = append(partition, c)
	}
	for _, cc := range t.Primary.Clustering {
		c, err := typed(cc.Name)
		if err != nil {
			return nil, err
		}
		c.Order = cc.Order
		inKey[cc.Name] = struct{}{}
		clustering = append(clustering, c)
	}
	for _, yc := range t.Columns {
		if _, ok := inKey[yc.Name]; ok {
			continue
		}
		c, err := typed(yc.Name)
		if err != nil {
			return nil, err
		}
		regular = append(regular, c)
	}

	var indexes []IndexDef
	for _, yi := range t.Indexes {
		idx, err := NewIndexDef(yi.Name, yi.Target)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.path, err)
		}
		idx.ClassName = yi.Class
		indexes = append(indexes, idx)
	}
	return NewTableDef(t.Keyspace, t.Name, partition, clustering, regular, indexes)
}

func (v *yamlView) build(base *TableDef) (*TableDef, error) {
	typed := func(name string) (ColumnType, error) {
		c, err := base.ColumnByName(name)
		if err != nil {
			return ColumnType{}, ErrValidation("Validate %s: column %s is not in %s",
				v.path, name, base.QualifiedName())
		}
		return c.Type, nil
	}

	inKey := make(map[string]struct{})
	var partition, clustering, regular []ColumnDef
	for _, n := range v.Primary.Partition {
		ct, err := typed(n)
		if err != nil {
			return nil, err
		}
		inKey[n] = struct{}{}
		partition = append(partition, PartitionKeyColumn(n, ct))
	}
	for _, cc := range v.Primary.Clustering {
		ct, err := typed(cc.Name)
		if err != nil {
			return nil, err
		}
		inKey[cc.Name] = struct{}{}
		clustering = append(clustering, ClusteringColumn(cc.Name, ct, cc.Order))
	}
	selected := v.Columns
	if len(selected) == 0 {
		selected = base.ColumnNames()
	}
	for _, n := range selected {
		if _, ok := inKey[n]; ok {
			continue
		}
		ct, err := typed(n)
		if err != nil {
			return nil, err
		}
		regular = append(regular, RegularColumn(n, ct))
	}

	t, err := NewTableDef(v.Keyspace, v.Name, partition, clustering, regular, nil)
	if err != nil {
		return nil, err
	}
	t.IsView = true
	t.BaseTable = v.Base
	t.WhereClause = v.Where
	return t, nil
}

// ParserGetObjectsInDir reads every definition below dir.
func ParserGetObjectsInDir(fs afero.Fs, dir string) (*LocalDefs, error) {
	ctx := &ParseCtx{types: make(map[string][]UserTypeDescriptor)}
	if err := cmn.ParserIterateOverSource(fs, dir, ParserGetValidateObject, ctx); err != nil {
		return nil, err
	}
	return ctx.Build()
}

// Build resolves the collected definitions into model values.
func (ctx *ParseCtx) Build() (*LocalDefs, error) {
	resolvers := make(map[string]*TypeResolver)
	resolver := func(ks string) *TypeResolver {
		r, ok := resolvers[ks]
		if !ok {
			r = NewTypeResolver(ks, ctx.types[ks])
			resolvers[ks] = r
		}
		return r
	}

	defs := &LocalDefs{}
	for _, ks := range sortedKeys(ctx.types) {
		udts, err := resolver(ks).UserTypes()
		if err != nil {
			return nil, err
		}
		defs.Types = append(defs.Types, orderUserTypes(udts)...)
	}
	for _, yt := range ctx.tables {
		t, err := yt.build(resolver(yt.Keyspace))
		if err != nil {
			return nil, err
		}
		defs.Tables = append(defs.Tables, t)
	}
	sortTables(defs.Tables)

	for _, yv := range ctx.views {
		var base *TableDef
		for _, t := range defs.Tables {
			if t.Keyspace == yv.Keyspace && t.Name == yv.Base {
				base = t
				break
			}
		}
		if base == nil {
			return nil, ErrNotFound("table", yv.Keyspace+"."+yv.Base)
		}
		v, err := yv.build(base)
		if err != nil {
			return nil, err
		}
		defs.Views = append(defs.Views, v)
	}
	sortTables(defs.Views)
	return defs, nil
}

func sortTables(ts []*TableDef) {
	sort.Slice(ts, func(i, j int) bool {
		if ts[i].Keyspace != ts[j].Keyspace {
			return ts[i].Keyspace < ts[j].Keyspace
		}
		return ts[i].Name < ts[j].Name
	})
}

// orderUserTypes lists types so that every type follows the types it uses.
func orderUserTypes(udts map[string]*UserDefinedType) []*UserDefinedType {
	ret := make([]*UserDefinedType, 0, len(udts))
	visited := make(map[string]bool, len(udts))
	var visit func(u *UserDefinedType)
	var walk func(t ColumnType)
	walk = func(t ColumnType) {
		switch t.Kind {
		case KindList, KindSet:
			walk(*t.Elem)
		case KindMap:
			walk(*t.Key)
			walk(*t.Value)
		case KindTuple:
			for _, e := range t.Elems {
				walk(e)
			}
		case KindUDT:
			if dep, ok := udts[t.UDT.Name]; ok {
				visit(dep)
			}
		}
	}
	visit = func(u *UserDefinedType) {
		if visited[u.Name] {
			return
		}
		visited[u.Name] = true
		for _, ft := range u.FieldTypes {
			walk(ft)
		}
		ret = append(ret, u)
	}
	for _, n := range sortedKeys(udts) {
		visit(udts[n])
	}
	return ret
}
