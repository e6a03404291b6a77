package cass

import (
	"context"
	"fmt"
	"sort"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultConcurrency   = 4
	defaultTypeCacheSize = 512
)

/*
	Loader builds model values from a Catalog.
	Resolved type descriptors are cached for the lifetime of the loader,
	so a loader should not outlive the catalog snapshot it reads.
*/
type Loader struct {
	cat         Catalog
	log         *zap.Logger
	concurrency int
	cacheSize   int
	types       *lru.Cache
}

type LoaderOption func(*Loader)

func WithLogger(log *zap.Logger) LoaderOption {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

// WithConcurrency bounds the number of tables fetched at once.
func WithConcurrency(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

func WithTypeCacheSize(n int) LoaderOption {
	return func(l *Loader) {
		l.cacheSize = n
	}
}

func NewLoader(cat Catalog, opts ...LoaderOption) (*Loader, error) {
	l := &Loader{
		cat:         cat,
		log:         zap.NewNop(),
		concurrency: defaultConcurrency,
		cacheSize:   defaultTypeCacheSize,
	}
	for _, o := range opts {
		o(l)
	}
	var err error
	if l.types, err = lru.New(l.cacheSize); err != nil {
		return nil, fmt.Errorf("type cache: %w", err)
	}
	return l, nil
}

// SchemaFromCatalog loads a schema with a default loader. See Loader.Schema.
func SchemaFromCatalog(ctx context.Context, cat Catalog, keyspace, table string) (*Schema, error) {
	l, err := NewLoader(cat)
	if err != nil {
		return nil, err
	}
	return l.Schema(ctx, keyspace, table)
}

// TableFromCatalog loads one table with a default loader. See Loader.Table.
func TableFromCatalog(ctx context.Context, cat Catalog, keyspace, table string) (*TableDef, error) {
	l, err := NewLoader(cat)
	if err != nil {
		return nil, err
	}
	return l.Table(ctx, keyspace, table)
}

/*
	Schema loads keyspaces with their tables, views and user types.
	Empty filters mean "everything".
	A table filter is meant to be used together with a keyspace filter;
	alone it is applied in every keyspace.
	When both filters are set and the table is absent, NotFoundError is returned.
*/
func (l *Loader) Schema(ctx context.Context, keyspace, table string) (*Schema, error) {
	var names []string
	if keyspace != "" {
		ok, err := l.keyspaceExists(ctx, keyspace)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNotFound("keyspace", keyspace)
		}
		names = []string{keyspace}
	} else {
		var err error
		if names, err = l.cat.ListKeyspaces(ctx); err != nil {
			return nil, err
		}
		if table != "" {
			l.log.Warn("table filter without keyspace filter, applying it to every keyspace",
				zap.String("table", table))
		}
	}

	s := NewSchema()
	for _, ks := range names {
		k, err := l.keyspace(ctx, ks, table)
		if err != nil {
			return nil, err
		}
		if keyspace != "" && table != "" && len(k.Tables) == 0 {
			return nil, ErrNotFound("table", keyspace+"."+table)
		}
		s.Keyspaces[ks] = k
	}
	return s, nil
}

// Table loads one table or materialized view.
func (l *Loader) Table(ctx context.Context, keyspace, table string) (*TableDef, error) {
	tables, err := l.cat.ListTables(ctx, keyspace)
	if err != nil {
		return nil, err
	}
	var view *ViewDescriptor
	if !contains(tables, table) {
		views, err := l.cat.ListViews(ctx, keyspace)
		if err != nil {
			return nil, err
		}
		for i := range views {
			if views[i].Name == table {
				view = &views[i]
				break
			}
		}
		if view == nil {
			ok, err := l.keyspaceExists(ctx, keyspace)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, ErrNotFound("keyspace", keyspace)
			}
			return nil, ErrNotFound("table", keyspace+"."+table)
		}
	}
	r, err := l.resolver(ctx, keyspace)
	if err != nil {
		return nil, err
	}
	return l.table(ctx, r, keyspace, table, view)
}

func (l *Loader) keyspaceExists(ctx context.Context, keyspace string) (bool, error) {
	names, err := l.cat.ListKeyspaces(ctx)
	if err != nil {
		return false, err
	}
	return contains(names, keyspace), nil
}

func (l *Loader) resolver(ctx context.Context, keyspace string) (*TypeResolver, error) {
	udts, err := l.cat.ListUserTypes(ctx, keyspace)
	if err != nil {
		return nil, err
	}
	return NewTypeResolver(keyspace, udts), nil
}

func (l *Loader) keyspace(ctx context.Context, name, table string) (*KeyspaceDef, error) {
	l.log.Debug("loading keyspace", zap.String("keyspace", name))

	r, err := l.resolver(ctx, name)
	if err != nil {
		return nil, err
	}
	userTypes, err := r.UserTypes()
	if err != nil {
		return nil, err
	}
	tables, err := l.cat.ListTables(ctx, name)
	if err != nil {
		return nil, err
	}
	views, err := l.cat.ListViews(ctx, name)
	if err != nil {
		return nil, err
	}

	type job struct {
		name string
		view *ViewDescriptor
	}
	jobs := make([]job, 0, len(tables)+len(views))
	for _, tn := range tables {
		if table == "" || tn == table {
			jobs = append(jobs, job{name: tn})
		}
	}
	for i := range views {
		if table == "" || views[i].Name == table {
			jobs = append(jobs, job{name: views[i].Name, view: &views[i]})
		}
	}

	results := make([]*TableDef, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i := range jobs {
		i := i
		g.Go(func() error {
			t, err := l.table(gctx, r, name, jobs[i].name, jobs[i].view)
			results[i] = t
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	udtList := make([]*UserDefinedType, 0, len(userTypes))
	for _, n := range sortedKeys(userTypes) {
		udtList = append(udtList, userTypes[n])
	}
	return NewKeyspaceDef(name, results, udtList), nil
}

func (l *Loader) resolveType(r *TypeResolver, keyspace, descriptor string) (ColumnType, error) {
	key := keyspace + "\x00" + descriptor
	if v, ok := l.types.Get(key); ok {
		return v.(ColumnType), nil
	}
	t, err := r.Resolve(descriptor)
	if err != nil {
		return ColumnType{}, err
	}
	l.types.Add(key, t)
	return t, nil
}

func (l *Loader) table(
	ctx context.Context,
	r *TypeResolver,
	keyspace, name string,
	view *ViewDescriptor,
) (*TableDef, error) {
	cols, err := l.cat.ListColumns(ctx, keyspace, name)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		// dropped between listing and fetching
		return nil, ErrNotFound("table", keyspace+"."+name)
	}

	var pk, ck []ColumnDescriptor
	var regular []ColumnDef
	for _, c := range cols {
		switch c.Kind {
		case ColumnKindPartitionKey:
			pk = append(pk, c)
		case ColumnKindClustering:
			ck = append(ck, c)
		case ColumnKindRegular, ColumnKindStatic:
			t, err := l.resolveType(r, keyspace, c.Type)
			if err != nil {
				return nil, err
			}
			if c.Kind == ColumnKindStatic {
				regular = append(regular, StaticColumn(c.Name, t))
			} else {
				regular = append(regular, RegularColumn(c.Name, t))
			}
		default:
			return nil, ErrValidation("table %s.%s: column %s has unknown kind %q",
				keyspace, name, c.Name, c.Kind)
		}
	}

	sort.SliceStable(pk, func(i, j int) bool { return pk[i].Position < pk[j].Position })
	sort.SliceStable(ck, func(i, j int) bool { return ck[i].Position < ck[j].Position })

	partition := make([]ColumnDef, len(pk))
	for i, c := range pk {
		t, err := l.resolveType(r, keyspace, c.Type)
		if err != nil {
			return nil, err
		}
		partition[i] = PartitionKeyColumn(c.Name, t)
	}
	clustering := make([]ColumnDef, len(ck))
	for i, c := range ck {
		t, err := l.resolveType(r, keyspace, c.Type)
		if err != nil {
			return nil, err
		}
		order := OrderAsc
		if c.ClusteringOrder == OrderDesc {
			order = OrderDesc
		}
		clustering[i] = ClusteringColumn(c.Name, t, order)
	}

	var indexes []IndexDef
	if view == nil {
		raw, err := l.cat.ListIndexes(ctx, keyspace, name)
		if err != nil {
			return nil, err
		}
		for _, d := range raw {
			idx, err := NewIndexDef(d.Name, d.Options["target"])
			if err != nil {
				return nil, ErrValidation("index %s.%s: %v", keyspace, d.Name, err)
			}
			idx.ClassName = d.Options["class_name"]
			indexes = append(indexes, idx)
		}
	}

	t, err := NewTableDef(keyspace, name, partition, clustering, regular, indexes)
	if err != nil {
		return nil, err
	}
	if view != nil {
		t.IsView = true
		t.BaseTable = view.BaseTable
		t.WhereClause = view.WhereClause
	}
	l.log.Debug("loaded table",
		zap.String("keyspace", keyspace),
		zap.String("table", name),
		zap.Int("columns", len(t.Columns)),
		zap.Int("indexes", len(t.Indexes)),
		zap.Bool("view", t.IsView))
	return t, nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
