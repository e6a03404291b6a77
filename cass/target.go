package cass

import (
	"context"
	"time"

	"github.com/gocql/gocql"
	"github.com/kzaag/cqlschema/target"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

type dbCtx struct {
	sess   *gocql.Session
	loader *Loader
	fs     afero.Fs
}

type targetDriver struct {
	log *zap.Logger
	fs  afero.Fs
}

func (d *targetDriver) dbNew(t *target.Target) (interface{}, error) {
	var sess *gocql.Session
	var err error
	var timeout, retries, interval, concurrency int = 10, 0, 2, defaultConcurrency
	for name, v := range map[string]*int{
		"timeout":     &timeout,
		"retries":     &retries,
		"interval":    &interval,
		"concurrency": &concurrency,
	} {
		if err = t.GetInt(name, v); err != nil {
			return nil, err
		}
	}
	cluster := gocql.NewCluster(t.Server...)
	cluster.Timeout = time.Second * time.Duration(timeout)
	cluster.Keyspace = t.Keyspace
	if t.User != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: t.User,
			Password: t.Password,
		}
	}
	// first attempt plus retries
	for attempt := 0; attempt <= retries; attempt++ {
		if sess, err = cluster.CreateSession(); err == nil {
			break
		}
		d.log.Warn("couldnt connect",
			zap.String("target", t.Name),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
		if attempt < retries {
			time.Sleep(time.Second * time.Duration(interval))
		}
	}
	if err != nil {
		return nil, err
	}
	loader, err := NewLoader(NewRemoteCatalog(sess),
		WithLogger(d.log.With(zap.String("target", t.Name))),
		WithConcurrency(concurrency))
	if err != nil {
		sess.Close()
		return nil, err
	}
	return &dbCtx{sess: sess, loader: loader, fs: d.fs}, nil
}

func dbClose(db interface{}) {
	db.(*dbCtx).sess.Close()
}

func getSchema(ctx context.Context, db interface{}, keyspace, table string) (interface{}, error) {
	return db.(*dbCtx).loader.Schema(ctx, keyspace, table)
}

func getMergeScript(
	ctx context.Context, db interface{}, t *target.Target, dirs []string,
) (string, error) {
	dc := db.(*dbCtx)
	local := &LocalDefs{}
	for _, dir := range dirs {
		defs, err := ParserGetObjectsInDir(dc.fs, dir)
		if err != nil {
			return "", err
		}
		local.Types = append(local.Types, defs.Types...)
		local.Tables = append(local.Tables, defs.Tables...)
		local.Views = append(local.Views, defs.Views...)
	}
	remote, err := remoteForLocal(ctx, dc.loader, local)
	if err != nil {
		return "", err
	}
	return Merge(local, remote), nil
}

// remoteForLocal loads only keyspaces referenced by local definitions.
func remoteForLocal(ctx context.Context, l *Loader, local *LocalDefs) (*Schema, error) {
	wanted := make(map[string]struct{})
	for _, u := range local.Types {
		wanted[u.Keyspace] = struct{}{}
	}
	for _, t := range local.Tables {
		wanted[t.Keyspace] = struct{}{}
	}
	remote := NewSchema()
	for _, ks := range sortedKeys(wanted) {
		s, err := l.Schema(ctx, ks, "")
		if IsNotFound(err) {
			// keyspaces are not managed here, everything in it gets created
			continue
		}
		if err != nil {
			return nil, err
		}
		remote.Keyspaces[ks] = s.Keyspaces[ks]
	}
	return remote, nil
}

func getMissingColumns(ctx context.Context, db interface{}, check target.ColumnCheck) ([]string, error) {
	t, err := db.(*dbCtx).loader.Table(ctx, check.Keyspace, check.Table)
	if err != nil {
		return nil, err
	}
	missing := t.MissingColumns(check.Columns)
	ret := make([]string, len(missing))
	for i := range missing {
		ret[i] = missing[i].Name
	}
	return ret, nil
}

func TargetCtxNew(log *zap.Logger, fs afero.Fs) *target.Ctx {
	d := &targetDriver{log: log, fs: fs}
	return &target.Ctx{
		DbNew:             d.dbNew,
		DbClose:           dbClose,
		GetSchema:         getSchema,
		GetMergeScript:    getMergeScript,
		GetMissingColumns: getMissingColumns,
	}
}
