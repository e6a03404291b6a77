package cass

import (
	"bytes"
	"context"
	"testing"

	"github.com/kzaag/cqlschema/cmn"
	"github.com/kzaag/cqlschema/target"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

func testTargetCtx(t *testing.T, fs afero.Fs) *target.Ctx {
	t.Helper()
	l, err := NewLoader(newTestCatalog())
	require.NoError(t, err)
	ctx := TargetCtxNew(zap.NewNop(), fs)
	ctx.DbNew = func(*target.Target) (interface{}, error) {
		return &dbCtx{loader: l, fs: fs}, nil
	}
	ctx.DbClose = func(interface{}) {}
	return ctx
}

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var out, errOut bytes.Buffer
	stdout, stderr := cmn.Stdout, cmn.Stderr
	cmn.Stdout, cmn.Stderr = &out, &errOut
	t.Cleanup(func() { cmn.Stdout, cmn.Stderr = stdout, stderr })
	return &out
}

func TestExecSchemaStep(t *testing.T) {
	out := captureStdout(t)
	ctx := testTargetCtx(t, afero.NewMemMapFs())
	tgt := &target.Target{
		Name:     "local",
		Keyspace: "app",
		Exec:     []target.Exec{{Type: target.ExecSchema, Args: []string{"app.wide"}}},
	}
	args := target.NewArgs()
	args.Raw = true
	require.NoError(t, ctx.ExecTarget(context.Background(), "/", tgt, args))

	var s Schema
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &s))
	assert.Equal(t, []string{"app"}, s.KeyspaceNames())
	assert.Equal(t, []string{"wide"}, s.Keyspaces["app"].TableNames())
}

func TestExecMergeStep(t *testing.T) {
	out := captureStdout(t)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cfg/defs/events.yml", []byte(eventsYAML), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/cfg/defs/fresh.yml", []byte(`
table:
  keyspace: newks
  name: fresh
  columns:
    - name: id
      type: int
  primary:
    partition: [id]
`), 0o644))

	ctx := testTargetCtx(t, fs)
	tgt := &target.Target{
		Name: "local",
		Exec: []target.Exec{{Type: target.ExecMerge, Args: []string{"defs"}}},
	}
	args := target.NewArgs()
	args.Raw = true
	require.NoError(t, ctx.ExecTarget(context.Background(), "/cfg", tgt, args))

	// audit.events exists with an extra clustering column, so it gets recreated
	want := "drop table audit.events;\n" +
		"create table audit.events (\n\tday date,\n\tpayload blob,\n\tprimary key((day))\n);\n" +
		"create table newks.fresh (\n\tid int,\n\tprimary key((id))\n);\n"
	assert.Equal(t, want, out.String())
}

func TestExecCheckStep(t *testing.T) {
	captureStdout(t)
	ctx := testTargetCtx(t, afero.NewMemMapFs())
	args := target.NewArgs()
	args.Raw = true

	ok := &target.Target{
		Name:     "local",
		Keyspace: "app",
		Exec:     []target.Exec{{Type: target.ExecCheck, Args: []string{"users:id,email", "app.wide:k1,d16_address"}}},
	}
	require.NoError(t, ctx.ExecTarget(context.Background(), "/", ok, args))

	missing := &target.Target{
		Name:     "local",
		Keyspace: "app",
		Exec:     []target.Exec{{Type: target.ExecCheck, Args: []string{"users:id,nope"}}},
	}
	assert.Error(t, ctx.ExecTarget(context.Background(), "/", missing, args))

	missing.Exec[0].Err = target.ErrWarn
	assert.NoError(t, ctx.ExecTarget(context.Background(), "/", missing, args))
}

func TestGetMissingColumns(t *testing.T) {
	l, err := NewLoader(newTestCatalog())
	require.NoError(t, err)
	db := &dbCtx{loader: l}

	got, err := getMissingColumns(context.Background(), db, target.ColumnCheck{
		Keyspace: "app", Table: "wide", Columns: []string{"k1", "unknown_a", "c2", "unknown_b"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"unknown_a", "unknown_b"}, got)

	_, err = getMissingColumns(context.Background(), db, target.ColumnCheck{
		Keyspace: "app", Table: "nope", Columns: []string{"a"},
	})
	assert.True(t, IsNotFound(err))
}

const remoteUsersYAML = `
table:
  keyspace: app
  name: users
  columns:
    - name: id
      type: uuid
    - name: email
      type: text
    - name: home
      type: frozen<address>
    - name: version
      type: int
      static: true
  primary:
    partition: [id]
`

const remoteUsersByEmailYAML = `
view:
  keyspace: app
  name: users_by_email
  base: users
  columns: [email, id]
  where: email IS NOT NULL AND id IS NOT NULL
  primary:
    partition: [email]
    clustering:
      - name: id
`

func TestGetMergeScriptViews(t *testing.T) {
	fs := writeFiles(t, map[string]string{
		"/defs/addr.yml":     addressYAML,
		"/defs/users.yml":    remoteUsersYAML,
		"/defs/by_email.yml": remoteUsersByEmailYAML,
	})
	l, err := NewLoader(newTestCatalog())
	require.NoError(t, err)
	db := &dbCtx{loader: l, fs: fs}

	script, err := getMergeScript(context.Background(), db, &target.Target{}, []string{"/defs"})
	require.NoError(t, err)
	assert.Equal(t, "", script)

	require.NoError(t, fs.Remove("/defs/by_email.yml"))
	script, err = getMergeScript(context.Background(), db, &target.Target{}, []string{"/defs"})
	require.NoError(t, err)
	assert.Equal(t, "drop materialized view app.users_by_email;\n", script)
}
