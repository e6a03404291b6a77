package cass

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usersYAML = `
table:
  keyspace: app
  name: users
  columns:
    - name: id
      type: uuid
    - name: ts
      type: timestamp
    - name: email
      type: text
    - name: home
      type: frozen<address>
    - name: v
      type: int
      static: true
  primary:
    partition: [id]
    clustering:
      - name: ts
        order: desc
  indexes:
    - name: users_email
      target: email
    - name: users_v
      target: v
      class: org.apache.cassandra.index.sasi.SASIIndex
`

const addressYAML = `
type:
  keyspace: app
  name: address
  fields:
    - name: street
      type: varchar
    - name: city
      type: varchar
    - name: zip
      type: int
`

const contactYAML = `
type:
  keyspace: app
  name: a_contact
  fields:
    - name: addresses
      type: list<frozen<address>>
`

const eventsYAML = `
table:
  keyspace: audit
  name: events
  columns:
    - name: day
      type: date
    - name: payload
      type: blob
  primary:
    partition: [day]
`

const usersByEmailYAML = `
view:
  keyspace: app
  name: users_by_email
  base: users
  columns: [email, id, ts, home]
  where: email is not null and id is not null and ts is not null
  primary:
    partition: [email]
    clustering:
      - name: id
      - name: ts
        order: desc
`

func writeFiles(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for p, c := range files {
		require.NoError(t, afero.WriteFile(fs, p, []byte(c), 0o644))
	}
	return fs
}

func TestParserGetObjectsInDir(t *testing.T) {
	fs := writeFiles(t, map[string]string{
		"/defs/users.yml":         usersYAML,
		"/defs/types/addr.yaml":   addressYAML,
		"/defs/types/contact.yml": contactYAML,
		"/defs/audit/events.yml":  eventsYAML,
		"/defs/README.md":         "not a definition",
	})

	defs, err := ParserGetObjectsInDir(fs, "/defs")
	require.NoError(t, err)

	require.Len(t, defs.Types, 2)
	// dependencies first
	assert.Equal(t, "address", defs.Types[0].Name)
	assert.Equal(t, "a_contact", defs.Types[1].Name)

	require.Len(t, defs.Tables, 2)
	assert.Equal(t, "audit", defs.Tables[1].Keyspace)
	users := defs.Tables[0]
	assert.Equal(t, "users", users.Name)
	assert.Equal(t, []string{"id", "ts", "email", "home", "v"}, users.ColumnNames())
	assert.Equal(t, []string{"id", "ts"}, names(users.PrimaryKey()))

	ts, err := users.ColumnByName("ts")
	require.NoError(t, err)
	assert.Equal(t, OrderDesc, ts.Order)

	v, err := users.ColumnByName("v")
	require.NoError(t, err)
	assert.True(t, v.Static)

	home, err := users.ColumnByName("home")
	require.NoError(t, err)
	assert.True(t, home.Type.Equal(testAddress("app").Type()))

	sasi, err := users.IndexByName("users_v")
	require.NoError(t, err)
	assert.True(t, sasi.IsSASI())
	assert.Equal(t, []string{"email", "v"}, names(users.IndexedColumns()))
}

func TestParserViews(t *testing.T) {
	fs := writeFiles(t, map[string]string{
		"/defs/users.yml":    usersYAML,
		"/defs/addr.yml":     addressYAML,
		"/defs/by_email.yml": usersByEmailYAML,
	})
	defs, err := ParserGetObjectsInDir(fs, "/defs")
	require.NoError(t, err)
	require.Len(t, defs.Tables, 1)
	require.Len(t, defs.Views, 1)

	v := defs.Views[0]
	assert.True(t, v.IsView)
	assert.Equal(t, "users", v.BaseTable)
	assert.Equal(t, "email is not null and id is not null and ts is not null", v.WhereClause)
	assert.Equal(t, []string{"email", "id", "ts", "home"}, v.ColumnNames())
	assert.Equal(t, []string{"email", "id", "ts"}, names(v.PrimaryKey()))
	ts, err := v.ColumnByName("ts")
	require.NoError(t, err)
	assert.Equal(t, OrderDesc, ts.Order)
	home, err := v.ColumnByName("home")
	require.NoError(t, err)
	assert.True(t, home.Type.Equal(testAddress("app").Type()))
	assert.False(t, home.Static)
}

func TestParserViewSelectsAllColumns(t *testing.T) {
	all := strings.Replace(usersByEmailYAML, "  columns: [email, id, ts, home]\n", "", 1)
	fs := writeFiles(t, map[string]string{
		"/defs/users.yml":    usersYAML,
		"/defs/addr.yml":     addressYAML,
		"/defs/by_email.yml": all,
	})
	defs, err := ParserGetObjectsInDir(fs, "/defs")
	require.NoError(t, err)
	require.Len(t, defs.Views, 1)
	assert.Equal(t, []string{"email", "id", "ts", "home", "v"}, defs.Views[0].ColumnNames())
}

func TestParserViewUnknownColumn(t *testing.T) {
	fs := writeFiles(t, map[string]string{
		"/defs/users.yml":    usersYAML,
		"/defs/addr.yml":     addressYAML,
		"/defs/by_email.yml": strings.Replace(usersByEmailYAML, "[email, id, ts, home]", "[email, id, ts, nick]", 1),
	})
	_, err := ParserGetObjectsInDir(fs, "/defs")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestParserSingleFile(t *testing.T) {
	fs := writeFiles(t, map[string]string{"/events.yml": eventsYAML})
	defs, err := ParserGetObjectsInDir(fs, "/events.yml")
	require.NoError(t, err)
	require.Len(t, defs.Tables, 1)
	assert.Empty(t, defs.Types)
}

func TestParserErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(error) bool
	}{
		{"table and type", usersYAML + addressYAML, IsValidation},
		{"neither", "foo: bar\n", IsValidation},
		{"no primary", "table:\n  keyspace: ks\n  name: t\n  columns:\n    - name: a\n      type: int\n", IsValidation},
		{"no keyspace", "table:\n  name: t\n", IsValidation},
		{"untyped column", "table:\n  keyspace: ks\n  name: t\n  columns:\n    - name: a\n  primary:\n    partition: [a]\n", IsValidation},
		{"undeclared key", "table:\n  keyspace: ks\n  name: t\n  primary:\n    partition: [a]\n", IsValidation},
		{"empty type", "type:\n  keyspace: ks\n  name: t\n", IsValidation},
		{"unknown type", "table:\n  keyspace: ks\n  name: t\n  columns:\n    - name: a\n      type: geometry\n  primary:\n    partition: [a]\n", IsUnsupportedType},
		{"view without where", strings.Replace(usersByEmailYAML, "  where:", "  filter:", 1), IsValidation},
		{"view and table", usersYAML + usersByEmailYAML, IsValidation},
		{"view without base", usersByEmailYAML, IsNotFound},
		{"bad index", "table:\n  keyspace: ks\n  name: t\n  columns:\n    - name: a\n      type: int\n  primary:\n    partition: [a]\n  indexes:\n    - name: i\n      target: b\n", IsNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := writeFiles(t, map[string]string{"/defs/x.yml": tt.content})
			_, err := ParserGetObjectsInDir(fs, "/defs")
			require.Error(t, err)
			assert.True(t, tt.check(err), err.Error())
		})
	}
}

func TestParserIOErrors(t *testing.T) {
	fs := writeFiles(t, map[string]string{"/defs/empty.yml": ""})
	_, err := ParserGetObjectsInDir(fs, "/defs")
	assert.Error(t, err)

	_, err = ParserGetObjectsInDir(fs, "/missing")
	assert.Error(t, err)

	fs = writeFiles(t, map[string]string{"/defs/bad.yml": "table: [\n"})
	_, err = ParserGetObjectsInDir(fs, "/defs")
	assert.Error(t, err)
}
