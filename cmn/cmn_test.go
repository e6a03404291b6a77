package cmn

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	log, err := NewLogger(false, "warn")
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))

	log, err = NewLogger(true, "")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	_, err = NewLogger(false, "loud")
	assert.Error(t, err)
}

func TestParserIterateOverSource(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/b.yml", []byte("b"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/src/a/c.yml", []byte("c"), 0o644))

	var seen []string
	cb := func(path string, fc []byte, args interface{}) error {
		seen = append(seen, path+"="+string(fc)+args.(string))
		return nil
	}
	require.NoError(t, ParserIterateOverSource(fs, "/src", cb, "!"))
	assert.Equal(t, []string{"/src/a/c.yml=c!", "/src/b.yml=b!"}, seen)

	stop := errors.New("stop")
	err := ParserIterateOverSource(fs, "/src", func(string, []byte, interface{}) error { return stop }, nil)
	assert.ErrorIs(t, err, stop)

	require.NoError(t, afero.WriteFile(fs, "/src/empty.yml", nil, 0o644))
	assert.Error(t, ParserIterateOverSource(fs, "/src", cb, "!"))
}

func TestCndPrint(t *testing.T) {
	var out bytes.Buffer
	stdout := Stdout
	Stdout = &out
	defer func() { Stdout = stdout }()
	CndPrintfln(true, PrintflnSuccess, "  ", "done %d", 1)
	assert.Equal(t, "done 1\n", out.String())

	out.Reset()
	CndPrintfln(false, PrintflnNotify, "", "x")
	assert.Equal(t, ForeBlue.String()+MediumBulletPoint+AttrOff.String()+" x\n", out.String())
}

func TestAnsiFlag(t *testing.T) {
	assert.Equal(t, "\x1b[31m", ForeRed.String())
	assert.Equal(t, "\x1b[0m", AttrOff.String())
}
