package cmn

import (
	"fmt"
	"path"

	"github.com/spf13/afero"
)

// ParserIterateOverSource calls cb for every file below sourcePath.
func ParserIterateOverSource(
	fs afero.Fs,
	sourcePath string,
	cb func(path string, fc []byte, args interface{}) error,
	args interface{}) error {

	fi, err := fs.Stat(sourcePath)
	if err != nil {
		return err
	}

	if fi.IsDir() {
		di, err := afero.ReadDir(fs, sourcePath)
		if err != nil {
			return err
		}
		for _, fi = range di {
			if err = ParserIterateOverSource(
				fs,
				path.Join(sourcePath, fi.Name()),
				cb, args); err != nil {
				return err
			}
		}
		return nil
	}

	fc, err := afero.ReadFile(fs, sourcePath)
	if err != nil {
		return err
	}
	if len(fc) == 0 {
		return fmt.Errorf("%s - empty file content", sourcePath)
	}
	return cb(sourcePath, fc, args)
}
