package remotelog

import (
	"io/fs"
	"os"
	"path/filepath"
)

// FindConfig locates filename next to the executable, in the working
// directory, then in /etc/remotelog. It returns fs.ErrNotExist if none has it.
func FindConfig(filename string) (string, error) {
	if exe, err := os.Executable(); err == nil {
		p := filepath.Join(filepath.Dir(exe), filename)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, filename)
		if _, err = os.Stat(p); err == nil {
			return p, nil
		}
	}
	p := filepath.Join("/etc/remotelog", filename)
	if _, err := os.Stat(p); err == nil {
		return p, nil
	}

	return "", fs.ErrNotExist
}
