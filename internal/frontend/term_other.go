//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package frontend

import "errors"

func enterRawMode(_ int) (func() error, error) {
	return nil, errors.New("raw terminal mode is not supported on this platform")
}
