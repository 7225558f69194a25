//go:build !linux

package probe

import (
	"errors"
	"net"
)

func bindToInterface(_ *net.Dialer, _ string) error {
	return errors.New("interface binding is only supported on linux")
}
