//go:build !linux

package affinity

import "errors"

func pin(cpu int) error {
	return errors.New("cpu pinning is not supported on this platform")
}
