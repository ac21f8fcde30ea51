// Package affinity pins the current process to a single CPU core, the same
// precaution the reference benchmark driver takes before timing anything:
// scheduler migrations between cores add noise no amount of averaging
// removes cleanly.
package affinity

import (
	"fmt"

	apperrors "github.com/rsavio/attrfilter/pkg/errors"
)

// Pin attempts to restrict the calling process to the given CPU core.
// cpu < 0 means "do not pin" and Pin is a no-op. Platforms without a pinning
// implementation return an error wrapping ErrResource.
func Pin(cpu int) error {
	if cpu < 0 {
		return nil
	}
	if err := pin(cpu); err != nil {
		return fmt.Errorf("%w: pinning to cpu %d: %v", apperrors.ErrResource, cpu, err)
	}
	return nil
}
