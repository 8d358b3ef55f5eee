package clipboard

import (
	"errors"

	"github.com/atotto/clipboard"

	"github.com/accrava/secretsweep/internal/logging"
)

var ErrUnsupported = errors.New("clipboard not available")

// write and unsupported are swapped in tests.
var (
	write       = clipboard.WriteAll
	unsupported = func() bool { return clipboard.Unsupported }
)

// CopyAsync copies text to the system clipboard on a detached goroutine.
// The outcome is logged; the returned channel receives it once and may be
// ignored.
func CopyAsync(text string) <-chan error {
	done := make(chan error, 1)
	go func() {
		err := Copy(text)
		if err != nil {
			logging.Logger.Warnw("copy report to clipboard failed", "error", err)
		} else {
			logging.Logger.Infow("report copied to clipboard")
		}
		done <- err
	}()
	return done
}

// Copy writes text to the clipboard synchronously.
func Copy(text string) error {
	if unsupported() {
		return ErrUnsupported
	}
	return write(text)
}
