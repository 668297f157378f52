package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/usermgmt/admin-console/internal/core/domain"
)

// errReported marks a failure the user has already seen as a notification.
var errReported = errors.New("reported")

// reported wraps err so Execute does not print it a second time.
func reported(err error) error {
	return fmt.Errorf("%w: %w", errReported, err)
}

// printer writes notifications as "[TYPE] message" lines.
type printer struct {
	mu  sync.Mutex
	out io.Writer
}

func newPrinter(out io.Writer) *printer {
	return &printer{out: out}
}

func (p *printer) Notify(n domain.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "[%s] %s\n", strings.ToUpper(string(n.Type)), n.Message)
}
