package probe

import (
	"context"

	"github.com/hamed0406/uptimemonitor/internal/domain"
)

// Checker performs a single availability check for a target URL.
type Checker interface {
	Check(ctx context.Context, target string) domain.ProbeResult
}
