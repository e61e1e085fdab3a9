// Package monitoring abstracts error reporting so the engine does not depend
// on a concrete backend.
package monitoring

import "time"

// Monitor receives unexpected errors for out-of-band reporting. Data-quality
// conditions (catalog gaps, unplannable orders, capacity rejections) are
// results, not exceptions, and are never sent here.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Flush(timeout time.Duration)
}

// NopMonitor discards everything.
type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Flush(time.Duration)                       {}
