package raverify

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/robfig/cron/v3"
)

// RootStoreReloader re-reads the configured root CA PEM from disk on a
// schedule and builds a fresh, independently immutable Verifier from it,
// so a long-lived process can pick up a rotated attestation CA without a
// restart. Each Verifier it ever hands out stays exactly as immutable as
// §5 requires — the reloader only changes which instance Current()
// returns, never an existing instance's fields.
type RootStoreReloader struct {
	path    string
	rest    Config // every Config field except SigningCACertPEM
	current atomic.Pointer[Verifier]
	cron    *cron.Cron
}

// NewRootStoreReloader loads path once synchronously, builds the initial
// Verifier, and returns a reloader ready to be scheduled. rest carries
// every Config field other than SigningCACertPEM, which this reloader
// owns.
func NewRootStoreReloader(path string, rest Config) (*RootStoreReloader, error) {
	r := &RootStoreReloader{path: path, rest: rest, cron: cron.New()}
	if err := r.reload(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *RootStoreReloader) reload() error {
	pemBytes, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("read root CA cert %s: %w", r.path, err)
	}
	cfg := r.rest
	cfg.SigningCACertPEM = pemBytes
	v, err := New(cfg)
	if err != nil {
		return err
	}
	r.current.Store(v)
	return nil
}

// Current returns the most recently built Verifier.
func (r *RootStoreReloader) Current() *Verifier {
	return r.current.Load()
}

// Start schedules periodic reloads using a standard 5-field cron spec
// (e.g. "0 */6 * * *" for every six hours) and begins running it. Reload
// failures are reported through onError rather than panicking the
// scheduler; Current() keeps returning the previously built Verifier.
func (r *RootStoreReloader) Start(spec string, onError func(error)) error {
	_, err := r.cron.AddFunc(spec, func() {
		if err := r.reload(); err != nil && onError != nil {
			onError(err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule root store reload: %w", err)
	}
	r.cron.Start()
	return nil
}

// Stop halts the scheduler, waiting for any in-flight reload to finish.
func (r *RootStoreReloader) Stop() {
	<-r.cron.Stop().Done()
}
