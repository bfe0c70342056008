// SPDX-License-Identifier: Apache-2.0

package profiling

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"path/filepath"
	"runtime"
	rpprof "runtime/pprof"
	"time"
)

// Config of a profiling session. Profiles are written to Dir, the working
// directory by default. The pprof endpoints are only served when
// ServerAddress is set.
type Config struct {
	Dir           string
	ServerAddress string
}

const (
	cpuProfileFile    = "cpu.prof"
	memoryProfileFile = "mem.prof"
	shutdownTimeout   = 5 * time.Second
)

// Session records a CPU profile from Start until Stop, and writes an
// allocation profile on Stop.
type Session struct {
	dir     string
	cpuFile *os.File
	server  *http.Server
}

func Start(cfg Config) (*Session, error) {
	s := &Session{dir: cfg.Dir}

	cpuFile, err := os.Create(filepath.Join(cfg.Dir, cpuProfileFile))
	if err != nil {
		return nil, fmt.Errorf("creating CPU profile file: %w", err)
	}
	if err := rpprof.StartCPUProfile(cpuFile); err != nil {
		cpuFile.Close()
		return nil, fmt.Errorf("starting CPU profile: %w", err)
	}
	s.cpuFile = cpuFile

	if cfg.ServerAddress != "" {
		s.server = &http.Server{
			Addr:              cfg.ServerAddress,
			Handler:           pprofHandler(),
			ReadHeaderTimeout: shutdownTimeout,
		}
		go s.server.ListenAndServe() //nolint:errcheck
	}
	return s, nil
}

// Stop ends the CPU profile, writes the memory profile and shuts the pprof
// server down.
func (s *Session) Stop() error {
	rpprof.StopCPUProfile()
	errs := s.cpuFile.Close()
	errs = errors.Join(errs, s.writeMemoryProfile())

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		errs = errors.Join(errs, s.server.Shutdown(ctx))
	}
	return errs
}

func (s *Session) writeMemoryProfile() error {
	memFile, err := os.Create(filepath.Join(s.dir, memoryProfileFile))
	if err != nil {
		return fmt.Errorf("creating memory profile file: %w", err)
	}
	defer memFile.Close()

	// up to date allocation statistics
	runtime.GC()
	if err := rpprof.Lookup("allocs").WriteTo(memFile, 0); err != nil {
		return fmt.Errorf("writing memory profile: %w", err)
	}
	return nil
}

func pprofHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}
