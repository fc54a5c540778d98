package main

import (
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"

	"github.com/pkg/errors"
)

// profiler collects a CPU profile for the lifetime of one command. An
// interrupt still flushes the profile before the process exits.
type profiler struct {
	path string
	file *os.File
	sig  chan os.Signal
	done chan struct{}
}

func (p *profiler) start() error {
	if p.path == "" {
		return nil
	}
	f, err := os.Create(p.path)
	if err != nil {
		return errors.Wrap(err, "cpu profile cannot be created")
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return errors.Wrap(err, "start cpu profile")
	}
	p.file = f
	p.sig = make(chan os.Signal, 1)
	p.done = make(chan struct{})
	signal.Notify(p.sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-p.sig:
			pprof.StopCPUProfile()
			f.Close()
			os.Exit(130)
		case <-p.done:
		}
	}()
	return nil
}

func (p *profiler) stop() error {
	if p.file == nil {
		return nil
	}
	signal.Stop(p.sig)
	close(p.done)
	pprof.StopCPUProfile()
	err := p.file.Close()
	p.file = nil
	return errors.Wrap(err, "close cpu profile")
}
