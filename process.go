package wslapi

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/0xrawsec/golang-utils/log"
	"github.com/ubuntu/wslapi/internal/backend"
	"github.com/ubuntu/wslapi/internal/handle"
	"github.com/ubuntu/wslapi/internal/hresult"
)

// Process is a process started by Library.Launch.
//
// It owns the process handle and the three streams it was launched with,
// which stay open until the process is joined with Wait or Close.
type Process struct {
	backend backend.Backend

	mu     sync.Mutex
	joined bool

	h      handle.Handle
	stdin  *Stdio
	stdout *Stdio
	stderr *Stdio
}

func newProcess(b backend.Backend, h handle.Handle, stdin, stdout, stderr *Stdio) *Process {
	p := &Process{
		backend: b,
		h:       h,
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
	}
	runtime.SetFinalizer(p, (*Process).finalize)
	return p
}

// Wait blocks until the process exits, then releases the process handle and
// the streams. An error is only returned if the OS failed to wait or to release
// resources: a process that failed is reported through its ExitStatus.
//
// Every resource is released even if one of the steps fails.
// Wait must be called at most once: calling it again panics.
func (p *Process) Wait() (ExitStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.joined {
		panic("wslapi: Wait called on a process that was already joined")
	}

	return p.join()
}

// Close joins the process if Wait was not called, and does nothing otherwise.
// It is meant to be deferred right after Launch. Since it has no way of
// reporting them, OS failures while joining make it panic.
func (p *Process) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.joined {
		return
	}

	if _, err := p.join(); err != nil {
		panic(err)
	}
}

// join waits for the process and releases everything it owns.
// It must be called with the mutex held, on a process that was not joined yet.
func (p *Process) join() (status ExitStatus, err error) {
	p.joined = true
	runtime.SetFinalizer(p, nil)

	var errs []error

	if err := p.backend.WaitForSingleObject(p.h); err != nil {
		errs = append(errs, err)
	} else if code, err := p.backend.GetExitCodeProcess(p.h); err == nil {
		status = ExitStatus{code: code, known: true}
	}

	if err := p.backend.CloseHandle(p.h); err != nil {
		errs = append(errs, err)
	}

	for _, s := range []*Stdio{p.stdin, p.stdout, p.stderr} {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	p.stdin, p.stdout, p.stderr = nil, nil, nil

	if len(errs) != 0 {
		return status, wrapError(errors.Join(errs...), hresult.E_FAIL, "could not join process 0x%x", uintptr(p.h))
	}

	return status, nil
}

// finalize joins a process that became unreachable without being joined. It
// must not block the finalizer goroutine, so the join happens on its own.
func (p *Process) finalize() {
	log.Warnf("wslapi: process 0x%x was never waited for, joining it now", uintptr(p.h))
	go p.Close()
}

// ExitStatus is the exit status of a joined process.
type ExitStatus struct {
	code  uint32
	known bool
}

// Code returns the exit code of the process. ok is false if it could not be read.
func (s ExitStatus) Code() (code uint32, ok bool) {
	return s.code, s.known
}

// Success is true if the process exited with code 0.
func (s ExitStatus) Success() bool {
	return s.known && s.code == 0
}

func (s ExitStatus) String() string {
	if !s.known {
		return "exit status unknown"
	}
	return fmt.Sprintf("exit status %d", s.code)
}
