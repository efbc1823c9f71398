//go:build linux

package bench

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// perfCounters counts user-space events of the calling thread through
// perf_event_open(2).
type perfCounters struct {
	fds [3]int
}

var perfEvents = [3]uint64{
	unix.PERF_COUNT_HW_INSTRUCTIONS,
	unix.PERF_COUNT_HW_BRANCH_MISSES,
	unix.PERF_COUNT_HW_CACHE_MISSES,
}

// OpenPerfCounters opens instruction, branch-miss and cache-miss counters for
// the calling thread. The caller must keep the goroutine locked to its OS
// thread while the source is in use.
func OpenPerfCounters() (CounterSource, error) {
	p := &perfCounters{fds: [3]int{-1, -1, -1}}
	for i, ev := range perfEvents {
		attr := unix.PerfEventAttr{
			Type:   unix.PERF_TYPE_HARDWARE,
			Config: ev,
			Bits:   unix.PerfBitDisabled | unix.PerfBitExcludeKernel | unix.PerfBitExcludeHv,
		}
		attr.Size = uint32(unsafe.Sizeof(attr))
		fd, err := unix.PerfEventOpen(&attr, 0, -1, -1, unix.PERF_FLAG_FD_CLOEXEC)
		if err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("%w: perf_event_open: %v", ErrCountersUnsupported, err)
		}
		p.fds[i] = fd
	}
	return p, nil
}

func (p *perfCounters) Start() error {
	for _, fd := range p.fds {
		if err := unix.IoctlSetInt(fd, unix.PERF_EVENT_IOC_RESET, 0); err != nil {
			return fmt.Errorf("reset counter: %w", err)
		}
		if err := unix.IoctlSetInt(fd, unix.PERF_EVENT_IOC_ENABLE, 0); err != nil {
			return fmt.Errorf("enable counter: %w", err)
		}
	}
	return nil
}

func (p *perfCounters) Stop() (RawCounters, error) {
	var vals [3]uint64
	var buf [8]byte
	for i, fd := range p.fds {
		if err := unix.IoctlSetInt(fd, unix.PERF_EVENT_IOC_DISABLE, 0); err != nil {
			return RawCounters{}, fmt.Errorf("disable counter: %w", err)
		}
		n, err := unix.Read(fd, buf[:])
		if err != nil {
			return RawCounters{}, fmt.Errorf("read counter: %w", err)
		}
		if n != len(buf) {
			return RawCounters{}, fmt.Errorf("read counter: short read of %d bytes", n)
		}
		vals[i] = binary.NativeEndian.Uint64(buf[:])
	}
	return RawCounters{Instructions: vals[0], BranchMisses: vals[1], CacheMisses: vals[2]}, nil
}

func (p *perfCounters) Close() error {
	var errs []error
	for i, fd := range p.fds {
		if fd < 0 {
			continue
		}
		if err := unix.Close(fd); err != nil {
			errs = append(errs, err)
		}
		p.fds[i] = -1
	}
	return errors.Join(errs...)
}
