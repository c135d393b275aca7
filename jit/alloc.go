package jit

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// page is one mmap'd region of executable memory. Each Compile allocates
// its own page for the Routine it returns, and that Routine's Close
// releases it.
type page struct {
	mem []byte
}

// pageSize rounds n up to the host's mmap allocation granularity.
func pageSize(n int) int {
	const sz = 4096
	if n <= 0 {
		return sz
	}
	return (n + sz - 1) / sz * sz
}

// allocExecutable reserves a zeroed RW page, copies code into it, then
// switches the page to RX. Code is never writable and executable at the
// same time, the conventional W^X discipline.
func allocExecutable(code []byte) (*page, error) {
	n := pageSize(len(code))
	mem, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("jit: mmap %d bytes: %w", n, err)
	}
	copy(mem, code)
	if err := unix.Mprotect(mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		unix.Munmap(mem)
		return nil, fmt.Errorf("jit: mprotect RX: %w", err)
	}
	return &page{mem: mem}, nil
}

func (p *page) free() error {
	if p.mem == nil {
		return nil
	}
	err := unix.Munmap(p.mem)
	p.mem = nil
	return err
}
