//go:build unix

package elf

import (
	"os"

	"golang.org/x/sys/unix"
)

// readFileBytes maps path into memory as a private, writable mapping.
// mmap avoids a full copy for the large object files this package is
// typically pointed at. ParseBytes only reads from the result, but
// RemoveSectionHeaders later writes into it (see below).
func readFileBytes(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return nil, nil
	}

	// PROT_WRITE + MAP_PRIVATE: RemoveSectionHeaders zeroes bytes in
	// place; MAP_PRIVATE keeps those writes copy-on-write, never
	// touching the backing file.
	data, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE)
	if err != nil {
		// Fall back to a plain read; some filesystems (overlayfs,
		// certain CI sandboxes) reject mmap on otherwise-ordinary files.
		return os.ReadFile(path)
	}
	return data, nil
}
