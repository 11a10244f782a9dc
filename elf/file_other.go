//go:build !unix

package elf

import "os"

// readFileBytes reads path in a single call. Non-unix platforms don't
// get the mmap fast path; correctness, not speed, is the goal here.
func readFileBytes(path string) ([]byte, error) {
	return os.ReadFile(path)
}
