//go:build (linux || darwin) && amd64

package runtime

import (
	"github.com/pkg/errors"

	"github.com/Machillka/brainfuck-compiler/internal/mem"
)

// Symbols holds the resolved addresses of the bridge functions.
type Symbols struct {
	Put uintptr
	Get uintptr
}

// Install writes the put and get stubs into their own sealed executable
// region and returns their addresses. The region normally lives for the
// rest of the process; the returned closer exists for tests.
func Install() (Symbols, func() error, error) {
	put := PutStub(hostSyscalls)
	get := GetStub(hostSyscalls)

	code := make([]byte, 0, len(put)+len(get))
	code = append(code, put...)
	code = append(code, get...)

	buf, err := mem.Alloc(len(code))
	if err != nil {
		return Symbols{}, nil, errors.Wrap(err, "runtime: allocate stub region")
	}
	if err := buf.Copy(code); err != nil {
		buf.Close()
		return Symbols{}, nil, err
	}
	if err := buf.Seal(); err != nil {
		buf.Close()
		return Symbols{}, nil, err
	}

	return Symbols{
		Put: buf.Base(),
		Get: buf.Base() + uintptr(len(put)),
	}, buf.Close, nil
}
