// Package boot implements the entry protocol between generated Gone code
// and the runtime.
//
// A compiled Gone program supplies two routines:
//
//	void __init(void)      sets up every global variable
//	int  _gone_main(void)  the program's own main
//
// The process entry point calls __init, then _gone_main, and exits with
// whatever _gone_main returned. The program main is not called "main" so
// it cannot collide with the process entry point itself.
//
// The lifecycle is Uninitialized, Initialized (after __init), Running
// (inside _gone_main) and Terminated (process exit). Nothing retries,
// re-enters or runs teardown; the order of calls in Run is the whole
// mechanism.
package boot

import (
	"errors"
	"fmt"
	"os"
)

// Symbol names the code generator must define.
const (
	InitSymbol = "__init"
	MainSymbol = "_gone_main"
)

// ErrUndefinedSymbol is returned when a Program lacks one of its routines.
var ErrUndefinedSymbol = errors.New("undefined symbol")

// Program is a compiled Gone program as seen by the entry point.
type Program struct {
	Init func()       // __init
	Main func() int32 // _gone_main
}

// Check reports the first routine the program does not provide.
//
// Standalone builds from the build driver never get this far: the final
// link requires both symbols. Check is the backstop for needmain builds
// linked by hand without those linker flags.
func (p Program) Check() error {
	if p.Init == nil {
		return fmt.Errorf("%w: %s", ErrUndefinedSymbol, InitSymbol)
	}
	if p.Main == nil {
		return fmt.Errorf("%w: %s", ErrUndefinedSymbol, MainSymbol)
	}
	return nil
}

// Run initializes the program's globals and then runs its main, returning
// main's result untouched. If either routine is missing, neither is called.
func Run(p Program) (int32, error) {
	if err := p.Check(); err != nil {
		return 0, err
	}
	p.Init()
	return p.Main(), nil
}

// Start runs p and terminates the process with its exit code. It never
// returns.
func Start(p Program) {
	code, err := Run(p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gonert: %v\n", err)
		os.Exit(2)
	}
	Exit(code)
}

// Exit terminates the process with code. The status a parent process sees
// is ExitStatus(code).
func Exit(code int32) {
	os.Exit(int(code))
}
