// Command gonert is the Gone runtime as a linkable C artifact.
//
// Library mode, for hosts that bring their own entry point:
//
//	go build -buildmode=c-archive -o libgonert.a ./cmd/gonert
//
// Standalone mode links the generated object in and makes the bootstrap
// the process entry point:
//
//	CGO_ENABLED=1 go build -tags needmain \
//	    -ldflags "-linkmode=external -extldflags 'prog.o
//	    -Wl,--require-defined=__init -Wl,--require-defined=_gone_main'" \
//	    -o prog ./cmd/gonert
//
// The required-symbol flags make a program missing either routine fail to
// link, as the references from this package are weak.
//
// Both modes export _print_int, _print_float and _print_bool. Only the
// needmain build calls __init and _gone_main.
package main

func main() {
	start()
}
