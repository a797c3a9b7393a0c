//go:build needmain

package main

/*
// Weak so the package links on its own; the generated object provides
// the strong definitions at the final link, which the build driver runs
// with --require-defined for both symbols.
extern void __init(void) __attribute__((weak));
extern int _gone_main(void) __attribute__((weak));

static int gonert_has_init(void) { return __init != 0; }
static int gonert_has_main(void) { return _gone_main != 0; }
static void gonert_init(void) { __init(); }
static int gonert_main(void) { return _gone_main(); }
*/
import "C"

import "j5.nz/gonert/boot"

func program() boot.Program {
	var p boot.Program
	if C.gonert_has_init() != 0 {
		p.Init = func() { C.gonert_init() }
	}
	if C.gonert_has_main() != 0 {
		p.Main = func() int32 { return int32(C.gonert_main()) }
	}
	return p
}

func start() {
	boot.Start(program())
}
