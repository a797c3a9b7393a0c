//go:build !needmain

package main

// start is empty in library builds; the host program owns the entry point.
func start() {}
