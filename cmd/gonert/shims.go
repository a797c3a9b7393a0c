package main

import "C"

import "j5.nz/gonert/rt"

//export _print_int
func _print_int(x C.int) {
	rt.PrintInt(int32(x))
}

//export _print_float
func _print_float(x C.double) {
	rt.PrintFloat(float64(x))
}

//export _print_bool
func _print_bool(x C.int) {
	rt.PrintBool(int32(x))
}
