package main

import "unsafe"

var sink unsafe.Pointer

var box any

func main() {
	x := new(int)
	println(addr(x))
}

func addr(p *int) uintptr {
	if p == nil {
		return 0
	}
	box = p
	sink = unsafe.Pointer(p)
	return uintptr(sink)
}
