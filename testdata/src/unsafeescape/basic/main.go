package main

import "unsafe"

func main() {
	var buf [8]byte // @Alloc(buf)
	buf[0] = 1
	println(peek(&buf))
}

func peek(b *[8]byte) byte {
	p := unsafe.Pointer(b) // @Escape(buf)
	return *(*byte)(p)
}
