package main

import "unsafe"

var table [4]int // @Alloc(table)

func main() {
	println(first())
}

func first() int {
	p := unsafe.Pointer(&table) // @Escape(table)
	return *(*int)(p)
}
