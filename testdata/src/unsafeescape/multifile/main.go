package main

import "unsafe"

var counter int // @Alloc(counter)

func main() {
	var local [2]int64 // @Alloc(local)
	println(head(&local), bump())
}

func head(a *[2]int64) int64 {
	return *(*int64)(unsafe.Pointer(a)) // @Escape(local)
}
