package main

import "unsafe"

func bump() int {
	p := (*int)(unsafe.Pointer(&counter)) // @Escape(counter)
	*p++
	return counter // @Escape(counter)
}
