package main

import (
	"errors"
	"unsafe"
)

func main() {
	err := errors.New("boom")
	println(unsafe.Pointer(&err) != nil)
}
