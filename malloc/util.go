package malloc

import "fmt"
import "errors"

// ErrorOutofMemory span request refused, the configured capacity is
// exhausted or the OS declined to grant pages. Surfaces to the
// application as a nil return from Alloc.
var ErrorOutofMemory = errors.New("malloc.outofmemory")

func panicerr(fmsg string, args ...interface{}) {
	panic(fmt.Errorf(fmsg, args...))
}

func ceil(a, b int64) int64 {
	return (a + b - 1) / b
}
