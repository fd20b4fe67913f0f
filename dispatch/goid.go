package dispatch

import (
	"bytes"
	"runtime"
	"strconv"
)

// currentGoroutineID returns a best-effort identifier for the calling
// goroutine, parsed from its own stack trace header ("goroutine N ..."). It
// exists purely to let a dispatcher's InContext() recognize "the caller is
// already running on my worker goroutine" so boundary operators can skip a
// redundant hop; it is never used for correctness-critical decisions.
func currentGoroutineID() int64 {
	buf := make([]byte, 64)
	n := runtime.Stack(buf, false)
	buf = buf[:n]
	buf = bytes.TrimPrefix(buf, []byte("goroutine "))
	if i := bytes.IndexByte(buf, ' '); i >= 0 {
		buf = buf[:i]
	}
	id, err := strconv.ParseInt(string(buf), 10, 64)
	if err != nil {
		return -1
	}
	return id
}
