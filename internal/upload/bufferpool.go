package upload

import (
	"sync"

	"github.com/dev-harsh1998/irondrop/internal/httpproto"
)

// bufferPools mirrors the teacher's per-size-tier sync.Pool map so repeated
// large uploads don't re-allocate a fresh copy buffer per file.
var bufferPools = map[int]*sync.Pool{
	httpproto.BufferSizeSmall: {
		New: func() interface{} {
			b := make([]byte, httpproto.BufferSizeSmall)
			return &b
		},
	},
	httpproto.BufferSizeMedium: {
		New: func() interface{} {
			b := make([]byte, httpproto.BufferSizeMedium)
			return &b
		},
	},
	httpproto.BufferSizeLarge: {
		New: func() interface{} {
			b := make([]byte, httpproto.BufferSizeLarge)
			return &b
		},
	},
	httpproto.BufferSizeVeryLarge: {
		New: func() interface{} {
			b := make([]byte, httpproto.BufferSizeVeryLarge)
			return &b
		},
	},
}

func getBuffer(size int) *[]byte {
	pool, ok := bufferPools[size]
	if !ok {
		pool = bufferPools[httpproto.BufferSizeLarge]
	}
	return pool.Get().(*[]byte)
}

func putBuffer(buf *[]byte) {
	size := len(*buf)
	if pool, ok := bufferPools[size]; ok {
		pool.Put(buf)
	}
}
