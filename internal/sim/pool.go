package sim

import "sync"

// BufferPool recycles fixed-size float64 buffers. Buffers come back zeroed.
type BufferPool struct {
	pool sync.Pool
	size int
}

func NewBufferPool(size int) *BufferPool {
	return &BufferPool{
		size: size,
		pool: sync.Pool{
			New: func() interface{} {
				b := make([]float64, size)
				return &b
			},
		},
	}
}

func (p *BufferPool) Size() int { return p.size }

func (p *BufferPool) Get() []float64 {
	return *p.pool.Get().(*[]float64)
}

func (p *BufferPool) Put(b []float64) {
	if len(b) == p.size {
		for i := range b {
			b[i] = 0
		}
		p.pool.Put(&b)
	}
}
