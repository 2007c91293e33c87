// Package image provides frame buffer management and image file I/O for
// fpvosd.
package image

import (
	"image"
	"sync"
)

// Pool is a thread-safe pool for reusing NRGBA frame buffers.
//
// Pool groups buffers by their dimensions, allowing render workers to reuse
// identically-sized frames instead of allocating one per OSD frame.
//
// Thread safety: All methods are safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	buckets map[poolKey][]*image.NRGBA
	maxSize int // max buffers per bucket
}

// poolKey identifies a bucket of identically-sized buffers.
type poolKey struct {
	width  int
	height int
}

// NewPool creates a new frame buffer pool with the given maximum buffers per
// bucket. A maxPerBucket of 0 means unlimited.
func NewPool(maxPerBucket int) *Pool {
	return &Pool{
		buckets: make(map[poolKey][]*image.NRGBA),
		maxSize: maxPerBucket,
	}
}

// Get retrieves a fully transparent buffer from the pool or creates a new
// one. It returns nil for non-positive dimensions.
func (p *Pool) Get(width, height int) *image.NRGBA {
	if width <= 0 || height <= 0 {
		return nil
	}
	key := poolKey{width: width, height: height}

	p.mu.Lock()
	bucket := p.buckets[key]
	if len(bucket) > 0 {
		buf := bucket[len(bucket)-1]
		p.buckets[key] = bucket[:len(bucket)-1]
		p.mu.Unlock()
		return buf
	}
	p.mu.Unlock()

	return image.NewNRGBA(image.Rect(0, 0, width, height))
}

// Put clears buf and returns it to the pool. Nil buffers, buffers with a
// non-zero origin and buffers beyond the bucket capacity are discarded.
func (p *Pool) Put(buf *image.NRGBA) {
	if buf == nil || buf.Rect.Min != (image.Point{}) {
		return
	}
	Clear(buf)

	key := poolKey{width: buf.Rect.Dx(), height: buf.Rect.Dy()}

	p.mu.Lock()
	defer p.mu.Unlock()

	bucket := p.buckets[key]
	if p.maxSize > 0 && len(bucket) >= p.maxSize {
		return
	}
	p.buckets[key] = append(bucket, buf)
}

// Clear makes every pixel of buf fully transparent.
func Clear(buf *image.NRGBA) {
	clear(buf.Pix)
}
