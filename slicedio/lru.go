package slicedio

import "container/list"

// sliceLRU is a small capacity-bounded cache of decoded slice planes,
// keyed by z index. Capacity 1 degenerates to the "single-slot slice
// cache" the reader uses when no byte budget is configured.
type sliceLRU struct {
	capacity int
	order    *list.List // front = most recently used
	entries  map[uint64]*list.Element
}

type lruEntry struct {
	z     uint64
	plane []byte
}

func newSliceLRU(capacity int) *sliceLRU {
	if capacity < 1 {
		capacity = 1
	}
	return &sliceLRU{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[uint64]*list.Element),
	}
}

func (c *sliceLRU) get(z uint64) ([]byte, bool) {
	el, ok := c.entries[z]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*lruEntry).plane, true
}

func (c *sliceLRU) put(z uint64, plane []byte) {
	if el, ok := c.entries[z]; ok {
		el.Value.(*lruEntry).plane = plane
		c.order.MoveToFront(el)
		return
	}
	el := c.order.PushFront(&lruEntry{z: z, plane: plane})
	c.entries[z] = el
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*lruEntry).z)
	}
}
