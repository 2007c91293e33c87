package cache

// lruNode is a node in a doubly-linked LRU list. It stores the key for
// removal from the parent map.
type lruNode[K comparable] struct {
	key  K
	prev *lruNode[K]
	next *lruNode[K]
}

// lruList orders keys by use: head is the most recently used, tail the
// least. It is not thread-safe.
type lruList[K comparable] struct {
	head *lruNode[K]
	tail *lruNode[K]
	len  int
}

func newLRUList[K comparable]() *lruList[K] {
	return &lruList[K]{}
}

// Len returns the number of nodes.
func (l *lruList[K]) Len() int {
	return l.len
}

// PushFront inserts key as the most recently used node.
func (l *lruList[K]) PushFront(key K) *lruNode[K] {
	n := &lruNode[K]{key: key}
	l.insertFront(n)
	l.len++
	return n
}

// MoveToFront marks n as the most recently used node.
func (l *lruList[K]) MoveToFront(n *lruNode[K]) {
	if l.head == n {
		return
	}
	l.unlink(n)
	l.insertFront(n)
}

// Remove unlinks n from the list.
func (l *lruList[K]) Remove(n *lruNode[K]) {
	l.unlink(n)
	l.len--
}

// Back returns the least recently used node, or nil.
func (l *lruList[K]) Back() *lruNode[K] {
	return l.tail
}

func (l *lruList[K]) insertFront(n *lruNode[K]) {
	n.prev = nil
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
}

func (l *lruList[K]) unlink(n *lruNode[K]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
}
