package ratelimit

import "container/list"

// lruList tracks IP keys ordered from least- to most-recently-touched,
// using container/list so touch/remove are O(1) given the element handle.
// No pack dependency provides an LRU-ordered set; container/list is the
// stdlib building block the corpus itself reaches for in list-backed caches.
type lruList struct {
	ll    *list.List
	index map[string]*list.Element
}

func newLRUList() *lruList {
	return &lruList{
		ll:    list.New(),
		index: make(map[string]*list.Element),
	}
}

// touch marks key as most-recently-used, moving it to the back of the
// ordering (orderedKeys returns front-to-back, coldest first).
func (l *lruList) touch(key string) {
	if el, ok := l.index[key]; ok {
		l.ll.MoveToBack(el)
		return
	}
	el := l.ll.PushBack(key)
	l.index[key] = el
}

func (l *lruList) remove(key string) {
	if el, ok := l.index[key]; ok {
		l.ll.Remove(el)
		delete(l.index, key)
	}
}

// orderedKeys returns keys from coldest (least-recently-touched) to
// warmest.
func (l *lruList) orderedKeys() []string {
	out := make([]string, 0, l.ll.Len())
	for el := l.ll.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(string))
	}
	return out
}
