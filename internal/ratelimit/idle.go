package ratelimit

import "container/list"

// idleList orders identities by their most recent admitted request, most
// recent at the front.
type idleList struct {
	items map[string]*list.Element
	list  *list.List
}

func newIdleList() *idleList {
	return &idleList{
		items: make(map[string]*list.Element),
		list:  list.New(),
	}
}

// Touch marks a key as most recently active.
func (l *idleList) Touch(key string) {
	if element, ok := l.items[key]; ok {
		l.list.MoveToFront(element)
		return
	}
	l.items[key] = l.list.PushFront(key)
}

// Remove deletes a key.
func (l *idleList) Remove(key string) {
	element, ok := l.items[key]
	if !ok {
		return
	}
	l.list.Remove(element)
	delete(l.items, key)
}

// Oldest returns the least recently active key.
func (l *idleList) Oldest() (string, bool) {
	element := l.list.Back()
	if element == nil {
		return "", false
	}
	return element.Value.(string), true
}

// Len returns the number of tracked keys.
func (l *idleList) Len() int {
	return len(l.items)
}

// EvictOver removes least recently active keys until at most max remain.
func (l *idleList) EvictOver(max int) []string {
	if max <= 0 || len(l.items) <= max {
		return nil
	}

	count := len(l.items) - max
	evicted := make([]string, 0, count)
	for i := 0; i < count; i++ {
		key, ok := l.Oldest()
		if !ok {
			break
		}
		evicted = append(evicted, key)
		l.Remove(key)
	}
	return evicted
}
