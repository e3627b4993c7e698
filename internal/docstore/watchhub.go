package docstore

import "sync"

// watchHub раздает изменения подписчикам; общий для memory и postgres бекендов.
// Порядок доставки — порядок dispatch; между разными подписчиками порядок не гарантируется.
type watchHub struct {
	mu          sync.Mutex
	nextID      int64
	collWatches map[string]map[int64]*collWatcher // collection -> id -> watcher
	docWatches  map[string]map[int64]*docWatcher  // collection/id -> id -> watcher
}

type collWatcher struct {
	filter *Filter
	fn     func([]Doc)
}

type docWatcher struct {
	fn func(Doc)
}

func newWatchHub() *watchHub {
	return &watchHub{
		collWatches: make(map[string]map[int64]*collWatcher),
		docWatches:  make(map[string]map[int64]*docWatcher),
	}
}

func (h *watchHub) addCollection(collection string, filter *Filter, fn func([]Doc)) Unsubscribe {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	ws, ok := h.collWatches[collection]
	if !ok {
		ws = make(map[int64]*collWatcher)
		h.collWatches[collection] = ws
	}
	ws[id] = &collWatcher{filter: filter, fn: fn}

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.collWatches[collection], id)
	}
}

func (h *watchHub) addDoc(collection, docID string, fn func(Doc)) Unsubscribe {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	key := collection + "/" + docID
	ws, ok := h.docWatches[key]
	if !ok {
		ws = make(map[int64]*docWatcher)
		h.docWatches[key] = ws
	}
	ws[id] = &docWatcher{fn: fn}

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.docWatches[key], id)
	}
}

// dispatch вызывает подписчиков вне блокировки хаба
func (h *watchHub) dispatch(collection, docID string, all []Doc, one Doc) {
	h.mu.Lock()
	var collFns []func()
	for _, w := range h.collWatches[collection] {
		w := w
		filtered := all
		if w.filter != nil {
			filtered = make([]Doc, 0, len(all))
			for _, d := range all {
				if w.filter.matches(d) {
					filtered = append(filtered, d)
				}
			}
		}
		snapshot := filtered
		collFns = append(collFns, func() { w.fn(snapshot) })
	}
	var docFns []func()
	for _, w := range h.docWatches[collection+"/"+docID] {
		w := w
		docFns = append(docFns, func() { w.fn(one) })
	}
	h.mu.Unlock()

	for _, fn := range collFns {
		fn()
	}
	for _, fn := range docFns {
		fn()
	}
}

func (h *watchHub) hasWatchers(collection string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.collWatches[collection]) > 0 {
		return true
	}
	for key, ws := range h.docWatches {
		if len(ws) > 0 && len(key) > len(collection) && key[:len(collection)+1] == collection+"/" {
			return true
		}
	}
	return false
}
