package form

// Dependents resolves the names of fields that depend on name.
type Dependents func(name string) []string

// Queue is an ordered, duplicate-free list of field names awaiting
// validation. It carries no locking; the coordinator guards it. A Queue is a
// plain value so the cascade can be exercised without a coordinator.
type Queue struct {
	names []string
	index map[string]struct{}
	limit int
}

// NewQueue returns an empty queue holding at most limit names. A limit of
// zero or less means unbounded.
func NewQueue(limit int) *Queue {
	return &Queue{index: make(map[string]struct{}), limit: limit}
}

// Enqueue appends name and then, depth-first, every transitive dependent
// reported by deps. Names already queued are skipped along with their
// cascade, so cycles terminate and earlier positions are kept. It returns the
// names actually added in insertion order and whether the limit cut the
// cascade short.
func (q *Queue) Enqueue(name string, deps Dependents) (added []string, full bool) {
	full = q.enqueue(name, deps, &added)
	return added, full
}

func (q *Queue) enqueue(name string, deps Dependents, added *[]string) bool {
	if q.Contains(name) {
		return false
	}
	if q.limit > 0 && len(q.names) >= q.limit {
		return true
	}
	if q.index == nil {
		q.index = make(map[string]struct{})
	}
	q.names = append(q.names, name)
	q.index[name] = struct{}{}
	*added = append(*added, name)
	if deps == nil {
		return false
	}
	for _, dependent := range deps(name) {
		if q.enqueue(dependent, deps, added) {
			return true
		}
	}
	return false
}

// Pop removes and returns the oldest queued name.
func (q *Queue) Pop() (string, bool) {
	if len(q.names) == 0 {
		return "", false
	}
	name := q.names[0]
	q.names[0] = ""
	q.names = q.names[1:]
	delete(q.index, name)
	return name, true
}

// Contains reports whether name is queued.
func (q *Queue) Contains(name string) bool {
	_, ok := q.index[name]
	return ok
}

// Len reports the number of queued names.
func (q *Queue) Len() int {
	return len(q.names)
}

// Names returns a copy of the queued names in processing order.
func (q *Queue) Names() []string {
	return append([]string(nil), q.names...)
}

// Clear drops every queued name.
func (q *Queue) Clear() {
	q.names = nil
	q.index = make(map[string]struct{})
}
