package form

// fieldRegistry holds attached fields in attachment order plus a
// reverse-dependency index (name -> names of fields depending on it) rebuilt
// on every attach and detach.
type fieldRegistry struct {
	fields     []Field
	dependents map[string][]string
}

func (r *fieldRegistry) add(f Field) error {
	name := f.Name()
	for _, existing := range r.fields {
		if existing.HasName(name) {
			return &DuplicateNameError{Name: name}
		}
	}
	r.fields = append(r.fields, f)
	r.reindex()
	return nil
}

// remove drops f by identity and reports whether it was attached.
func (r *fieldRegistry) remove(f Field) bool {
	for idx, existing := range r.fields {
		if existing != f {
			continue
		}
		copy(r.fields[idx:], r.fields[idx+1:])
		r.fields[len(r.fields)-1] = nil
		r.fields = r.fields[:len(r.fields)-1]
		r.reindex()
		return true
	}
	return false
}

func (r *fieldRegistry) lookup(name string) Field {
	for _, f := range r.fields {
		if f.HasName(name) {
			return f
		}
	}
	return nil
}

func (r *fieldRegistry) len() int {
	return len(r.fields)
}

func (r *fieldRegistry) snapshot() []Field {
	return append([]Field(nil), r.fields...)
}

func (r *fieldRegistry) names() []string {
	out := make([]string, len(r.fields))
	for i, f := range r.fields {
		out[i] = f.Name()
	}
	return out
}

func (r *fieldRegistry) values() map[string]any {
	out := make(map[string]any, len(r.fields))
	for _, f := range r.fields {
		out[f.Name()] = f.Value()
	}
	return out
}

func (r *fieldRegistry) dependentsOf(name string) []string {
	return r.dependents[name]
}

func (r *fieldRegistry) reindex() {
	index := make(map[string][]string)
	for _, f := range r.fields {
		dependent := f.Name()
		for _, dep := range f.Dependencies() {
			index[dep] = append(index[dep], dependent)
		}
	}
	r.dependents = index
}
