package storage

// NotFoundError is returned when a record doesn't exist in the store.
// Kind names the record type ("quiz", "attempt", "turn", ...).
type NotFoundError struct {
	Kind string
	Key  string
}

func (e NotFoundError) Error() string {
	kind := e.Kind
	if kind == "" {
		kind = "record"
	}
	if e.Key == "" {
		return kind + " not found"
	}

	return kind + " not found: " + e.Key
}
