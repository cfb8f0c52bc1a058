package sheet

// Row wraps one opaque row object supplied by a loader. ID is the row's
// arena index within the current load of its sheet: assigned in insertion
// order, never reused until the sheet reloads. Column caches and the
// selection are keyed by it.
type Row struct {
	ID   uint64
	Data any
}
