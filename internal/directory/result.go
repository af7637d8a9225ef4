package directory

// State tells the view which empty-state to render.
type State int

const (
	// Ready means at least one row is visible.
	Ready State = iota
	// Empty means the collection itself has no rows.
	Empty
	// NoMatches means rows exist but the filters removed all of them.
	NoMatches
	// LoadFailed means the collection could not be fetched.
	LoadFailed
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Empty:
		return "empty"
	case NoMatches:
		return "no_matches"
	case LoadFailed:
		return "load_failed"
	}
	return "unknown"
}

// Result is a filtered listing together with its empty-state.
type Result[T any] struct {
	Items []T
	Total int
	State State
}

// NewResult classifies a filtered listing. loadErr wins over everything else.
func NewResult[T any](items []T, total int, loadErr error) Result[T] {
	r := Result[T]{Items: items, Total: total}
	switch {
	case loadErr != nil:
		r.State = LoadFailed
		r.Items = nil
	case total == 0:
		r.State = Empty
	case len(items) == 0:
		r.State = NoMatches
	default:
		r.State = Ready
	}
	return r
}
