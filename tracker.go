package treepath

// Tracker watches a tree against a baseline snapshot and exposes
// lazily-computed change sets, "touched path" predicates and extraction of
// prior values. It is pure composition over the Differ and matching
// contracts and adds no diffing logic of its own.
//
// A Tracker is a single-owner value: the memoized changeset is computed on
// first use and reused until Update, Commit or Reset invalidate it.
type Tracker struct {
	differ   *Differ
	baseline any
	current  any

	memo     *Changeset
	memoErr  error
	computed bool
}

// NewTracker starts tracking against a baseline snapshot. The baseline is
// deep-cloned, so later mutations of the caller's tree do not bleed into it.
// Options configure the Differ used for every computation.
func NewTracker(baseline any, opts ...DiffOption) *Tracker {
	return &Tracker{
		differ:   NewDiffer(opts...),
		baseline: CloneJSON(baseline),
		current:  baseline,
	}
}

// Update replaces the working value and invalidates the memoized changeset.
// The baseline is untouched.
func (t *Tracker) Update(current any) {
	t.current = current
	t.invalidate()
}

// Commit rolls the baseline forward to a clone of the current value, so the
// tracker reports changes relative to this point from now on.
func (t *Tracker) Commit() {
	t.baseline = CloneJSON(t.current)
	t.invalidate()
}

// Reset discards the working value, going back to the baseline.
func (t *Tracker) Reset() {
	t.current = CloneJSON(t.baseline)
	t.invalidate()
}

func (t *Tracker) invalidate() {
	t.memo = nil
	t.memoErr = nil
	t.computed = false
}

// Changes returns the changeset between the baseline and the current value,
// computed once and memoized until the tracker is updated.
func (t *Tracker) Changes() (*Changeset, error) {
	if !t.computed {
		t.memo, t.memoErr = t.differ.Changeset(t.baseline, t.current)
		t.computed = true
	}
	return t.memo, t.memoErr
}

// ChangedPaths returns the canonical path strings of Changes, in changeset
// order.
func (t *Tracker) ChangedPaths() ([]string, error) {
	cs, err := t.Changes()
	if err != nil {
		return nil, err
	}
	return cs.Paths(), nil
}

// Touched reports whether any change lies at or under p.
func (t *Tracker) Touched(p Path) (bool, error) {
	cs, err := t.Changes()
	if err != nil {
		return false, err
	}
	for change := range cs.All() {
		if change.Path.HasPrefix(p) {
			return true, nil
		}
	}
	return false, nil
}

// TouchedBy reports whether any change lies inside a subtree the matcher
// denotes.
func (t *Tracker) TouchedBy(m Matcher) (bool, error) {
	cs, err := t.Changes()
	if err != nil {
		return false, err
	}
	for change := range cs.All() {
		if m.PrefixMatch(change.Path) {
			return true, nil
		}
	}
	return false, nil
}

// PriorValues extracts the baseline values at the given paths, keyed by
// canonical path string. Paths that do not resolve in the baseline are left
// out. The values are cloned, so callers cannot alias the baseline.
func (t *Tracker) PriorValues(paths ...Path) map[string]any {
	out := make(map[string]any, len(paths))
	for _, p := range paths {
		if v, ok := p.Get(t.baseline); ok {
			out[p.String()] = CloneJSON(v)
		}
	}
	return out
}
