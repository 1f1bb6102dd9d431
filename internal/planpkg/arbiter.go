package planpkg

// Arbiter merges per-analyzer operation lists into a final Plan while
// enforcing destructive/non-destructive precedence (§4.10). A path claimed
// by a destructive kind may not also appear under any other kind.
type Arbiter struct {
	destructive map[string]bool
	plan        *Plan
}

// NewArbiter returns an Arbiter with an empty DESTRUCTIVE set and Plan.
func NewArbiter() *Arbiter {
	return &Arbiter{
		destructive: make(map[string]bool),
		plan:        NewPlan(),
	}
}

// ClaimDestructive admits every operation in ops, in order, skipping any
// whose path is already in the DESTRUCTIVE set and adding accepted paths to
// it. Used for PreCleanup, then Duplicate, then Orphan (§4.10 steps 1-2).
func (a *Arbiter) ClaimDestructive(kind Kind, ops []Operation) {
	for _, op := range ops {
		if a.destructive[op.Path] {
			continue
		}
		a.destructive[op.Path] = true
		a.plan.Add(op)
	}
}

// FilterNonDestructive admits every operation in ops whose path is not
// already in the DESTRUCTIVE set. Used for Reorganize, Permissions,
// Ownership (§4.10 step 3).
func (a *Arbiter) FilterNonDestructive(kind Kind, ops []Operation) {
	for _, op := range ops {
		if a.destructive[op.Path] {
			continue
		}
		a.plan.Add(op)
	}
}

// ClaimPostCleanup admits post-cleanup operations against the DESTRUCTIVE
// set built during this arbitration pass. Callers should construct a fresh
// Arbiter for the post-cleanup pass against a rescanned model (§4.10 step
// 4), since that set must reflect only post-cleanup's own action.
func (a *Arbiter) ClaimPostCleanup(ops []Operation) {
	a.ClaimDestructive(KindPostCleanup, ops)
}

// Plan returns the arbitrated Plan built so far.
func (a *Arbiter) Plan() *Plan {
	return a.plan
}

// Destructive reports whether path has already been claimed by a
// destructive kind.
func (a *Arbiter) Destructive(path string) bool {
	return a.destructive[path]
}
