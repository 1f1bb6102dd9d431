// Package planpkg defines the Operation tagged-union and Plan container
// every analyzer emits into and the arbiter merges (§3, §4.10).
package planpkg

// Kind tags an Operation with the analyzer that produced it.
type Kind string

const (
	KindPreCleanup  Kind = "pre-cleanup"
	KindDuplicate   Kind = "duplicates"
	KindOrphan      Kind = "orphans"
	KindReorganize  Kind = "reorganize"
	KindPermissions Kind = "permissions"
	KindOwnership   Kind = "ownership"
	KindPostCleanup Kind = "post-cleanup"
)

// Destructive reports whether operations of this kind move or remove data,
// as opposed to only touching metadata or proposing a structural rename.
func (k Kind) Destructive() bool {
	switch k {
	case KindPreCleanup, KindDuplicate, KindOrphan, KindPostCleanup:
		return true
	default:
		return false
	}
}

// Operation is the tagged-union record from §3: only the fields relevant to
// its Kind are populated by a producing analyzer.
type Operation struct {
	Kind Kind
	Path string

	// Move fields (PreCleanup, Duplicate, Orphan, Reorganize, PostCleanup).
	MoveTo       string
	SidecarFiles []string
	OriginalPath string

	// Permissions fields.
	CurrentMode int
	DesiredMode int

	// Ownership fields.
	CurrentOwner string
	CurrentGroup string
	DesiredOwner string
	DesiredGroup string
	NewUid       uint32
	NewGid       uint32

	// Reason is a short human-readable explanation (§4.4's cleanup reasons,
	// or an analyzer-specific note).
	Reason string

	// Depth is the path's depth below its scan root, used to order
	// cleanup moves deepest-first so children move before parents (§5).
	Depth int
}

// IsMove reports whether this Operation carries a move destination.
func (o Operation) IsMove() bool { return o.MoveTo != "" }

// Plan is a mapping from operation kind to an ordered sequence of
// Operations, as produced by the arbiter.
type Plan struct {
	Operations map[Kind][]Operation
}

// NewPlan returns an empty Plan.
func NewPlan() *Plan {
	return &Plan{Operations: make(map[Kind][]Operation)}
}

// Add appends an operation under its own kind.
func (p *Plan) Add(op Operation) {
	p.Operations[op.Kind] = append(p.Operations[op.Kind], op)
}

// For returns the ordered operations of a given kind.
func (p *Plan) For(kind Kind) []Operation {
	return p.Operations[kind]
}

// Len returns the total number of operations across all kinds.
func (p *Plan) Len() int {
	total := 0
	for _, ops := range p.Operations {
		total += len(ops)
	}
	return total
}

// Kinds returns every operation kind in arbitration/execution order.
func (p *Plan) Kinds() []Kind {
	return []Kind{
		KindPreCleanup, KindDuplicate, KindOrphan,
		KindReorganize, KindPermissions, KindOwnership,
		KindPostCleanup,
	}
}
