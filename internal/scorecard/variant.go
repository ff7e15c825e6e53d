package scorecard

// VariantSource records where a resolved variant came from.
type VariantSource string

const (
	VariantSourceNone      VariantSource = "none"
	VariantSourcePersisted VariantSource = "persisted"
	VariantSourceRequested VariantSource = "requested"
	VariantSourceDefault   VariantSource = "default"
)

// Resolution is the outcome of ResolveVariant.
type Resolution struct {
	Variant string
	Source  VariantSource
	// Locked is set when the variant was already fixed on the graded entity.
	Locked bool
	// NeedsSelection is set when the variant was defaulted for a role that requires an
	// explicit choice; computed scores should not be trusted until one is made.
	NeedsSelection bool
}

// ResolveVariant decides which rubric variant applies to role.
//
// A persisted variant the role declares is authoritative and cannot be overridden by
// requested. Otherwise a declared requested variant is used, and failing that the
// first declared variant. Unknown variants count as not chosen.
func ResolveVariant(catalog *Catalog, role, requested, persisted string) Resolution {
	variants := catalog.VariantsFor(role)
	if len(variants) == 0 {
		return Resolution{Source: VariantSourceNone}
	}

	if persisted != "" && catalog.HasVariant(role, persisted) {
		return Resolution{Variant: persisted, Source: VariantSourcePersisted, Locked: true}
	}
	if requested != "" && catalog.HasVariant(role, requested) {
		return Resolution{Variant: requested, Source: VariantSourceRequested}
	}
	return Resolution{
		Variant:        variants[0],
		Source:         VariantSourceDefault,
		NeedsSelection: catalog.RequiresVariantSelection(role),
	}
}
