package diag

// ID is a stable diagnostic identifier. IDs and their formats are part of
// the public contract: build pipelines match on them.
type ID string

// Enhanced-enum family.
const (
	InternalError            ID = "ENH000"
	DuplicateCollectionName  ID = "ENH001"
	DuplicateOptionName      ID = "ENH002"
	DuplicateOptionID        ID = "ENH003"
	NotAssignable            ID = "ENH004"
	NoMatchingCollection     ID = "ENH005"
	DuplicateLookupValue     ID = "ENH006"
	MalformedDirective       ID = "ENH007"
	MissingCollectionName    ID = "ENH008"
	MissingBaseInheritance   ID = "ENH009"
	GenericMissingConstraint ID = "ENH010"
	InvalidLookupMethod      ID = "ENH011"
	UnreachableGlobalOption  ID = "ENH012"
	MissingConstructor       ID = "ENH013"
)

// Type-collection family.
const (
	TypeCollectionMissingBase ID = "TC001"
	TypeOptionNotDerived      ID = "TC002"
	DuplicateTypeOptionName   ID = "TC003"
	DuplicateTypeCollection   ID = "TC004"
	UnresolvedTypeCollection  ID = "TC005"
)

// Descriptor is the catalogue entry of an ID.
type Descriptor struct {
	ID       ID
	Title    string
	Severity Severity
	Format   string
	Fixable  bool
}

var catalogue = map[ID]Descriptor{
	InternalError: {
		Title: "internal error", Severity: SevError,
		Format: "internal error while processing %s: %v",
	},
	DuplicateCollectionName: {
		Title: "duplicate collection name", Severity: SevError,
		Format: "collection name %q is already declared by %s",
	},
	DuplicateOptionName: {
		Title: "duplicate option name", Severity: SevWarning,
		Format: "option name %q in collection %s is also used by %s; name lookups return the later option",
	},
	DuplicateOptionID: {
		Title: "duplicate option id", Severity: SevWarning,
		Format: "option id %d in collection %s is also used by %s; id lookups return the later option",
	},
	NotAssignable: {
		Title: "type not assignable", Severity: SevError,
		Format: "%s is not assignable to %s",
	},
	NoMatchingCollection: {
		Title: "option without collection", Severity: SevWarning,
		Format: "option %s has no collection for base type %s",
	},
	DuplicateLookupValue: {
		Title: "duplicate lookup value", Severity: SevError, Fixable: true,
		Format: "lookup %s value %s is produced by both %s and %s; mark the lookup multi",
	},
	MalformedDirective: {
		Title: "malformed directive", Severity: SevError,
		Format: "%s",
	},
	MissingCollectionName: {
		Title: "missing collection name", Severity: SevError, Fixable: true,
		Format: "collection %s must specify a name",
	},
	MissingBaseInheritance: {
		Title: "missing base inheritance", Severity: SevError,
		Format: "%s must embed %s",
	},
	GenericMissingConstraint: {
		Title: "generic collection needs interface constraint", Severity: SevError,
		Format: "generic collection %s must constrain its type parameter %s with a non-generic interface",
	},
	InvalidLookupMethod: {
		Title: "invalid lookup method", Severity: SevError,
		Format: "lookup %s: method %s must take no arguments and return one comparable value",
	},
	UnreachableGlobalOption: {
		Title: "option not reachable from global collection", Severity: SevError,
		Format: "option %s cannot be referenced from package %s: %s",
	},
	MissingConstructor: {
		Title: "option without constructor", Severity: SevWarning,
		Format: "option %s has no zero-argument constructor and no own ID/Name; it will be registered with a zero identity",
	},
	TypeCollectionMissingBase: {
		Title: "type collection missing base", Severity: SevError,
		Format: "type collection %s must specify a resolvable base type%s",
	},
	TypeOptionNotDerived: {
		Title: "type option not derived from base", Severity: SevError,
		Format: "type option %s must embed or implement %s",
	},
	DuplicateTypeOptionName: {
		Title: "duplicate type option name", Severity: SevWarning,
		Format: "type option name %q in collection %s is also used by %s; name lookups return the later option",
	},
	DuplicateTypeCollection: {
		Title: "duplicate type collection", Severity: SevError,
		Format: "type collection name %q is already declared by %s",
	},
	UnresolvedTypeCollection: {
		Title: "unresolved type collection", Severity: SevError,
		Format: "type option %s references unknown collection %q",
	},
}

// Lookup returns the catalogue entry for id.
func Lookup(id ID) Descriptor {
	d, ok := catalogue[id]
	if !ok {
		return Descriptor{ID: id, Title: "unknown", Severity: SevError, Format: "%v"}
	}
	d.ID = id
	return d
}

// All returns every catalogue entry ordered by ID.
func All() []Descriptor {
	out := make([]Descriptor, 0, len(catalogue))
	for id := range catalogue {
		out = append(out, Lookup(id))
	}
	sortDescriptors(out)
	return out
}
