package types

// ViewSource resolves a named view — a bundle of field identifiers
// annotated on a host type — to the field names it expands to. The
// core treats a view expansion as a pre-parse macro; it never
// introspects host types itself. Injected once at engine construction.
type ViewSource interface {
	// ResolveView returns the ordered field names the view expands to,
	// and true, if name is a registered view. Returns false if name is
	// not a view (the parser then treats it as an ordinary field name).
	ResolveView(name string) ([]string, bool)
}

// FilterContextProvider resolves the ambient, root-type-derived filter
// appended after user filters when Config.AppendContextInNodeFilter is
// true.
type FilterContextProvider interface {
	// FilterFor returns the filter text to append for documents whose
	// root value has the given opaque bean class, and true if one
	// applies. rootBeanClass may be nil for hosts with no bean-class
	// notion, in which case implementations typically return false.
	FilterFor(rootBeanClass any) (filterText string, ok bool)
}
