package proxy

// Operation names passed to initializers for the non-call interactions.
//
// Method calls pass the method name itself as the operation, so these cover
// the property-style surface plus clone and serialize.
const (
	OpGet       = "get"
	OpSet       = "set"
	OpHas       = "isset"
	OpDelete    = "unset"
	OpClone     = "clone"
	OpSerialize = "serialize"
)

// Param is one named argument of the triggering operation.
type Param struct {
	Name  string
	Value any
}

// Params is the ordered name-to-value mapping handed to an Initializer.
//
// Order matches the declaration order of the triggering operation's
// parameters. Property-style operations use the fixed bindings documented on
// each Proxy method (empty for reads, {"value": v} for writes, {"name": p}
// for existence checks and deletions).
type Params []Param

// Get returns the value bound to name.
//
// ok is false when no parameter with that name exists.
func (ps Params) Get(name string) (any, bool) {
	for _, p := range ps {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

// Names returns the parameter names in binding order.
func (ps Params) Names() []string {
	if len(ps) == 0 {
		return nil
	}
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name
	}
	return names
}

// Len returns the number of bound parameters.
func (ps Params) Len() int { return len(ps) }
