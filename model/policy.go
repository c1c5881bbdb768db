package model

// Policy names the principals permitted each operation on its owning bag
// or recipe, plus an optional owner. The zero value is an open policy
// with no owner.
type Policy struct {
	Manage []string
	Accept []string
	Create []string
	Read   []string
	Write  []string

	// Owner is empty when the policy has no owner. The store persists
	// the empty string as an explicit sentinel because the backing
	// scalar store cannot represent null.
	Owner string
}

// PolicyConstraint is a typed accessor for one of the five principal
// sets of a Policy.
type PolicyConstraint struct {
	Name string
	Get  func(*Policy) []string
	Set  func(*Policy, []string)
}

// PolicyConstraints lists the five principal sets in canonical order.
// The store iterates this table instead of reflecting over field names,
// so the persisted constraint keys are fixed at compile time.
var PolicyConstraints = []PolicyConstraint{
	{"manage", func(p *Policy) []string { return p.Manage }, func(p *Policy, v []string) { p.Manage = v }},
	{"accept", func(p *Policy) []string { return p.Accept }, func(p *Policy, v []string) { p.Accept = v }},
	{"create", func(p *Policy) []string { return p.Create }, func(p *Policy, v []string) { p.Create = v }},
	{"read", func(p *Policy) []string { return p.Read }, func(p *Policy, v []string) { p.Read = v }},
	{"write", func(p *Policy) []string { return p.Write }, func(p *Policy, v []string) { p.Write = v }},
}
