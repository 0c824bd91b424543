package query

import "strings"

// Predicate is an immutable filter node that compiles to a SQL condition
// fragment with positional arguments. Nodes are composed with And/Or and are
// never mutated, so a mandatory clause (like the visibility predicate) cannot
// be overwritten by a later filter.
type Predicate interface {
	Compile() (string, []any)
}

type comparison struct {
	column string
	op     string
	value  any
}

func (p comparison) Compile() (string, []any) {
	return p.column + " " + p.op + " ?", []any{p.value}
}

// Eq matches rows where column equals value.
func Eq(column string, value any) Predicate {
	return comparison{column: column, op: "=", value: value}
}

// Gte matches rows where column >= value.
func Gte(column string, value any) Predicate {
	return comparison{column: column, op: ">=", value: value}
}

// Lte matches rows where column <= value.
func Lte(column string, value any) Predicate {
	return comparison{column: column, op: "<=", value: value}
}

type isNull struct {
	column string
}

func (p isNull) Compile() (string, []any) {
	return p.column + " IS NULL", nil
}

// IsNull matches rows where column is NULL.
func IsNull(column string) Predicate {
	return isNull{column: column}
}

type containsFold struct {
	column string
	term   string
}

func (p containsFold) Compile() (string, []any) {
	return "LOWER(" + p.column + ") LIKE ? ESCAPE '\\'", []any{"%" + escapeLike(strings.ToLower(p.term)) + "%"}
}

// ContainsFold matches rows where column contains term, case-insensitively.
// Both sides are lower-cased so the match does not depend on the storage
// engine's collation.
func ContainsFold(column, term string) Predicate {
	return containsFold{column: column, term: term}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

type junction struct {
	op    string
	nodes []Predicate
}

func (p junction) Compile() (string, []any) {
	parts := make([]string, 0, len(p.nodes))
	var args []any
	for _, n := range p.nodes {
		sql, a := n.Compile()
		parts = append(parts, sql)
		args = append(args, a...)
	}
	return "(" + strings.Join(parts, " "+p.op+" ") + ")", args
}

// And combines predicates conjunctively. Nil nodes are skipped; combining
// zero nodes yields nil and a single node is returned as-is.
func And(nodes ...Predicate) Predicate {
	return newJunction("AND", nodes)
}

// Or combines predicates disjunctively with the same nil handling as And.
func Or(nodes ...Predicate) Predicate {
	return newJunction("OR", nodes)
}

func newJunction(op string, nodes []Predicate) Predicate {
	kept := make([]Predicate, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			kept = append(kept, n)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return junction{op: op, nodes: kept}
}
