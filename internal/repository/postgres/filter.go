package postgres

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/risick/microcredito-api/internal/query"
)

// whereBuilder compiles a query tree into a parameterized SQL predicate.
// Placeholders continue from len(args), so callers can append LIMIT/OFFSET.
type whereBuilder struct {
	columns map[query.Field]string
	args    []any
}

func compileFilter(n query.Node, columns map[query.Field]string) (string, []any, error) {
	b := &whereBuilder{columns: columns}
	sql, err := b.node(n)
	if err != nil {
		return "", nil, err
	}
	return sql, b.args, nil
}

func (b *whereBuilder) node(n query.Node) (string, error) {
	switch v := n.(type) {
	case nil:
		return "TRUE", nil
	case query.Clause:
		return b.clause(v)
	case query.And:
		return b.group(v, " AND ", "TRUE")
	case query.Or:
		return b.group(v, " OR ", "FALSE")
	default:
		return "", fmt.Errorf("unsupported filter node %T", n)
	}
}

func (b *whereBuilder) group(children []query.Node, sep, empty string) (string, error) {
	if len(children) == 0 {
		return empty, nil
	}
	parts := make([]string, 0, len(children))
	for _, child := range children {
		sql, err := b.node(child)
		if err != nil {
			return "", err
		}
		parts = append(parts, sql)
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

func (b *whereBuilder) clause(c query.Clause) (string, error) {
	col, ok := b.columns[c.Field]
	if !ok {
		return "", fmt.Errorf("unknown filter field %q", c.Field)
	}
	switch c.Op {
	case query.OpEq:
		return col + " = " + b.bind(c.Value), nil
	case query.OpIContains:
		s, ok := c.Value.(string)
		if !ok {
			return "", fmt.Errorf("icontains on %q needs a string", c.Field)
		}
		return col + " ILIKE '%' || " + b.bind(escapeLike(s)) + "::text || '%'", nil
	case query.OpGte:
		return col + " >= " + b.bind(c.Value), nil
	case query.OpLte:
		return col + " <= " + b.bind(c.Value), nil
	default:
		return "", fmt.Errorf("unsupported filter op %q", c.Op)
	}
}

func (b *whereBuilder) bind(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// escapeLike keeps user-provided wildcards literal inside ILIKE patterns.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
