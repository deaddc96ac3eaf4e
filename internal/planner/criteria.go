package planner

import (
	"strings"
)

// TableRef is replaced with the plan's table alias when rendered.
const TableRef = "{t}"

type cond struct {
	expr string
	args []any
}

// Criteria is an AND-ed list of filter conditions on the planned table.
// Columns are unqualified; a nil *Criteria matches every row.
type Criteria struct {
	conds []cond
}

func Where() *Criteria { return &Criteria{} }

// Expr adds a raw condition. Write {t}.column to reference the planned table.
func (c *Criteria) Expr(expr string, args ...any) *Criteria {
	c.conds = append(c.conds, cond{expr: expr, args: args})
	return c
}

func (c *Criteria) Eq(column string, v any) *Criteria {
	return c.Expr(TableRef+"."+column+" = ?", v)
}

func (c *Criteria) NotEq(column string, v any) *Criteria {
	return c.Expr(TableRef+"."+column+" <> ?", v)
}

// EqFold compares case-insensitively.
func (c *Criteria) EqFold(column, v string) *Criteria {
	return c.Expr("LOWER("+TableRef+"."+column+") = LOWER(?)", v)
}

func (c *Criteria) IsNull(column string) *Criteria {
	return c.Expr(TableRef + "." + column + " IS NULL")
}

func (c *Criteria) IsTrue(column string) *Criteria {
	return c.Expr(TableRef + "." + column + " = TRUE")
}

func (c *Criteria) IsFalse(column string) *Criteria {
	return c.Expr(TableRef + "." + column + " = FALSE")
}

func (c *Criteria) Active() *Criteria { return c.IsTrue("is_active") }

func (c *Criteria) Gte(column string, v any) *Criteria {
	return c.Expr(TableRef+"."+column+" >= ?", v)
}

func (c *Criteria) Lte(column string, v any) *Criteria {
	return c.Expr(TableRef+"."+column+" <= ?", v)
}

// Contains matches a case-insensitive substring. The pattern is wrapped in
// wildcards on both sides; wildcards inside it match literally.
func (c *Criteria) Contains(column, pattern string) *Criteria {
	return c.Expr("LOWER("+TableRef+"."+column+") LIKE LOWER(?) ESCAPE '\\'", "%"+escapeLike(pattern)+"%")
}

// In matches any of ids. An empty list matches nothing.
func (c *Criteria) In(column string, ids []int64) *Criteria {
	if len(ids) == 0 {
		return c.Expr("1 = 0")
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	return c.Expr(TableRef+"."+column+" IN ("+marks+")", args...)
}

func (c *Criteria) render(alias string) (string, []any) {
	if c == nil || len(c.conds) == 0 {
		return "", nil
	}
	parts := make([]string, len(c.conds))
	var args []any
	for i, cd := range c.conds {
		parts[i] = strings.ReplaceAll(cd.expr, TableRef, alias)
		args = append(args, cd.args...)
	}
	return strings.Join(parts, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
