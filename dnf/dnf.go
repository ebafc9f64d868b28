// Package dnf compiles a disjunctive-normal-form metadata predicate into a
// single SQL fragment usable in a WHERE clause against the files table and
// its jsonb metadata column.
//
// Grounded on original_source/metacat/db/dbobjects2.py's
// MetaExpressionDNF.sql_and / sql, translated from Python f-string assembly
// to the fmt.Sprintf-composition idiom used throughout
// database/postgres/database.go and schema/generator.go in sqldef.
package dnf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/scicatalog/catalog/catalogerr"
	"github.com/scicatalog/catalog/model"
)

// Shape names the four argument shapes an Atom's attribute reference can
// take.
type Shape int

const (
	Scalar Shape = iota
	ArraySubscript
	ArrayAny
	ArrayLength
)

// Op names the operator of an atomic predicate.
type Op int

const (
	Present Op = iota
	NotPresent
	CmpOp
	InRange
	NotInRange
	InSet
	NotInSet
)

// Atom is one atomic predicate within an AND-term.
type Atom struct {
	Attribute string
	Shape     Shape
	Subscript any // int or string; meaningful only when Shape == ArraySubscript

	Op  Op
	Neg bool

	// Comparator holds the CmpOp comparator: one of "=", "!=", "<", "<=",
	// ">", ">=", "~", "~*", "!~", "!~*".
	Comparator string
	Literal    any

	Low, High any // InRange / NotInRange

	Set []any // InSet / NotInSet
}

// And is a conjunction of atomic predicates.
type And []Atom

// Expr is a disjunction of AND-terms: the full DNF expression tree.
type Expr []And

// AliasCounter hands out unique table aliases within one compiled query. A
// fresh counter is created per compilation; nothing here is package-level
// state, per the engine's concurrency design.
type AliasCounter struct{ n int }

// NewAliasCounter returns a counter starting at zero.
func NewAliasCounter() *AliasCounter { return &AliasCounter{} }

// Next returns the next unique alias built from prefix, e.g. Next("t") ->
// "t0", "t1", "t2", ...
func (c *AliasCounter) Next(prefix string) string {
	a := fmt.Sprintf("%s%d", prefix, c.n)
	c.n++
	return a
}

// Compile translates expr into a WHERE-clause fragment referencing the
// table alias. An empty expression compiles to "null", meaning "no WHERE
// clause"; callers should elide the clause in that case rather than emit
// "where null".
func Compile(expr Expr, alias string) (string, error) {
	if len(expr) == 0 {
		return "null", nil
	}
	andTerms := make([]string, 0, len(expr))
	for _, and := range expr {
		term, err := compileAnd(alias, and)
		if err != nil {
			return "", err
		}
		andTerms = append(andTerms, term)
	}
	if len(andTerms) == 1 {
		return andTerms[0], nil
	}
	for i, t := range andTerms {
		andTerms[i] = "(" + t + ")"
	}
	return strings.Join(andTerms, " or "), nil
}

func compileAnd(alias string, and And) (string, error) {
	if len(and) == 0 {
		return "true", nil
	}
	if len(and) == 1 {
		return compileAtom(alias, and[0])
	}
	terms := make([]string, 0, len(and))
	for _, atom := range and {
		term, err := compileAtom(alias, atom)
		if err != nil {
			return "", err
		}
		terms = append(terms, "("+term+")")
	}
	return strings.Join(terms, " and "), nil
}

func compileAtom(alias string, a Atom) (string, error) {
	if a.Shape == Scalar && model.FixedColumns[a.Attribute] {
		return compileFixedColumn(alias, a)
	}
	if a.Shape == ArrayLength {
		return compileArrayLength(alias, a)
	}
	if a.Op == Present || a.Op == NotPresent {
		return compileJSONPresence(alias, a)
	}
	return compileJSONPath(alias, a)
}

// --- fixed columns (rule 1) ---

func compileFixedColumn(alias string, a Atom) (string, error) {
	col := fmt.Sprintf("%s.%s", alias, a.Attribute)
	switch a.Op {
	case Present:
		return boolLiteralWithNeg(true, a.Neg), nil
	case NotPresent:
		return boolLiteralWithNeg(false, a.Neg), nil
	case CmpOp:
		comparator, bakedNeg, err := sqlComparator(a.Comparator)
		if err != nil {
			return "", err
		}
		lit, err := sqlLiteral(a.Literal)
		if err != nil {
			return "", err
		}
		final := bakedNeg != a.Neg
		if final {
			comparator, err = negateSQLComparator(comparator)
			if err != nil {
				return "", err
			}
		}
		return fmt.Sprintf("%s %s %s", col, comparator, lit), nil
	case InRange, NotInRange:
		low, err := sqlLiteral(a.Low)
		if err != nil {
			return "", err
		}
		high, err := sqlLiteral(a.High)
		if err != nil {
			return "", err
		}
		negRange := (a.Op == NotInRange) != a.Neg
		if negRange {
			return fmt.Sprintf("%s not between %s and %s", col, low, high), nil
		}
		return fmt.Sprintf("%s between %s and %s", col, low, high), nil
	case InSet, NotInSet:
		lits, err := sqlLiteralList(a.Set)
		if err != nil {
			return "", err
		}
		negSet := (a.Op == NotInSet) != a.Neg
		if negSet {
			return fmt.Sprintf("%s not in (%s)", col, lits), nil
		}
		return fmt.Sprintf("%s in (%s)", col, lits), nil
	default:
		return "", catalogerr.Newf(catalogerr.QueryCompileError, "unknown operator on fixed column %q", a.Attribute)
	}
}

func boolLiteralWithNeg(v, neg bool) string {
	if v != neg {
		return "true"
	}
	return "false"
}

// --- JSON key presence (rule 4) ---

func compileJSONPresence(alias string, a Atom) (string, error) {
	key, err := jsonStringLiteral(a.Attribute)
	if err != nil {
		return "", err
	}
	base := fmt.Sprintf("%s.metadata ? %s", alias, key)
	final := (a.Op == NotPresent) != a.Neg
	if final {
		return "not (" + base + ")", nil
	}
	return base, nil
}

// --- array_length (rule 3) ---

func compileArrayLength(alias string, a Atom) (string, error) {
	if a.Op == Present || a.Op == NotPresent {
		return compileJSONPresence(alias, a)
	}
	name, err := sqlStringLiteral(a.Attribute)
	if err != nil {
		return "", err
	}
	lenExpr := fmt.Sprintf("jsonb_array_length(%s.metadata -> %s)", alias, name)
	switch a.Op {
	case CmpOp:
		comparator, bakedNeg, err := sqlComparator(a.Comparator)
		if err != nil {
			return "", err
		}
		if isRegexComparator(a.Comparator) {
			return "", catalogerr.Newf(catalogerr.QueryCompileError, "regex comparator not valid on array_length attribute %q", a.Attribute)
		}
		lit, err := sqlLiteral(a.Literal)
		if err != nil {
			return "", err
		}
		final := bakedNeg != a.Neg
		if final {
			comparator, err = negateSQLComparator(comparator)
			if err != nil {
				return "", err
			}
		}
		return fmt.Sprintf("%s %s %s", lenExpr, comparator, lit), nil
	case InRange, NotInRange:
		low, err := sqlLiteral(a.Low)
		if err != nil {
			return "", err
		}
		high, err := sqlLiteral(a.High)
		if err != nil {
			return "", err
		}
		if (a.Op == NotInRange) != a.Neg {
			return fmt.Sprintf("%s not between %s and %s", lenExpr, low, high), nil
		}
		return fmt.Sprintf("%s between %s and %s", lenExpr, low, high), nil
	case InSet, NotInSet:
		lits, err := sqlLiteralList(a.Set)
		if err != nil {
			return "", err
		}
		if (a.Op == NotInSet) != a.Neg {
			return fmt.Sprintf("%s not in (%s)", lenExpr, lits), nil
		}
		return fmt.Sprintf("%s in (%s)", lenExpr, lits), nil
	default:
		return "", catalogerr.Newf(catalogerr.QueryCompileError, "unknown operator on array_length attribute %q", a.Attribute)
	}
}

// --- JSON path predicates (rule 2): scalar, array_subscript, array_any ---

func compileJSONPath(alias string, a Atom) (string, error) {
	path, err := jsonPath(a.Attribute, a.Shape, a.Subscript)
	if err != nil {
		return "", err
	}

	target := path
	useFilter := a.Shape == ArrayAny
	if useFilter {
		target = "@"
	}

	inner, bakedNeg, err := jsonPathPredicate(target, a)
	if err != nil {
		return "", err
	}
	final := bakedNeg != a.Neg
	if final {
		inner = "!(" + inner + ")"
	}

	var body string
	if useFilter {
		body = fmt.Sprintf("%s ? (%s)", path, inner)
	} else {
		body = inner
	}

	operator := "@@"
	if useFilter {
		operator = "@?"
	}
	lit, err := jsonStringLiteral(body)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s.metadata %s %s", alias, operator, lit), nil
}

// jsonPathPredicate returns the predicate text over target plus whether the
// op still needs an outer negation (true only for !~ / !~*, whose text is
// the positive like_regex form), so the caller's Neg flag can cancel rather
// than double up. NotInRange and NotInSet already produce their negative
// form and need no outer negation.
func jsonPathPredicate(target string, a Atom) (string, bool, error) {
	switch a.Op {
	case CmpOp:
		if isRegexComparator(a.Comparator) {
			bang := strings.HasPrefix(a.Comparator, "!")
			base := strings.TrimPrefix(a.Comparator, "!")
			flag := ""
			if base == "~*" {
				flag = ` flag "i"`
			}
			lit, err := jsonLiteral(a.Literal)
			if err != nil {
				return "", false, err
			}
			return fmt.Sprintf("%s like_regex %s%s", target, lit, flag), bang, nil
		}
		if _, _, err := sqlComparator(a.Comparator); err != nil {
			return "", false, err
		}
		comparator := a.Comparator
		if comparator == "=" {
			comparator = "=="
		}
		lit, err := jsonLiteral(a.Literal)
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("%s %s %s", target, comparator, lit), false, nil
	case InRange:
		low, high, err := jsonLiteralPair(a.Low, a.High)
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("%s >= %s && %s <= %s", target, low, target, high), false, nil
	case NotInRange:
		low, high, err := jsonLiteralPair(a.Low, a.High)
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("%s < %s || %s > %s", target, low, target, high), false, nil
	case InSet:
		terms, err := jsonEqualityTerms(target, "==", a.Set)
		if err != nil {
			return "", false, err
		}
		return strings.Join(terms, " || "), false, nil
	case NotInSet:
		terms, err := jsonEqualityTerms(target, "!=", a.Set)
		if err != nil {
			return "", false, err
		}
		return strings.Join(terms, " && "), false, nil
	default:
		return "", false, catalogerr.Newf(catalogerr.QueryCompileError, "unknown operator in JSON-path predicate")
	}
}

func jsonEqualityTerms(target, op string, set []any) ([]string, error) {
	terms := make([]string, 0, len(set))
	for _, v := range set {
		lit, err := jsonLiteral(v)
		if err != nil {
			return nil, err
		}
		terms = append(terms, fmt.Sprintf("%s %s %s", target, op, lit))
	}
	return terms, nil
}

func jsonLiteralPair(low, high any) (string, string, error) {
	l, err := jsonLiteral(low)
	if err != nil {
		return "", "", err
	}
	h, err := jsonLiteral(high)
	if err != nil {
		return "", "", err
	}
	return l, h, nil
}

// jsonPath builds "$."<name>"" optionally followed by a subscript or
// wildcard suffix, per rule 2's argument-shape grammar.
func jsonPath(name string, shape Shape, subscript any) (string, error) {
	key, err := jsonEscape(name)
	if err != nil {
		return "", err
	}
	base := fmt.Sprintf(`$."%s"`, key)
	switch shape {
	case Scalar:
		return base, nil
	case ArrayAny:
		return base + "[*]", nil
	case ArraySubscript:
		switch s := subscript.(type) {
		case int:
			return fmt.Sprintf("%s[%d]", base, s), nil
		case int64:
			return fmt.Sprintf("%s[%d]", base, s), nil
		case string:
			esc, err := jsonEscape(s)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf(`%s."%s"`, base, esc), nil
		default:
			return "", catalogerr.Newf(catalogerr.QueryCompileError, "unsupported array_subscript index type %T", subscript)
		}
	default:
		return "", catalogerr.Newf(catalogerr.QueryCompileError, "unknown argument shape")
	}
}

// --- operator and literal helpers ---

func isRegexComparator(c string) bool {
	switch c {
	case "~", "~*", "!~", "!~*":
		return true
	}
	return false
}

// sqlComparator maps a CmpOp comparator to its native SQL form and reports
// whether that form already bakes in a negation (true only for !~, !~*).
func sqlComparator(c string) (string, bool, error) {
	switch c {
	case "=", "!=", "<", "<=", ">", ">=", "~", "~*":
		return c, false, nil
	case "!~", "!~*":
		return c, true, nil
	default:
		return "", false, catalogerr.Newf(catalogerr.QueryCompileError, "unknown comparator %q", c)
	}
}

func negateSQLComparator(c string) (string, error) {
	switch c {
	case "=":
		return "!=", nil
	case "!=":
		return "=", nil
	case "<":
		return ">=", nil
	case "<=":
		return ">", nil
	case ">":
		return "<=", nil
	case ">=":
		return "<", nil
	case "~":
		return "!~", nil
	case "~*":
		return "!~*", nil
	case "!~":
		return "~", nil
	case "!~*":
		return "~*", nil
	default:
		return "", catalogerr.Newf(catalogerr.QueryCompileError, "cannot negate comparator %q", c)
	}
}

func sqlLiteralList(vs []any) (string, error) {
	parts := make([]string, 0, len(vs))
	for _, v := range vs {
		lit, err := sqlLiteral(v)
		if err != nil {
			return "", err
		}
		parts = append(parts, lit)
	}
	return strings.Join(parts, ", "), nil
}

// sqlLiteral encodes a value for use directly in SQL text (rule 6).
func sqlLiteral(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "null", nil
	case bool:
		if t {
			return "true", nil
		}
		return "false", nil
	case string:
		s, err := sqlStringLiteral(t)
		if err != nil {
			return "", err
		}
		return s, nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), nil
	default:
		return "", catalogerr.Newf(catalogerr.QueryCompileError, "unsupported literal type %T", v)
	}
}

func sqlStringLiteral(s string) (string, error) {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'", nil
}

// jsonLiteral encodes a value for embedding inside a JSON-path string
// literal (rule 6: strings double-quoted and JSON-escaped).
func jsonLiteral(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "null", nil
	case bool:
		if t {
			return "true", nil
		}
		return "false", nil
	case string:
		esc, err := jsonEscape(t)
		if err != nil {
			return "", err
		}
		return `"` + esc + `"`, nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), nil
	default:
		return "", catalogerr.Newf(catalogerr.QueryCompileError, "unsupported literal type %T", v)
	}
}

// jsonStringLiteral produces a SQL string literal whose content is s,
// used to pass an assembled JSON-path expression as the right-hand operand
// of @@ / @? / ?.
func jsonStringLiteral(s string) (string, error) {
	return sqlStringLiteral(s)
}

func jsonEscape(s string) (string, error) {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}
