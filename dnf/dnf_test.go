package dnf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompileEmptyExpression(t *testing.T) {
	sql, err := Compile(Expr{}, "t")
	assert.NoError(t, err)
	assert.Equal(t, "null", sql)
}

// Scenario 1: metadata equality on a JSON key.
func TestCompileScalarEquality(t *testing.T) {
	expr := Expr{And{
		{Attribute: "run", Shape: Scalar, Op: CmpOp, Comparator: "=", Literal: int64(4242)},
	}}
	sql, err := Compile(expr, "t")
	assert.NoError(t, err)
	assert.Equal(t, `t.metadata @@ '$."run" == 4242'`, sql)
}

// Scenario 2: array-any with case-insensitive regex.
func TestCompileArrayAnyRegex(t *testing.T) {
	expr := Expr{And{
		{Attribute: "files", Shape: ArrayAny, Op: CmpOp, Comparator: "~*", Literal: `\.root$`},
	}}
	sql, err := Compile(expr, "t")
	assert.NoError(t, err)
	assert.Equal(t, `t.metadata @? '$."files"[*] ? (@ like_regex "\\.root$" flag "i")'`, sql)
}

// Scenario 3: array-length range with negation absorbed into "not between".
func TestCompileArrayLengthNotInRange(t *testing.T) {
	expr := Expr{And{
		{Attribute: "parents", Shape: ArrayLength, Op: NotInRange, Low: int64(2), High: int64(5)},
	}}
	sql, err := Compile(expr, "t")
	assert.NoError(t, err)
	assert.Equal(t, "jsonb_array_length(t.metadata -> 'parents') not between 2 and 5", sql)
}

func TestCompileFixedColumnComparison(t *testing.T) {
	expr := Expr{And{
		{Attribute: "creator", Shape: Scalar, Op: CmpOp, Comparator: "=", Literal: "alice"},
	}}
	sql, err := Compile(expr, "t")
	assert.NoError(t, err)
	assert.Equal(t, "t.creator = 'alice'", sql)
}

func TestCompileFixedColumnRange(t *testing.T) {
	expr := Expr{And{
		{Attribute: "size", Shape: Scalar, Op: InRange, Low: int64(1), High: int64(100)},
	}}
	sql, err := Compile(expr, "t")
	assert.NoError(t, err)
	assert.Equal(t, "t.size between 1 and 100", sql)
}

func TestCompilePresentAndNotPresent(t *testing.T) {
	expr := Expr{And{
		{Attribute: "run", Shape: Scalar, Op: Present},
	}}
	sql, err := Compile(expr, "t")
	assert.NoError(t, err)
	assert.Equal(t, `t.metadata ? 'run'`, sql)

	expr = Expr{And{
		{Attribute: "run", Shape: Scalar, Op: NotPresent},
	}}
	sql, err = Compile(expr, "t")
	assert.NoError(t, err)
	assert.Equal(t, `not (t.metadata ? 'run')`, sql)
}

func TestCompileDoubleNegationCancels(t *testing.T) {
	expr := Expr{And{
		{Attribute: "run", Shape: Scalar, Op: NotPresent, Neg: true},
	}}
	sql, err := Compile(expr, "t")
	assert.NoError(t, err)
	assert.Equal(t, `t.metadata ? 'run'`, sql)
}

func TestCompileInSetAndNotInSet(t *testing.T) {
	expr := Expr{And{
		{Attribute: "run", Shape: Scalar, Op: InSet, Set: []any{int64(1), int64(2)}},
	}}
	sql, err := Compile(expr, "t")
	assert.NoError(t, err)
	assert.Equal(t, `t.metadata @@ '$."run" == 1 || $."run" == 2'`, sql)

	expr = Expr{And{
		{Attribute: "run", Shape: Scalar, Op: NotInSet, Set: []any{int64(1), int64(2)}},
	}}
	sql, err = Compile(expr, "t")
	assert.NoError(t, err)
	assert.Equal(t, `t.metadata @@ '$."run" != 1 && $."run" != 2'`, sql)
}

func TestCompileDisjunctionOfConjunctions(t *testing.T) {
	expr := Expr{
		And{{Attribute: "creator", Shape: Scalar, Op: CmpOp, Comparator: "=", Literal: "alice"}},
		And{{Attribute: "creator", Shape: Scalar, Op: CmpOp, Comparator: "=", Literal: "bob"}},
	}
	sql, err := Compile(expr, "t")
	assert.NoError(t, err)
	assert.Equal(t, "(t.creator = 'alice') or (t.creator = 'bob')", sql)
}

func TestCompileUnknownComparatorFails(t *testing.T) {
	expr := Expr{And{
		{Attribute: "run", Shape: Scalar, Op: CmpOp, Comparator: "??"},
	}}
	_, err := Compile(expr, "t")
	assert.Error(t, err)
}

func TestAliasCounterProducesUniqueAliases(t *testing.T) {
	c := NewAliasCounter()
	assert.Equal(t, "t0", c.Next("t"))
	assert.Equal(t, "t1", c.Next("t"))
	assert.NotEqual(t, c.Next("t"), c.Next("t"))
}
