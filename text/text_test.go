package text_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/value-engine/generic"
	"github.com/warp/value-engine/text"
)

func newText(t *testing.T, cfg text.Config) *text.Constraint {
	t.Helper()
	c, err := text.NewConstraint(cfg, generic.Environment{})
	require.NoError(t, err)
	return c
}

func lit(s string) []generic.Operand { return []generic.Operand{generic.Literal(generic.Text(s))} }

func TestText_FormatAndSerialize(t *testing.T) {
	single := newText(t, text.Config{})
	multi := newText(t, text.Config{Multiline: true})

	v := single.CreateValue(generic.Text("  Hello \n  world "))
	assert.Equal(t, "Hello world", v.Format())
	assert.True(t, v.Serialize().Equal(generic.Text("Hello world")))

	m := multi.CreateValue(generic.Text("first line\nsecond"))
	assert.Equal(t, "first line\nsecond", m.Format())
	assert.Equal(t, "first line", m.Preview())

	n := single.CreateValue(generic.NumberFromInt(42))
	assert.Equal(t, "42", n.Format())

	null := single.CreateValue(generic.Null())
	assert.True(t, null.IsValid(false))
	assert.True(t, null.Serialize().IsNull())
	assert.True(t, null.Copy().Serialize().IsNull())

	assert.False(t, single.CreateValue(generic.List("a")).IsValid(true))
}

func TestText_MaxLength(t *testing.T) {
	c := newText(t, text.Config{MaxLength: 5})

	assert.True(t, c.CreateValue(generic.Text("žluťo")).IsValid(false))
	assert.False(t, c.CreateValue(generic.Text("žluťou")).IsValid(false))
	assert.True(t, c.CreateValue(generic.Text("žluťou")).IsValid(true))
	assert.Equal(t, "žlu…", c.CreateValue(generic.Text("žluťou")).FormatUnits(3))

	_, err := text.NewConstraint(text.Config{MaxLength: -1}, generic.Environment{})
	assert.ErrorIs(t, err, generic.ErrInvalidRange)
}

func TestText_MeetCondition(t *testing.T) {
	c := newText(t, text.Config{})
	v := c.CreateValue(generic.Text("Příliš žluťoučký kůň"))

	tests := []struct {
		name     string
		cond     generic.ConditionType
		operands []generic.Operand
		want     bool
	}{
		{"contains folded", generic.CondContains, lit("ZLUTOUCKY"), true},
		{"not contains", generic.CondNotContains, lit("pes"), true},
		{"starts with", generic.CondStartsWith, lit("prilis"), true},
		{"ends with", generic.CondEndsWith, lit("kun"), true},
		{"equals folded", generic.CondEquals, lit("prilis zlutoucky kun"), true},
		{"not equals", generic.CondNotEquals, lit("kun"), true},
		{"in", generic.CondIn, []generic.Operand{generic.Literal(generic.List("a", "Příliš žluťoučký kůň"))}, true},
		{"not empty", generic.CondNotEmpty, nil, true},
		{"ordering is unsupported", generic.CondGreaterThan, lit("a"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.MeetCondition(tt.cond, tt.operands))
		})
	}
}

func TestText_EmptinessLaw(t *testing.T) {
	c := newText(t, text.Config{})

	assert.False(t, c.CreateValue(generic.Text("0")).MeetCondition(generic.CondIsEmpty, nil))
	assert.True(t, c.CreateValue(generic.Text("")).MeetCondition(generic.CondIsEmpty, nil))
	assert.True(t, c.CreateValue(generic.Text(" \t")).MeetCondition(generic.CondIsEmpty, nil))
	assert.True(t, c.CreateValue(generic.Null()).MeetCondition(generic.CondIsEmpty, nil))
	assert.False(t, c.CreateValue(generic.Text("some@example.com")).MeetCondition(generic.CondIsEmpty, nil))
}

func TestText_CompareAndEdit(t *testing.T) {
	c := newText(t, text.Config{})

	assert.Equal(t, -1, c.CreateValue(generic.Text("Ábel")).CompareTo(c.CreateValue(generic.Text("beta"))))
	assert.Equal(t, 0, c.CreateValue(generic.Text("ABEL")).CompareTo(c.CreateValue(generic.Text("ábel"))))
	assert.Nil(t, c.CreateValue(generic.Text("x")).Increment())

	v := c.CreateValue(generic.Null()).ParseInput("  typing  ")
	assert.Equal(t, "  typing  ", v.Format())
	assert.Equal(t, "typing", v.Copy().Format())
	assert.True(t, v.MeetFullTexts([]string{"TYP"}))
}
