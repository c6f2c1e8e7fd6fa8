package duration_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/value-engine/duration"
	"github.com/warp/value-engine/generic"
)

func newDurationConstraint(t *testing.T, cfg duration.Config) *duration.Constraint {
	t.Helper()
	c, err := duration.NewConstraint(cfg, generic.Environment{
		UnitLetter: func(unit string) string { return czechLetters(duration.Unit(unit)) },
	})
	require.NoError(t, err)
	return c
}

func millisOf(t *testing.T, v generic.Value) int64 {
	t.Helper()
	dv, ok := v.(*duration.Value)
	require.True(t, ok, "expected *duration.Value, got %T", v)
	ms, valid := dv.Millis()
	require.True(t, valid)
	return ms
}

// =============================================================================
// VALUE TESTS
// =============================================================================

func TestValue_FormatAndSerialize(t *testing.T) {
	// GIVEN: A work-calendar constraint with native weeks "t"
	// WHEN: Building a value from canonical text
	// THEN: It formats with native letters and serializes to milliseconds

	c := newDurationConstraint(t, duration.Config{})
	v := c.CreateValue(generic.Text("8w20m"))

	assert.True(t, v.IsValid(false))
	assert.Equal(t, "8t20m", v.Format())
	assert.Equal(t, "8t20m", v.Preview())
	assert.Equal(t, "8t", v.FormatUnits(1))
	assert.True(t, v.Serialize().Equal(generic.NumberFromInt(577_200_000)))
}

func TestValue_RoundTrip(t *testing.T) {
	// GIVEN: Valid inputs of every raw shape
	// WHEN: Rebuilding from Serialize()
	// THEN: Format is unchanged

	c := newDurationConstraint(t, duration.Config{Type: duration.TypeClassic})
	inputs := []generic.Raw{
		generic.Text("2w3d4mww4d9wms"),
		generic.Text("1t 2d"),
		generic.Text("3600000"),
		generic.NumberFromInt(90_061_000),
		generic.NumberFromInt(0),
	}
	for _, raw := range inputs {
		v := c.CreateValue(raw)
		require.True(t, v.IsValid(false), raw.String())
		assert.Equal(t, v.Format(), c.CreateValue(v.Serialize()).Format(), raw.String())
		assert.True(t, v.Copy().Serialize().Equal(v.Serialize()), raw.String())
	}
}

func TestValue_Invalid(t *testing.T) {
	// GIVEN: Input mixing canonical and native week letters
	// WHEN: Building a value
	// THEN: It is invalid, echoes the raw text and saves as 0

	c := newDurationConstraint(t, duration.Config{})
	v := c.CreateValue(generic.Text("1w1t4t"))

	assert.False(t, v.IsValid(false))
	assert.False(t, v.IsValid(true))
	assert.Equal(t, "1w1t4t", v.Format())
	assert.True(t, v.Serialize().Equal(generic.Text("1w1t4t")))
	assert.Equal(t, int64(0), v.(*duration.Value).SaveMillis())
	assert.Nil(t, v.Increment())
	assert.Nil(t, v.Decrement())

	for _, raw := range []generic.Raw{generic.Null(), generic.Text(""), generic.NumberFromFloat(1.5), generic.NumberFromInt(-1), generic.List("1h")} {
		assert.False(t, c.CreateValue(raw).IsValid(false), raw.String())
	}
}

func TestValue_CopyIsIdempotent(t *testing.T) {
	c := newDurationConstraint(t, duration.Config{})

	for _, raw := range []generic.Raw{generic.Text("1h"), generic.Text("garbage"), generic.Null()} {
		v := c.CreateValue(raw)
		assert.True(t, v.Copy().Serialize().Equal(v.Serialize()), raw.String())
	}
}

func TestValue_ParseInputKeepsEditBuffer(t *testing.T) {
	// GIVEN: A user typing "1w 2"
	// WHEN: Parsing the keystrokes
	// THEN: Format echoes them; Copy drops the buffer and reformats

	c := newDurationConstraint(t, duration.Config{})
	v := c.CreateValue(generic.Null()).ParseInput("1w 2")

	buf, ok := v.EditBuffer()
	assert.True(t, ok)
	assert.Equal(t, "1w 2", buf)
	assert.Equal(t, "1w 2", v.Format())
	assert.True(t, v.IsValid(false))

	cp := v.Copy()
	_, ok = cp.EditBuffer()
	assert.False(t, ok)
	assert.Equal(t, "1t", cp.Format())
}

func TestValue_IncrementDecrement(t *testing.T) {
	c := newDurationConstraint(t, duration.Config{})

	tests := []struct {
		name string
		in   string
		inc  int64
		dec  int64
	}{
		{"steps by smallest shown unit", "1w3h", week + 4*hour, week + 2*hour},
		{"single unit", "2d", 3 * day, day},
		{"zero steps by a second", "0", second, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := c.CreateValue(generic.Text(tt.in))
			inc := v.Increment()
			require.NotNil(t, inc)
			_, buffered := inc.EditBuffer()
			assert.False(t, buffered)
			assert.Equal(t, tt.inc, millisOf(t, inc))
			assert.Equal(t, tt.dec, millisOf(t, v.Decrement()))
		})
	}
}

func TestValue_CompareTo(t *testing.T) {
	c := newDurationConstraint(t, duration.Config{})
	oneDay := c.CreateValue(generic.Text("1d"))
	eightHours := c.CreateValue(generic.Text("8h"))
	oneWeek := c.CreateValue(generic.Text("1t"))
	broken := c.CreateValue(generic.Text("??"))

	assert.Equal(t, 0, oneDay.CompareTo(eightHours))
	assert.Equal(t, -1, oneDay.CompareTo(oneWeek))
	assert.Equal(t, 1, oneWeek.CompareTo(oneDay))
	assert.Equal(t, -1, broken.CompareTo(oneDay), "absent canonical form sorts first")
	assert.Equal(t, 1, oneDay.CompareTo(broken))
	assert.True(t, generic.IsOrderable(oneDay))
}

func TestValue_MeetCondition(t *testing.T) {
	c := newDurationConstraint(t, duration.Config{})
	v := c.CreateValue(generic.Text("1d4h")) // 12h
	lit := func(s string) generic.Operand { return generic.Literal(generic.Text(s)) }

	tests := []struct {
		name     string
		cond     generic.ConditionType
		operands []generic.Operand
		want     bool
	}{
		{"eq in other units", generic.CondEquals, []generic.Operand{lit("720m")}, true},
		{"neq", generic.CondNotEquals, []generic.Operand{lit("1d")}, true},
		{"gt", generic.CondGreaterThan, []generic.Operand{lit("1d")}, true},
		{"lte", generic.CondLowerThanEquals, []generic.Operand{lit("12h")}, true},
		{"lt invalid operand", generic.CondLowerThan, []generic.Operand{lit("??")}, false},
		{"between reversed bounds", generic.CondBetween, []generic.Operand{lit("2d"), lit("1d")}, true},
		{"notBetween", generic.CondNotBetween, []generic.Operand{lit("1h"), lit("2h")}, true},
		{"in", generic.CondIn, []generic.Operand{lit("1h"), lit("12h")}, true},
		{"not empty", generic.CondNotEmpty, nil, true},
		{"empty", generic.CondIsEmpty, nil, false},
		{"unknown condition", generic.ConditionType("near"), nil, false},
		{"text condition on orderable", generic.CondContains, []generic.Operand{lit("1")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.MeetCondition(tt.cond, tt.operands))
		})
	}
}

func TestValue_ZeroIsNotEmpty(t *testing.T) {
	c := newDurationConstraint(t, duration.Config{})

	assert.False(t, c.CreateValue(generic.Text("0")).MeetCondition(generic.CondIsEmpty, nil))
	assert.False(t, c.CreateValue(generic.NumberFromInt(0)).MeetCondition(generic.CondIsEmpty, nil))
	assert.True(t, c.CreateValue(generic.Text("  ")).MeetCondition(generic.CondIsEmpty, nil))
	assert.True(t, c.CreateValue(generic.Null()).MeetCondition(generic.CondIsEmpty, nil))
}

func TestValue_MeetFullTexts(t *testing.T) {
	c := newDurationConstraint(t, duration.Config{})
	v := c.CreateValue(generic.Text("8w20m"))

	assert.True(t, v.MeetFullTexts([]string{"8T", "20m"}))
	assert.False(t, v.MeetFullTexts([]string{"8w"}))
	assert.True(t, v.MeetFullTexts(nil))
}

func TestRegisteredBuilder(t *testing.T) {
	// GIVEN: A JSON config with a Classic calendar and hours as max unit
	// WHEN: Building through the registry
	// THEN: The duration constraint is returned with that config

	c, err := generic.BuildConstraint(generic.ConstraintDuration,
		json.RawMessage(`{"type":"Classic","maxUnit":"hours"}`), generic.Environment{})
	require.NoError(t, err)
	assert.Equal(t, generic.ConstraintDuration, c.Type())
	assert.Equal(t, generic.CategoryOrderable, c.Category())
	assert.Equal(t, "25h", c.CreateValue(generic.Text("1d1h")).Format())

	_, err = generic.BuildConstraint(generic.ConstraintDuration,
		json.RawMessage(`{"conversions":{"days":0}}`), generic.Environment{})
	assert.ErrorIs(t, err, generic.ErrInvalidConversionFactor)
}
