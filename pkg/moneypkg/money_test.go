package moneypkg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "Integer", input: "100", want: "100"},
		{name: "TwoDecimals", input: "100.50", want: "100.5"},
		{name: "Negative", input: "-15.25", want: "-15.25"},
		{name: "Zero", input: "0", want: "0"},
		{name: "Empty", input: "", wantErr: ErrInvalidAmount},
		{name: "NotANumber", input: "abc", wantErr: ErrInvalidAmount},
		{name: "TrailingGarbage", input: "10.5x", wantErr: ErrInvalidAmount},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := Parse(tc.input)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.want, m.String())
		})
	}
}

func TestArithmeticIsExact(t *testing.T) {
	// The classic float trap: 0.1 + 0.2 != 0.3 in binary floating point.
	sum := MustParse("0.1").Add(MustParse("0.2"))
	require.True(t, sum.Equal(MustParse("0.3")))

	diff := MustParse("1000.00").Sub(MustParse("999.99"))
	require.True(t, diff.Equal(MustParse("0.01")))
}

func TestComparisons(t *testing.T) {
	require.True(t, MustParse("99.99").LessThan(MustParse("100.00")))
	require.False(t, MustParse("100.00").LessThan(MustParse("100.00")))

	require.True(t, MustParse("100").Equal(MustParse("100.00")))

	require.True(t, MustParse("0.01").IsPositive())
	require.False(t, Zero().IsPositive())
	require.False(t, MustParse("-5").IsPositive())
}

func TestMustParsePanicsOnInvalidInput(t *testing.T) {
	require.Panics(t, func() { MustParse("not-money") })
}
