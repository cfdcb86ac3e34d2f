package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		amount  string
		want    string
		wantErr error
	}{
		{amount: "30", want: "30"},
		{amount: " -30.50 ", want: "-30.5"},
		{amount: "0.0001", want: "0.0001"},
		{amount: "-0.0001", want: "-0.0001"},
		{amount: "9999999999999999.9999", want: "9999999999999999.9999"},
		{amount: "10000000000000000", wantErr: ErrInvalidAmount},
		{amount: "-10000000000000000", wantErr: ErrInvalidAmount},
		{amount: "0.00001", wantErr: ErrInvalidAmount},
		{amount: "0", wantErr: ErrInvalidAmount},
		{amount: "-0.0000", wantErr: ErrInvalidAmount},
		{amount: "1e-5", wantErr: ErrInvalidAmount},
		{amount: "abc", wantErr: ErrInvalidAmount},
		{amount: "", wantErr: ErrInvalidAmount},
	}

	for _, tc := range testCases {
		got, err := ParseAmount(tc.amount)
		if tc.wantErr != nil {
			require.ErrorIs(t, err, tc.wantErr, tc.amount)
			continue
		}

		require.NoError(t, err, tc.amount)
		require.True(t, got.Equal(decimal.RequireFromString(tc.want)), "%s parsed as %s", tc.amount, got)
	}
}
