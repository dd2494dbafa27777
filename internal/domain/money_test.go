package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinor(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    int64
		wantErr bool
	}{
		{name: "whole amount", in: "1500", want: 150000},
		{name: "two decimals", in: "15.25", want: 1525},
		{name: "one decimal", in: "0.5", want: 50},
		{name: "negative keeps sign", in: "-3", want: -300},
		{name: "three decimals rejected", in: "1.005", wantErr: true},
		{name: "out of range", in: "1e30", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ToMinor(decimal.RequireFromString(tc.in))
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFromMinor(t *testing.T) {
	assert.Equal(t, "65.00", FromMinor(6500).StringFixed(2))
	assert.Equal(t, "0.07", FromMinor(7).StringFixed(2))
}
