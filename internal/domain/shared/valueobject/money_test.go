package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromInt(100), TWD)
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(100)))
		assert.Equal(t, TWD, m.Currency())
	})

	t.Run("rejects empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		assert.Error(t, err)
	})
}

func TestMoney_AddSubtract(t *testing.T) {
	a := NewMoneyTWDFromInt(250)
	b := NewMoneyTWDFromInt(50)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Amount().Equal(decimal.NewFromInt(300)))

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.True(t, diff.Amount().Equal(decimal.NewFromInt(200)))

	usd, _ := NewMoney(decimal.NewFromInt(10), USD)
	_, err = a.Add(usd)
	assert.Error(t, err)
}

func TestMoney_RoundBank(t *testing.T) {
	// Half-to-even: 12.5 rounds down to 12, 13.5 rounds up to 14
	tests := []struct {
		amount string
		want   int64
	}{
		{"12.5", 12},
		{"13.5", 14},
		{"12.4", 12},
		{"12.6", 13},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			d, err := decimal.NewFromString(tt.amount)
			require.NoError(t, err)
			m := NewMoneyTWD(d).RoundBank(0)
			assert.True(t, m.Amount().Equal(decimal.NewFromInt(tt.want)),
				"got %s", m.Amount())
		})
	}
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	m := NewMoneyTWDFromInt(1050)

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))
}

func TestMoney_Scan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("123.45"))
	assert.True(t, m.Amount().Equal(decimal.RequireFromString("123.45")))
	assert.Equal(t, DefaultCurrency, m.Currency())

	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsZero())
}
