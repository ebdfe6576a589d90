package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCurrency(t *testing.T) {
	cases := []struct {
		name     string
		cents    int64
		currency string
		expected string
	}{
		{"группировка разрядов", 399900, "RUB", "3 999,00 ₽"},
		{"без группировки", 99900, "RUB", "999,00 ₽"},
		{"копейки дополняются нулём", 150005, "RUB", "1 500,05 ₽"},
		{"ноль", 0, "RUB", "0,00 ₽"},
		{"отрицательная сумма", -5000, "RUB", "-50,00 ₽"},
		{"гривна", 123456, "UAH", "1 234,56 ₴"},
		{"евро", 100, "EUR", "1,00 €"},
		{"доллар", 100, "USD", "1,00 $"},
		{"неизвестный код остаётся кодом", 100, "KZT", "1,00 KZT"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Currency(tc.cents, tc.currency))
		})
	}
}

func TestDate(t *testing.T) {
	value := time.Date(2026, time.March, 7, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "07.03.2026", Date(value))
}

func TestDateOptional(t *testing.T) {
	assert.Equal(t, "", DateOptional(nil))

	value := time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "31.12.2026", DateOptional(&value))
}
