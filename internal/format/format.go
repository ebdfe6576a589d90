// Package format отвечает за локализованное отображение денег и дат.
// Вся арифметика денег живёт в целых копейках, деление на 100 и
// группировка разрядов происходят только здесь, на выводе.
package format

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Символы валют, которые реально встречаются в предложениях.
var currencySymbols = map[string]string{
	"RUB": "₽",
	"UAH": "₴",
	"EUR": "€",
	"USD": "$",
}

var rusPrinter = message.NewPrinter(language.Russian)

// Currency форматирует сумму в копейках: "3 999,00 ₽".
// Разряды группируются по правилам русской локали.
func Currency(cents int64, currency string) string {
	negative := cents < 0
	if negative {
		cents = -cents
	}

	whole := cents / 100
	frac := cents % 100

	formatted := rusPrinter.Sprintf("%d", whole)
	result := fmt.Sprintf("%s,%02d %s", formatted, frac, currencySymbol(currency))
	if negative {
		return "-" + result
	}
	return result
}

// Date форматирует дату как в ru-RU: ДД.ММ.ГГГГ.
func Date(value time.Time) string {
	return value.Format("02.01.2006")
}

// DateOptional форматирует опциональную дату, nil превращается в пустую строку.
func DateOptional(value *time.Time) string {
	if value == nil {
		return ""
	}
	return Date(*value)
}

func currencySymbol(code string) string {
	if symbol, ok := currencySymbols[code]; ok {
		return symbol
	}
	return code
}
