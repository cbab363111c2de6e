package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// FallbackDescription is used when nothing is left of a message after the
// amount token and the connector words are removed.
const FallbackDescription = "Gasto não identificado"

// currencyPattern matches a monetary token: an optional "R$" marker followed by
// digits with an optional comma or period decimal part. Covers "R$ 50,00",
// "R$50", "50,00", "50.00" and bare "50".
var currencyPattern = regexp.MustCompile(`(?i)(?:R\$\s?)?(\d+(?:[.,]\d+)?)`)

// stopwordPattern removes whole tokens that introduce an expense utterance and
// carry no descriptive value: verbs ("gastei", "paguei", "comprei"), connector
// prepositions and the currency words themselves.
var stopwordPattern = regexp.MustCompile(`(?i)\b(gastei|paguei|comprei|despesa|gasto|com|em|no|na|de|por|reais|real)\b`)

// AmountMatch describes the first monetary token found in a message.
type AmountMatch struct {
	// Token is the full matched substring, currency marker included.
	Token string
	// Value is the normalized numeric amount.
	Value float64
}

// ParseAmount locates the FIRST monetary token in text and normalizes it to a
// float. A comma is treated as the decimal separator, so "50,00" and "50.00"
// parse to the same value; comma as a thousands separator is not supported.
// When a message names several numbers, whichever the pattern meets first in
// reading order wins. Returns false when the text has no digits at all.
func ParseAmount(text string) (AmountMatch, bool) {
	m := currencyPattern.FindStringSubmatch(text)
	if m == nil {
		return AmountMatch{}, false
	}

	value, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
	if err != nil {
		return AmountMatch{}, false
	}

	return AmountMatch{Token: m[0], Value: value}, true
}

// NormalizeDescription derives a short label for the purchased item: the
// matched amount token is removed once, stopwords are stripped as whole tokens
// anywhere in the remainder, and whitespace is collapsed. An empty remainder
// yields FallbackDescription. Capitalization is left to the consumer.
func NormalizeDescription(text, amountToken string) string {
	s := text
	if amountToken != "" {
		s = strings.Replace(s, amountToken, " ", 1)
	}
	s = stopwordPattern.ReplaceAllString(s, " ")
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return FallbackDescription
	}
	return s
}

// Classify decides whether a parsed amount constitutes an expense. The
// deterministic path uses amount positivity as its sole signal; semantic
// judgment (greeting vs. spending intent) belongs to the model-backed engine.
func Classify(amount float64) bool {
	return amount > 0
}
