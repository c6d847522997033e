package intent

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hatcher/secretaria/secretaria/store"
)

// Ordered verb lists; first containment match wins, debits checked before
// credits.
var debitVerbs = []string{"gastei", "paguei", "comprei", "debitou", "saiu"}
var creditVerbs = []string{"recebi", "entrou", "ganhei", "depositei"}

var amountPattern = regexp.MustCompile(`[0-9]+([.,][0-9]+)?`)
var signedAmountPattern = regexp.MustCompile(`[-+]?[0-9]+([.,][0-9]+)?`)

// Classification is a recognized financial transaction in free text.
type Classification struct {
	Kind   store.LedgerKind
	Amount float64
}

// Classify scans text for a financial-transaction intent. Both a verb and a
// numeric value are required; otherwise it returns nil and the caller falls
// through to the completion client.
func Classify(text string) *Classification {
	lower := strings.ToLower(text)

	var kind store.LedgerKind
	for _, verb := range debitVerbs {
		if strings.Contains(lower, verb) {
			kind = store.KindDebit
			break
		}
	}
	if kind == "" {
		for _, verb := range creditVerbs {
			if strings.Contains(lower, verb) {
				kind = store.KindCredit
				break
			}
		}
	}
	if kind == "" {
		return nil
	}

	amount, ok := parseMatch(amountPattern.FindString(lower))
	if !ok {
		return nil
	}
	return &Classification{Kind: kind, Amount: amount}
}

// ParseAmount extracts the first signed decimal number in text, accepting
// comma or dot as the decimal separator.
func ParseAmount(text string) (float64, bool) {
	return parseMatch(signedAmountPattern.FindString(text))
}

func parseMatch(match string) (float64, bool) {
	if match == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
