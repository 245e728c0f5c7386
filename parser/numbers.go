package parser

import "strconv"

// parseInt64 parses a decimal integer lexeme, reporting ok=false on
// overflow so the caller can promote the literal to a
// FloatingPointConstant instead of rejecting it.
func parseInt64(lexeme string) (int64, bool) {
	v, err := strconv.ParseInt(lexeme, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseFloat(lexeme string) (float64, bool) {
	v, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
