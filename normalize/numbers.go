package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// Numeral expansion. Synthesis engines read bare digits unreliably in
// mixed-script text, so every number is spelled out before the script
// reaches the provider.

var (
	onesWords = []string{
		"zero", "one", "two", "three", "four", "five", "six", "seven",
		"eight", "nine", "ten", "eleven", "twelve", "thirteen", "fourteen",
		"fifteen", "sixteen", "seventeen", "eighteen", "nineteen",
	}
	tensWords = []string{
		"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy",
		"eighty", "ninety",
	}

	decimalPattern = regexp.MustCompile(`\d+\.\d+`)
	integerPattern = regexp.MustCompile(`\d+`)
)

// expandNumerals rewrites every decimal and bare integer in the text
// as spoken words. The output contains no digits, so the rule is a
// no-op on its own output.
func expandNumerals(text string) string {
	text = decimalPattern.ReplaceAllStringFunc(text, decimalWords)
	text = integerPattern.ReplaceAllStringFunc(text, integerWords)
	return text
}

// integerWords converts one digit-run token to words.
func integerWords(token string) string {
	// Very long numbers read digit-by-digit: "one two three..." is
	// intelligible where "twelve million three hundred..." is not.
	if len(token) >= 7 {
		return digitByDigit(token)
	}

	n, err := strconv.Atoi(token)
	if err != nil {
		return token
	}

	// Four-digit tokens in the plausible year range get the split
	// century reading.
	if len(token) == 4 && n >= 1100 && n <= 2099 {
		return yearWords(n)
	}

	return cardinalWords(n)
}

// yearWords reads a year the way a speaker would.
//
// Convention for the century boundary: 2000 reads "two thousand" and
// 2001–2009 read "two thousand one" … "two thousand nine" (not
// "twenty oh one"). Other even centuries read "<century> hundred"
// ("nineteen hundred"); everything else splits century and remainder
// ("nineteen seventy-five", "twenty thirteen", "nineteen oh five").
func yearWords(n int) string {
	century := n / 100
	rem := n % 100

	switch {
	case n == 2000:
		return "two thousand"
	case n > 2000 && n < 2010:
		return "two thousand " + onesWords[rem]
	case rem == 0:
		return belowHundred(century) + " hundred"
	case rem < 10:
		return belowHundred(century) + " oh " + onesWords[rem]
	default:
		return belowHundred(century) + " " + belowHundred(rem)
	}
}

// cardinalWords expands 0..999999 in the usual place-value reading.
func cardinalWords(n int) string {
	if n == 0 {
		return "zero"
	}

	var parts []string
	if n >= 1000 {
		parts = append(parts, belowThousand(n/1000), "thousand")
		n %= 1000
	}
	if n > 0 {
		parts = append(parts, belowThousand(n))
	}
	return strings.Join(parts, " ")
}

func belowThousand(n int) string {
	if n >= 100 {
		head := onesWords[n/100] + " hundred"
		if rem := n % 100; rem > 0 {
			return head + " " + belowHundred(rem)
		}
		return head
	}
	return belowHundred(n)
}

func belowHundred(n int) string {
	if n < 20 {
		return onesWords[n]
	}
	if rem := n % 10; rem > 0 {
		return tensWords[n/10] + "-" + onesWords[rem]
	}
	return tensWords[n/10]
}

// decimalWords reads "3.14" as "three point one four".
func decimalWords(token string) string {
	dot := strings.IndexByte(token, '.')
	intPart, fracPart := token[:dot], token[dot+1:]

	head := integerWords(intPart)
	return head + " point " + digitByDigit(fracPart)
}

func digitByDigit(digits string) string {
	words := make([]string, 0, len(digits))
	for _, d := range digits {
		if d < '0' || d > '9' {
			continue
		}
		words = append(words, onesWords[d-'0'])
	}
	return strings.Join(words, " ")
}
