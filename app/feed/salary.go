package feed

import (
	"regexp"
	"strconv"
	"strings"
)

var salaryNumber = regexp.MustCompile(`\d[\d,]*`)

// ParseSalary extracts the numeric range from unstructured salary text.
// The min and max are nil when no numbers are present. A single number
// yields min == max.
func ParseSalary(salaryText string) (text string, min *int, max *int) {
	safe := NormalizeText(salaryText)
	if safe == "" {
		return "", nil, nil
	}

	text = Truncate(safe, 120)

	var numbers []int
	for _, token := range salaryNumber.FindAllString(safe, -1) {
		n, err := strconv.Atoi(strings.ReplaceAll(token, ",", ""))
		if err != nil {
			continue
		}
		numbers = append(numbers, n)
	}

	if len(numbers) == 0 {
		return text, nil, nil
	}

	lo, hi := numbers[0], numbers[0]
	for _, n := range numbers[1:] {
		if n < lo {
			lo = n
		}
		if n > hi {
			hi = n
		}
	}

	return text, &lo, &hi
}
