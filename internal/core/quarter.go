package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Quarter is a calendar quarter: Q1 is Jan-Mar, Q4 is Oct-Dec.
type Quarter int

// QuarterOf returns the quarter containing month.
func QuarterOf(month int) Quarter {
	return Quarter((month-1)/3 + 1)
}

// ParseQuarter accepts "1".."4" or "Q1".."Q4".
func ParseQuarter(s string) (Quarter, error) {
	s = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "Q")
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 4 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuarter, s)
	}
	return Quarter(n), nil
}

func (q Quarter) Valid() bool { return q >= 1 && q <= 4 }

// FirstMonth returns the first month of the quarter.
func (q Quarter) FirstMonth() int { return int(q-1)*3 + 1 }

// Months returns the three months of the quarter.
func (q Quarter) Months() [3]int {
	f := q.FirstMonth()
	return [3]int{f, f + 1, f + 2}
}

// Contains reports whether month falls in the quarter.
func (q Quarter) Contains(month int) bool {
	return month >= 1 && month <= 12 && QuarterOf(month) == q
}

func (q Quarter) String() string { return "Q" + strconv.Itoa(int(q)) }
