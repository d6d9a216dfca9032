package terminology

import "strings"

// Similarity scores how alike two spec names are, in [0,1]. It blends an
// edit-distance ratio with token overlap so both "Contrast ratio" vs
// "Contrast Ratio (typ.)" and word-order variants score high.
func Similarity(a, b string) float64 {
	ka, kb := normalizeKey(a), normalizeKey(b)
	if ka == "" || kb == "" {
		return 0
	}
	if ka == kb {
		return 1
	}

	lev := levenshteinRatio(ka, kb)
	tok := tokenOverlap(ka, kb)
	if tok > lev {
		return tok
	}
	return lev
}

// levenshteinRatio is 1 - editDistance/maxLen on the normalized strings.
func levenshteinRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 0
	}
	return 1 - float64(levenshtein(ra, rb))/float64(longest)
}

// levenshtein computes edit distance with two rows for space efficiency.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minOf(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// tokenOverlap is the Jaccard index of the two token sets.
func tokenOverlap(a, b string) float64 {
	ta := strings.Fields(a)
	tb := strings.Fields(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	setA := make(map[string]bool, len(ta))
	for _, tok := range ta {
		setA[tok] = true
	}
	setB := make(map[string]bool, len(tb))
	for _, tok := range tb {
		setB[tok] = true
	}
	shared := 0
	union := len(setA)
	for tok := range setB {
		if setA[tok] {
			shared++
		} else {
			union++
		}
	}
	return float64(shared) / float64(union)
}

func minOf(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
