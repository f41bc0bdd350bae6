package relocate

import "strings"

// Similarity computes a case-insensitive, whitespace-normalized similarity
// ratio in [0,1] between two texts, based on the longest common subsequence:
// 2*LCS(a,b) / (len(a)+len(b)) after normalization.
func Similarity(a, b string) float64 {
	na := normalize(a)
	nb := normalize(b)

	if len(na) == 0 && len(nb) == 0 {
		return 1.0
	}
	if len(na) == 0 || len(nb) == 0 {
		return 0.0
	}

	lcs := lcsLength(na, nb)
	return 2.0 * float64(lcs) / float64(len(na)+len(nb))
}

// normalize lowercases the text and collapses runs of whitespace to a
// single space.
func normalize(s string) []rune {
	return []rune(strings.Join(strings.Fields(strings.ToLower(s)), " "))
}

// lcsLength computes the longest-common-subsequence length with a
// two-row dynamic programming table.
func lcsLength(a, b []rune) int {
	if len(b) < len(a) {
		a, b = b, a // keep the row allocation on the shorter side
	}

	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)

	for i := 1; i <= len(b); i++ {
		for j := 1; j <= len(a); j++ {
			if b[i-1] == a[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	return prev[len(a)]
}
