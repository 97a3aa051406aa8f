package brand

// PartialRatio scores how well the shorter string matches its best
// aligned window inside the longer one, on a 0-100 scale. Window scores
// use the Indel-normalized similarity 200*LCS/(len(a)+len(b)); windows
// include the partial overlaps at both ends. Comparison is case-sensitive.
func PartialRatio(a, b string) float64 {
	s1, s2 := []rune(a), []rune(b)
	if len(s1) > len(s2) {
		s1, s2 = s2, s1
	}
	if len(s1) == 0 {
		return 0
	}

	n, m := len(s1), len(s2)
	best := 0.0
	consider := func(window []rune) {
		if score := ratio(s1, window); score > best {
			best = score
		}
	}

	for i := 1; i < n && best < 100; i++ {
		consider(s2[:i])
	}
	for i := 0; i+n <= m && best < 100; i++ {
		consider(s2[i : i+n])
	}
	for i := m - n + 1; i < m && best < 100; i++ {
		consider(s2[i:])
	}
	return best
}

func ratio(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 100
	}
	return 200 * float64(lcs(a, b)) / float64(total)
}

// lcs returns the length of the longest common subsequence
func lcs(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
