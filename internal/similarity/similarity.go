// Package similarity implements a sequence-matching ratio over strings,
// compatible with Python difflib.SequenceMatcher semantics.
package similarity

// Ratio returns a similarity measure in [0, 1] for two strings: twice the
// number of matched characters divided by the total length of both inputs.
// Matches are found as longest matching blocks, recursively to the left and
// right of each block. Identical strings score 1, disjoint strings score 0.
// Comparison is case-sensitive; callers normalize case as needed.
func Ratio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return 2 * float64(matchedRunes(ra, rb)) / float64(total)
}

// Percent is Ratio expressed on a 0-100 scale.
func Percent(a, b string) float64 {
	return Ratio(a, b) * 100
}

type span struct {
	alo, ahi, blo, bhi int
}

// matchedRunes sums the sizes of all matching blocks between a and b.
func matchedRunes(a, b []rune) int {
	matched := 0
	queue := []span{{0, len(a), 0, len(b)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, size := longestMatch(a, b, s.alo, s.ahi, s.blo, s.bhi)
		if size == 0 {
			continue
		}
		matched += size
		if s.alo < i && s.blo < j {
			queue = append(queue, span{s.alo, i, s.blo, j})
		}
		if i+size < s.ahi && j+size < s.bhi {
			queue = append(queue, span{i + size, s.ahi, j + size, s.bhi})
		}
	}
	return matched
}

// longestMatch finds the longest block a[i:i+size] == b[j:j+size] within the
// given bounds. Ties resolve to the earliest block in a, then in b.
func longestMatch(a, b []rune, alo, ahi, blo, bhi int) (besti, bestj, bestsize int) {
	besti, bestj = alo, blo

	// j2len[j] holds the length of the match ending at a[i-1], b[j].
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		next := make(map[int]int)
		for j := blo; j < bhi; j++ {
			if a[i] != b[j] {
				continue
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = next
	}
	return besti, bestj, bestsize
}
