package filter

import "strings"

const pairSeparator = "&&"

// PairwisePattern is a keyword of the form "AB&&CD&&..." whose two-character
// pairs must occur, in order, as adjacent characters of the message.
type PairwisePattern struct {
	raw   string
	pairs [][2]rune
	valid bool
}

// CompilePairwise never fails: a pattern with a pair that is not exactly two
// characters long compiles into one that never matches.
func CompilePairwise(raw string) *PairwisePattern {
	p := &PairwisePattern{raw: raw, valid: true}
	for _, part := range strings.Split(strings.ToUpper(raw), pairSeparator) {
		r := []rune(part)
		if len(r) != 2 {
			p.valid = false
			p.pairs = nil
			break
		}
		p.pairs = append(p.pairs, [2]rune{r[0], r[1]})
	}
	return p
}

// Match scans with a single forward cursor. After a pair is found the cursor
// moves one position, not two, so the next pair may overlap the previous one.
func (p *PairwisePattern) Match(text string) bool {
	if !p.valid {
		return false
	}
	msg := []rune(strings.ToUpper(text))
	idx := 0
	for _, pair := range p.pairs {
		found := false
		for idx < len(msg)-1 {
			if msg[idx] == pair[0] && msg[idx+1] == pair[1] {
				found = true
				break
			}
			idx++
		}
		if !found {
			return false
		}
		idx++
	}
	return true
}

func (p *PairwisePattern) String() string {
	return p.raw
}

func (p *PairwisePattern) Valid() bool {
	return p.valid
}
