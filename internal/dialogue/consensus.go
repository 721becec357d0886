package dialogue

import (
	"sort"
	"strings"
)

// Lexical agreement tagging. Challenge statements address other roles by
// name; we classify each sentence that mentions a role as agreement or
// disagreement by keyword. This is a transcript annotation, not a
// semantic judgment, and both the tagging and the confidence heuristic
// below are fully deterministic.

var agreeMarkers = []string{
	"agree", "correct", "exactly", "right", "valid",
	"good point", "well said", "yes", "builds on",
}

var disagreeMarkers = []string{
	"disagree", "however", "but ", "wrong", "flawed",
	"overlook", "misses", "miss the", "too narrow", "not convinced",
}

// tagStatements annotates challenge-round statements in place with the
// roles they respond to, split into agreement and disagreement.
func tagStatements(stmts []Statement, participants []Perspective) {
	for i := range stmts {
		if stmts[i].Failed {
			continue
		}
		tagOne(&stmts[i], participants)
	}
}

func tagOne(s *Statement, participants []Perspective) {
	for _, sentence := range splitSentences(s.Text) {
		lower := strings.ToLower(sentence)
		for _, p := range participants {
			if p == s.Role || !strings.Contains(lower, string(p)) {
				continue
			}
			s.RespondsTo = appendRole(s.RespondsTo, p)
			// Disagreement markers win when a sentence carries both;
			// hedged agreement reads as pushback.
			switch {
			case containsAny(lower, disagreeMarkers...):
				s.DisagreesWith = appendRole(s.DisagreesWith, p)
			case containsAny(lower, agreeMarkers...):
				s.AgreesWith = appendRole(s.AgreesWith, p)
			}
		}
	}
}

func splitSentences(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	})
}

func appendRole(list []Perspective, p Perspective) []Perspective {
	for _, have := range list {
		if have == p {
			return list
		}
	}
	return append(list, p)
}

// agreementRatio is agreements over all tagged reactions in a challenge
// round. A round with no tagged reactions reads as neutral.
func agreementRatio(stmts []Statement) float64 {
	agrees, total := 0, 0
	for _, s := range stmts {
		agrees += len(s.AgreesWith)
		total += len(s.AgreesWith) + len(s.DisagreesWith)
	}
	if total == 0 {
		return 0.5
	}
	return float64(agrees) / float64(total)
}

// tokenSet extracts the content words of a statement. Short words carry
// no signal for overlap comparison.
func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,;:!?\"'()")
		if len(w) > 3 {
			set[w] = true
		}
	}
	return set
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if b[w] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// avgPairwiseOverlap measures how similar the surviving statements of a
// round are to each other. One or zero statements yield full overlap;
// there is nothing left to disagree.
func avgPairwiseOverlap(stmts []Statement) float64 {
	sets := make([]map[string]bool, 0, len(stmts))
	for _, s := range stmts {
		if !s.Failed {
			sets = append(sets, tokenSet(s.Text))
		}
	}
	if len(sets) < 2 {
		return 1.0
	}
	sum, pairs := 0.0, 0
	for i := 0; i < len(sets); i++ {
		for j := i + 1; j < len(sets); j++ {
			sum += jaccard(sets[i], sets[j])
			pairs++
		}
	}
	return sum / float64(pairs)
}

// confidence blends the challenge round's agreement ratio with the
// lexical convergence of the consensus round. The ratio dominates; the
// overlap term rewards perspectives that ended up saying the same thing.
func confidence(challenge, consensus []Statement) float64 {
	if challenge == nil {
		return avgPairwiseOverlap(consensus)
	}
	return 0.6*agreementRatio(challenge) + 0.4*avgPairwiseOverlap(consensus)
}

// centroidStatement picks the surviving statement most similar to all
// others. When the dialogue converges without a synthesis round, this is
// the consensus text carried forward.
func centroidStatement(stmts []Statement) (Statement, bool) {
	type scored struct {
		idx   int
		score float64
	}
	live := make([]int, 0, len(stmts))
	for i, s := range stmts {
		if !s.Failed {
			live = append(live, i)
		}
	}
	if len(live) == 0 {
		return Statement{}, false
	}
	if len(live) == 1 {
		return stmts[live[0]], true
	}

	sets := make(map[int]map[string]bool, len(live))
	for _, i := range live {
		sets[i] = tokenSet(stmts[i].Text)
	}
	scores := make([]scored, 0, len(live))
	for _, i := range live {
		total := 0.0
		for _, j := range live {
			if i != j {
				total += jaccard(sets[i], sets[j])
			}
		}
		scores = append(scores, scored{idx: i, score: total})
	}
	sort.SliceStable(scores, func(a, b int) bool {
		return scores[a].score > scores[b].score
	})
	return stmts[scores[0].idx], true
}
