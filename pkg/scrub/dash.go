package scrub

import (
	"strings"

	"github.com/unsmarten/unsmarten/pkg/nlp"
)

// DashContext identifies the grammatical role an em dash plays in its
// sentence. Each role has a fixed ASCII rendering.
type DashContext string

const (
	DashCompoundWord  DashContext = "compound_word"
	DashRange         DashContext = "range"
	DashDialogue      DashContext = "dialogue"
	DashParenthetical DashContext = "parenthetical"
	DashEmphasis      DashContext = "emphasis"
	DashConjunction   DashContext = "conjunction"
	DashListMarker    DashContext = "list_marker"
	DashSentenceBreak DashContext = "sentence_break"
	DashDefault       DashContext = "default"
)

const emDash = "—"

// Clauses set off by a single unmatched dash only read as emphasis when
// they are short.
const emphasisClauseLimit = 5

type dashRendering struct {
	text    string
	swallow bool // absorb whitespace around the dash
}

var dashRenderings = map[DashContext]dashRendering{
	DashCompoundWord:  {text: "-"},
	DashRange:         {text: "-"},
	DashDialogue:      {text: ", ", swallow: true},
	DashParenthetical: {text: ", ", swallow: true},
	DashEmphasis:      {text: ", ", swallow: true},
	DashConjunction:   {text: ", ", swallow: true},
	DashListMarker:    {text: ": ", swallow: true},
	DashSentenceBreak: {text: "... ", swallow: true},
	DashDefault:       {text: "-"},
}

// dashSite is one em dash occurrence plus its annotation neighborhood.
type dashSite struct {
	offset  int
	token   int // index into anns of the dash token, -1 if unaligned
	prev    int // nearest non-dash token before, -1 if none
	next    int // nearest non-dash token after, -1 if none
	context DashContext
}

// resolveDashes rewrites every em dash in text according to its detected
// context and returns the new buffer, the dash count, and a per-context
// breakdown. anns must cover text.
func resolveDashes(text string, anns []nlp.Annotation) (string, int, map[DashContext]int) {
	sites := locateDashes(text, anns)
	if len(sites) == 0 {
		return text, 0, nil
	}

	classifyDashes(anns, sites)

	breakdown := make(map[DashContext]int, len(sites))
	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, site := range sites {
		r := dashRenderings[site.context]
		start, end := site.offset, site.offset+len(emDash)
		if r.swallow {
			for start > last {
				c := text[start-1]
				if c != ' ' && c != '\t' {
					break
				}
				start--
			}
			for end < len(text) {
				c := text[end]
				if c != ' ' && c != '\t' {
					break
				}
				end++
			}
		}
		b.WriteString(text[last:start])
		b.WriteString(r.text)
		last = end
		breakdown[site.context]++
	}
	b.WriteString(text[last:])
	return b.String(), len(sites), breakdown
}

func locateDashes(text string, anns []nlp.Annotation) []dashSite {
	byOffset := make(map[int]int, len(anns))
	for i, a := range anns {
		byOffset[a.Offset] = i
	}

	var sites []dashSite
	for i := 0; i < len(text); {
		j := strings.Index(text[i:], emDash)
		if j < 0 {
			break
		}
		offset := i + j
		site := dashSite{offset: offset, token: -1, prev: -1, next: -1}
		if tok, ok := byOffset[offset]; ok {
			site.token = tok
			for p := tok - 1; p >= 0; p-- {
				if anns[p].Text != emDash {
					site.prev = p
					break
				}
			}
			for n := tok + 1; n < len(anns); n++ {
				if anns[n].Text != emDash {
					site.next = n
					break
				}
			}
		}
		sites = append(sites, site)
		i = offset + len(emDash)
	}
	return sites
}

// classifyDashes assigns a context to every site. Compound, range and
// dialogue claim dashes first. Remaining dashes in the same sentence pair
// up left to right as parenthetical pairs, and whatever is still
// unclaimed falls through emphasis, conjunction, list marker and sentence
// break before defaulting to a plain hyphen.
func classifyDashes(anns []nlp.Annotation, sites []dashSite) {
	for i := range sites {
		site := &sites[i]
		switch {
		case isCompoundWord(anns, site):
			site.context = DashCompoundWord
		case isRange(anns, site):
			site.context = DashRange
		case isDialogue(anns, site):
			site.context = DashDialogue
		}
	}

	pairParentheticals(anns, sites)

	for i := range sites {
		site := &sites[i]
		if site.context != "" {
			continue
		}
		// a dash merged inside a larger token has no neighborhood to
		// inspect; render it as a plain hyphen
		if site.token < 0 {
			site.context = DashDefault
			continue
		}
		switch {
		case isEmphasis(anns, site):
			site.context = DashEmphasis
		case isConjunction(anns, site):
			site.context = DashConjunction
		case isListMarker(anns, site):
			site.context = DashListMarker
		case isSentenceBreak(anns, site):
			site.context = DashSentenceBreak
		default:
			site.context = DashDefault
		}
	}
}

// isCompoundWord matches word—word with no surrounding whitespace, where
// the dash glues two halves of a compound together. Single-letter pairs
// (variable names, labels) always qualify; otherwise both sides must be
// content words and at least one a noun or adjective.
func isCompoundWord(anns []nlp.Annotation, site *dashSite) bool {
	if site.prev < 0 || site.next < 0 {
		return false
	}
	prev, next := anns[site.prev], anns[site.next]
	if prev.End != site.offset || next.Offset != site.offset+len(emDash) {
		return false
	}
	if !prev.IsAlpha() || !next.IsAlpha() {
		return false
	}
	if len(prev.Text) == 1 && len(next.Text) == 1 {
		return true
	}
	// function words never glue into compounds ("results—after months")
	if !isContentWord(prev.POS) || !isContentWord(next.POS) {
		return false
	}
	return isNounLike(prev.POS) || isNounLike(next.POS)
}

func isContentWord(pos nlp.POS) bool {
	switch pos {
	case nlp.POSNoun, nlp.POSPropn, nlp.POSAdj, nlp.POSVerb, nlp.POSAdv:
		return true
	}
	return false
}

func isNounLike(pos nlp.POS) bool {
	return pos == nlp.POSNoun || pos == nlp.POSAdj
}

// isRange matches numeric—numeric spans such as years and page numbers.
func isRange(anns []nlp.Annotation, site *dashSite) bool {
	if site.prev < 0 || site.next < 0 {
		return false
	}
	return anns[site.prev].IsNumeric() && anns[site.next].IsNumeric()
}

// isDialogue matches attribution dashes directly after a closing quote.
// The tokenizer keeps apostrophes inside word tokens, so a single-quoted
// span ends in a token like "Hello'"; a quote suffix counts the same as a
// standalone quote token.
func isDialogue(anns []nlp.Annotation, site *dashSite) bool {
	if site.prev < 0 {
		return false
	}
	return closesQuote(anns[site.prev].Text)
}

var closingQuotes = []string{`"`, "'", "”", "’", "»", "›"}

func closesQuote(text string) bool {
	for _, q := range closingQuotes {
		if strings.HasSuffix(text, q) {
			return true
		}
	}
	return false
}

// pairParentheticals pairs unclaimed dashes left to right within each
// sentence. A pair must bound an actual clause: more than one non-punct
// token between the dashes, or a single adverb or adjective. When the
// clause check fails, the later dash becomes the new candidate opener and
// the earlier one falls through to the single-dash rules.
func pairParentheticals(anns []nlp.Annotation, sites []dashSite) {
	open := make(map[int]int) // sentence id -> site index
	for i := range sites {
		site := &sites[i]
		if site.context != "" || site.token < 0 {
			continue
		}
		sent := anns[site.token].Sentence
		o, ok := open[sent]
		if !ok {
			open[sent] = i
			continue
		}
		if boundsClause(anns, sites[o].token, site.token) {
			sites[o].context = DashParenthetical
			site.context = DashParenthetical
			delete(open, sent)
		} else {
			open[sent] = i
		}
	}
}

func boundsClause(anns []nlp.Annotation, openTok, closeTok int) bool {
	count := 0
	single := -1
	for t := openTok + 1; t < closeTok; t++ {
		if anns[t].POS == nlp.POSPunct {
			continue
		}
		count++
		single = t
	}
	if count > 1 {
		return true
	}
	if count == 1 {
		a := anns[single]
		return (a.POS == nlp.POSAdv || a.POS == nlp.POSAdj) && len(a.Text) > 2
	}
	return false
}

// isEmphasis matches a lone dash setting off a short trailing clause,
// with nominal material on both sides.
func isEmphasis(anns []nlp.Annotation, site *dashSite) bool {
	if site.prev < 0 || site.next < 0 || site.token < 0 {
		return false
	}
	prev, next := anns[site.prev], anns[site.next]
	if prev.Sentence != next.Sentence {
		return false
	}
	if !isNominal(prev.POS) || !isNominal(next.POS) {
		return false
	}
	clause := 0
	for t := site.next; t < len(anns) && anns[t].Sentence == next.Sentence; t++ {
		if anns[t].POS != nlp.POSPunct {
			clause++
		}
	}
	return clause > 0 && clause <= emphasisClauseLimit
}

func isNominal(pos nlp.POS) bool {
	return pos == nlp.POSNoun || pos == nlp.POSPropn || pos == nlp.POSAdj
}

// isConjunction matches a dash introducing a coordinated alternative
// ("or", "and", "but").
func isConjunction(anns []nlp.Annotation, site *dashSite) bool {
	if site.next < 0 {
		return false
	}
	next := anns[site.next]
	if next.POS == nlp.POSCconj {
		return true
	}
	switch strings.ToLower(next.Text) {
	case "or", "and", "but":
		return true
	}
	return false
}

// isListMarker matches a dash after a count or ordinal that introduces an
// enumeration.
func isListMarker(anns []nlp.Annotation, site *dashSite) bool {
	if site.prev < 0 || site.next < 0 {
		return false
	}
	prev, next := anns[site.prev], anns[site.next]
	if !prev.IsNumeric() && prev.POS != nlp.POSNum {
		return false
	}
	return next.IsAlpha()
}

// isSentenceBreak matches dashes at detected sentence edges, including
// trailing interruption dashes with nothing after them.
func isSentenceBreak(anns []nlp.Annotation, site *dashSite) bool {
	if site.prev < 0 || site.next < 0 {
		return true
	}
	prev, next := anns[site.prev], anns[site.next]
	if prev.SentenceBoundary {
		return true
	}
	return prev.Sentence != next.Sentence
}

// hasEmDash reports whether text contains at least one em dash, letting
// the pipeline skip annotation entirely for clean input.
func hasEmDash(text string) bool {
	return strings.Contains(text, emDash)
}
