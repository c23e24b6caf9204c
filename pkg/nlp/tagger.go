package nlp

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tagger is a deterministic lexicon-and-suffix part-of-speech tagger with
// its own tokenizer, sentence segmenter and shallow dependency attachment.
// It needs no model files, so it is always available: it backs the engine
// when no transformer model is installed and serves as the fast analyzer
// in unit tests. Construction is free; the zero value is usable.
type Tagger struct{}

// NewTagger returns a rule-based analyzer.
func NewTagger() *Tagger {
	return &Tagger{}
}

// Annotate implements Analyzer.
func (t *Tagger) Annotate(_ context.Context, text string) ([]Annotation, error) {
	tokens := tokenize(text)
	segmentSentences(tokens)
	for i := range tokens {
		tokens[i].POS = tagToken(tokens, i)
	}
	attachDependencies(tokens)
	return tokens, nil
}

// =============================================================================
// Tokenizer
// =============================================================================

// tokenize splits text into word, number and punctuation tokens with byte
// offsets. Apostrophes stay inside words (don't), dots and commas stay
// inside numbers (3.14, 1,000); every other punctuation rune is its own
// token.
func tokenize(text string) []Annotation {
	var tokens []Annotation
	i := 0
	for i < len(text) {
		r, size := decodeRune(text[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case isLetter(r):
			start := i
			i += size
			for i < len(text) {
				r, size = decodeRune(text[i:])
				if isLetter(r) || r == '\'' || r == '’' {
					i += size
					continue
				}
				break
			}
			tokens = append(tokens, Annotation{Text: text[start:i], Offset: start, End: i})
		case unicode.IsDigit(r):
			start := i
			i += size
			for i < len(text) {
				r, size = decodeRune(text[i:])
				if unicode.IsDigit(r) || ((r == '.' || r == ',') && i+size < len(text) && startsWithDigit(text[i+size:])) {
					i += size
					continue
				}
				break
			}
			tokens = append(tokens, Annotation{Text: text[start:i], Offset: start, End: i})
		default:
			tokens = append(tokens, Annotation{Text: text[i : i+size], Offset: i, End: i + size})
			i += size
		}
	}
	return tokens
}

func decodeRune(s string) (rune, int) {
	return utf8.DecodeRuneInString(s)
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

func isLetter(r rune) bool {
	return unicode.IsLetter(r)
}

// =============================================================================
// Sentence segmentation
// =============================================================================

// abbreviations that end with a period without closing a sentence.
var abbreviations = map[string]bool{
	"dr": true, "mr": true, "mrs": true, "ms": true, "prof": true,
	"st": true, "vs": true, "etc": true, "eg": true, "ie": true,
	"jr": true, "sr": true, "no": true, "vol": true, "approx": true,
}

// segmentSentences assigns sentence ids and marks sentence-final tokens.
// A sentence closes on . ! ? unless the period follows a known
// abbreviation or a single capital initial (J. Smith).
func segmentSentences(tokens []Annotation) {
	sentence := 0
	for i := 0; i < len(tokens); i++ {
		tokens[i].Sentence = sentence
		if !isSentenceTerminator(tokens, i) {
			continue
		}
		// fold trailing closing quotes into the same sentence
		for i+1 < len(tokens) && isClosingQuote(tokens[i+1].Text) {
			i++
			tokens[i].Sentence = sentence
		}
		tokens[i].SentenceBoundary = true
		sentence++
	}
	// the last token always closes its sentence
	if len(tokens) > 0 {
		tokens[len(tokens)-1].SentenceBoundary = true
	}
}

func isSentenceTerminator(tokens []Annotation, i int) bool {
	switch tokens[i].Text {
	case "!", "?":
		return true
	case ".":
		if i == 0 {
			return false
		}
		prev := tokens[i-1]
		// abutting period only: "3. 14" terminates, "3.14" never got here
		if prev.End != tokens[i].Offset {
			return true
		}
		lower := strings.ToLower(prev.Text)
		if abbreviations[lower] {
			return false
		}
		if len(prev.Text) == 1 && prev.Text[0] >= 'A' && prev.Text[0] <= 'Z' {
			return false // single initial
		}
		return true
	}
	return false
}

func isClosingQuote(s string) bool {
	switch s {
	case `"`, "'", "”", "’", "»", "›":
		return true
	}
	return false
}

// =============================================================================
// Part-of-speech tagging
// =============================================================================

var closedClass = map[string]POS{
	// determiners
	"the": POSDet, "a": POSDet, "an": POSDet, "this": POSDet,
	"that": POSDet, "these": POSDet, "those": POSDet, "every": POSDet,
	"each": POSDet, "some": POSDet, "any": POSDet, "no": POSDet,
	"all": POSDet, "both": POSDet, "another": POSDet, "several": POSDet,
	// pronouns
	"i": POSPron, "you": POSPron, "he": POSPron, "she": POSPron,
	"it": POSPron, "we": POSPron, "they": POSPron, "me": POSPron,
	"him": POSPron, "her": POSPron, "us": POSPron, "them": POSPron,
	"who": POSPron, "what": POSPron, "which": POSPron, "someone": POSPron,
	"everyone": POSPron, "nothing": POSPron, "something": POSPron,
	// adpositions
	"of": POSAdp, "in": POSAdp, "on": POSAdp, "at": POSAdp, "by": POSAdp,
	"with": POSAdp, "from": POSAdp, "to": POSAdp, "for": POSAdp,
	"over": POSAdp, "under": POSAdp, "between": POSAdp, "during": POSAdp,
	"into": POSAdp, "through": POSAdp, "against": POSAdp, "within": POSAdp,
	"without": POSAdp, "about": POSAdp, "after": POSAdp, "before": POSAdp,
	// coordinating conjunctions
	"and": POSCconj, "or": POSCconj, "but": POSCconj, "nor": POSCconj,
	"yet": POSCconj, "plus": POSCconj,
	// subordinating conjunctions
	"because": POSSconj, "although": POSSconj, "though": POSSconj,
	"while": POSSconj, "if": POSSconj, "unless": POSSconj,
	"whereas": POSSconj, "since": POSSconj,
	// auxiliaries
	"is": POSAux, "are": POSAux, "was": POSAux, "were": POSAux,
	"be": POSAux, "been": POSAux, "being": POSAux, "am": POSAux,
	"has": POSAux, "have": POSAux, "had": POSAux, "do": POSAux,
	"does": POSAux, "did": POSAux, "will": POSAux, "would": POSAux,
	"can": POSAux, "could": POSAux, "shall": POSAux, "should": POSAux,
	"may": POSAux, "might": POSAux, "must": POSAux,
	// particles
	"not": POSPart, "n't": POSPart,
	// interjections
	"oh": POSIntj, "well": POSIntj, "um": POSIntj, "uh": POSIntj,
	"er": POSIntj, "hmm": POSIntj, "wow": POSIntj,
	// frequent adverbs that no suffix rule catches
	"very": POSAdv, "too": POSAdv, "also": POSAdv, "just": POSAdv,
	"now": POSAdv, "then": POSAdv, "there": POSAdv, "here": POSAdv,
	"never": POSAdv, "always": POSAdv, "often": POSAdv, "again": POSAdv,
	"soon": POSAdv, "still": POSAdv, "almost": POSAdv, "even": POSAdv,
	"so": POSAdv, "more": POSAdv, "most": POSAdv, "once": POSAdv,
	// frequent adjectives that no suffix rule catches
	"new": POSAdj, "old": POSAdj, "good": POSAdj, "great": POSAdj,
	"small": POSAdj, "large": POSAdj, "long": POSAdj, "short": POSAdj,
	"high": POSAdj, "low": POSAdj, "big": POSAdj, "own": POSAdj,
	"same": POSAdj, "last": POSAdj, "first": POSAdj, "next": POSAdj,
	"little": POSAdj, "free": POSAdj, "full": POSAdj, "late": POSAdj,
	"hard": POSAdj, "early": POSAdj, "young": POSAdj, "important": POSAdj,
	"simple": POSAdj, "complex": POSAdj, "modern": POSAdj, "final": POSAdj,
	"smart": POSAdj, "driving": POSAdj, "friendly": POSAdj,
	// frequent verbs past/attribution forms used around dialogue
	"said": POSVerb, "says": POSVerb, "say": POSVerb, "explained": POSVerb,
	"replied": POSVerb, "announced": POSVerb, "stated": POSVerb,
	"asked": POSVerb, "told": POSVerb, "added": POSVerb, "noted": POSVerb,
	"went": POSVerb, "made": POSVerb, "stopped": POSVerb, "looked": POSVerb,
	"came": POSVerb, "took": POSVerb, "got": POSVerb, "gave": POSVerb,
	// number words
	"zero": POSNum, "one": POSNum, "two": POSNum, "three": POSNum,
	"four": POSNum, "five": POSNum, "six": POSNum, "seven": POSNum,
	"eight": POSNum, "nine": POSNum, "ten": POSNum, "hundred": POSNum,
	"thousand": POSNum, "million": POSNum,
}

var adjectiveSuffixes = []string{
	"ous", "ful", "ive", "able", "ible", "ical", "ish", "less",
	"ant", "ent", "ary", "ate", "est",
}

var verbSuffixes = []string{"ize", "ise", "ify", "ate"}

// tagToken assigns a POS to tokens[i] from the closed-class lexicon,
// suffix heuristics and capitalization, in that order.
func tagToken(tokens []Annotation, i int) POS {
	tok := tokens[i]
	text := tok.Text

	if !isLetterLed(text) {
		if tok.IsNumeric() {
			return POSNum
		}
		if isSymbolRune(text) {
			return POSSym
		}
		return POSPunct
	}

	lower := strings.ToLower(text)
	if pos, ok := closedClass[lower]; ok {
		return pos
	}

	// capitalized away from a sentence start reads as a proper noun
	if isCapitalized(text) && !isSentenceInitial(tokens, i) {
		return POSPropn
	}

	if strings.HasSuffix(lower, "ly") && len(lower) > 3 {
		return POSAdv
	}
	for _, suffix := range adjectiveSuffixes {
		if strings.HasSuffix(lower, suffix) && len(lower) > len(suffix)+2 {
			return POSAdj
		}
	}
	if (strings.HasSuffix(lower, "ing") || strings.HasSuffix(lower, "ed")) && len(lower) > 4 {
		return POSVerb
	}
	for _, suffix := range verbSuffixes {
		if strings.HasSuffix(lower, suffix) && len(lower) > len(suffix)+2 {
			return POSVerb
		}
	}

	return POSNoun
}

func isLetterLed(s string) bool {
	for _, r := range s {
		return isLetter(r)
	}
	return false
}

func isCapitalized(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

func isSymbolRune(s string) bool {
	for _, r := range s {
		return unicode.IsSymbol(r)
	}
	return false
}

// isSentenceInitial reports whether tokens[i] is the first word of its
// sentence (quotes and brackets before it do not count).
func isSentenceInitial(tokens []Annotation, i int) bool {
	for j := i - 1; j >= 0; j-- {
		if tokens[j].Sentence != tokens[i].Sentence {
			return true
		}
		if isLetterLed(tokens[j].Text) || tokens[j].IsNumeric() {
			return false
		}
	}
	return true
}

// =============================================================================
// Shallow dependency attachment
// =============================================================================

// attachDependencies wires a flat approximation of a dependency parse:
// the first verb (or auxiliary) of each sentence is the root, determiners
// and attributive adjectives attach to the next nominal, adverbs to the
// root, nominals to the root as subject or object by position.
func attachDependencies(tokens []Annotation) {
	start := 0
	for start < len(tokens) {
		end := start
		for end < len(tokens) && tokens[end].Sentence == tokens[start].Sentence {
			end++
		}
		attachSentence(tokens, start, end)
		start = end
	}
}

func attachSentence(tokens []Annotation, start, end int) {
	root := -1
	for i := start; i < end; i++ {
		if tokens[i].POS == POSVerb || tokens[i].POS == POSAux {
			root = i
			break
		}
	}
	if root == -1 {
		root = start
	}
	tokens[root].Dep = "root"
	tokens[root].Head = root

	for i := start; i < end; i++ {
		if i == root {
			continue
		}
		switch tokens[i].POS {
		case POSDet:
			tokens[i].Dep, tokens[i].Head = "det", nextNominal(tokens, i+1, end, root)
		case POSAdj:
			tokens[i].Dep, tokens[i].Head = "amod", nextNominal(tokens, i+1, end, root)
		case POSAdv:
			tokens[i].Dep, tokens[i].Head = "advmod", root
		case POSPunct:
			tokens[i].Dep, tokens[i].Head = "punct", root
		case POSNoun, POSPropn, POSPron, POSNum:
			if i < root {
				tokens[i].Dep, tokens[i].Head = "nsubj", root
			} else {
				tokens[i].Dep, tokens[i].Head = "obj", root
			}
		default:
			tokens[i].Dep, tokens[i].Head = "dep", root
		}
	}
}

func nextNominal(tokens []Annotation, from, end, fallback int) int {
	for i := from; i < end; i++ {
		switch tokens[i].POS {
		case POSNoun, POSPropn, POSPron, POSNum:
			return i
		}
	}
	return fallback
}
