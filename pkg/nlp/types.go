// Package nlp provides the linguistic analysis capability behind
// grammar-aware punctuation decisions: tokenization, part-of-speech
// tagging, shallow dependency attachment and sentence segmentation.
// The engine only depends on the Analyzer interface, so production can run
// a transformer model while tests run the deterministic rule tagger.
package nlp

import (
	"context"
	"errors"
)

// POS is a universal part-of-speech tag (UPOS inventory).
type POS string

const (
	POSAdj   POS = "ADJ"
	POSAdp   POS = "ADP"
	POSAdv   POS = "ADV"
	POSAux   POS = "AUX"
	POSCconj POS = "CCONJ"
	POSDet   POS = "DET"
	POSIntj  POS = "INTJ"
	POSNoun  POS = "NOUN"
	POSNum   POS = "NUM"
	POSPart  POS = "PART"
	POSPron  POS = "PRON"
	POSPropn POS = "PROPN"
	POSPunct POS = "PUNCT"
	POSSconj POS = "SCONJ"
	POSSym   POS = "SYM"
	POSVerb  POS = "VERB"
	POSX     POS = "X"
)

// String returns the string representation of a POS tag.
func (p POS) String() string {
	return string(p)
}

// Annotation is the per-token analysis record. Offsets are byte offsets
// into the analyzed text. Annotations are created per Annotate call and
// owned by the caller; analyzers never share them across calls.
type Annotation struct {
	// Text is the token surface form.
	Text string `json:"text"`
	// Offset and End delimit the token in the input ([Offset, End)).
	Offset int `json:"offset"`
	End    int `json:"end"`
	// POS is the universal part-of-speech tag.
	POS POS `json:"part_of_speech"`
	// Dep labels the relation to the syntactic head; Head indexes the
	// head token within the same annotation slice (self-index for roots).
	Dep  string `json:"dependency_relation"`
	Head int    `json:"head_index"`
	// Sentence is the zero-based sentence index the token belongs to.
	Sentence int `json:"sentence_id"`
	// SentenceBoundary marks the final token of its sentence.
	SentenceBoundary bool `json:"is_sentence_boundary"`
}

// IsAlpha reports whether the token consists solely of letters.
func (a *Annotation) IsAlpha() bool {
	if a.Text == "" {
		return false
	}
	for _, r := range a.Text {
		if !isLetter(r) {
			return false
		}
	}
	return true
}

// IsNumeric reports whether the token reads as a number (digits, or a
// digit-led value like 3.0 or 2020).
func (a *Annotation) IsNumeric() bool {
	if a.POS == POSNum {
		return true
	}
	if a.Text == "" {
		return false
	}
	for _, r := range a.Text {
		if (r < '0' || r > '9') && r != '.' && r != ',' {
			return false
		}
	}
	return a.Text[0] >= '0' && a.Text[0] <= '9'
}

// Analyzer is the capability interface required from a linguistic
// analysis provider. Annotate must be referentially transparent on
// identical input; each call returns fresh annotations.
type Analyzer interface {
	Annotate(ctx context.Context, text string) ([]Annotation, error)
}

// ErrAnalysisUnavailable reports that the underlying linguistic model is
// missing or failed to load. Callers are expected to fall back to the
// deterministic non-contextual rendering.
var ErrAnalysisUnavailable = errors.New("linguistic analysis unavailable")
