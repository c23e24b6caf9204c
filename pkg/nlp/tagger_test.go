package nlp

import (
	"context"
	"testing"
)

func annotate(t *testing.T, text string) []Annotation {
	t.Helper()
	anns, err := NewTagger().Annotate(context.Background(), text)
	if err != nil {
		t.Fatalf("Annotate(%q) failed: %v", text, err)
	}
	return anns
}

func TestTokenize(t *testing.T) {
	anns := annotate(t, "Don't stop—now, 3.14 works")

	want := []string{"Don't", "stop", "—", "now", ",", "3.14", "works"}
	if len(anns) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(anns), len(want), anns)
	}
	for i, text := range want {
		if anns[i].Text != text {
			t.Errorf("token %d = %q, want %q", i, anns[i].Text, text)
		}
	}

	// byte offsets index the original text
	for _, a := range anns {
		if got := "Don't stop—now, 3.14 works"[a.Offset:a.End]; got != a.Text {
			t.Errorf("offsets [%d,%d) slice %q, token says %q", a.Offset, a.End, got, a.Text)
		}
	}
}

func TestTokenizeNumbers(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"about 1,000 items", "1,000"},
		{"pi is 3.14159", "3.14159"},
		{"from 2010 on", "2010"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			anns := annotate(t, tt.text)
			found := false
			for _, a := range anns {
				if a.Text == tt.want {
					found = true
					if !a.IsNumeric() {
						t.Errorf("%q should read as numeric", a.Text)
					}
				}
			}
			if !found {
				t.Errorf("number %q not kept as one token: %+v", tt.want, anns)
			}
		})
	}
}

func TestSentenceSegmentation(t *testing.T) {
	anns := annotate(t, "The plan worked. Dr. Smith agreed! Everyone cheered.")

	sentenceOf := map[string]int{}
	for _, a := range anns {
		if _, seen := sentenceOf[a.Text]; !seen {
			sentenceOf[a.Text] = a.Sentence
		}
	}

	if sentenceOf["plan"] != 0 {
		t.Errorf("'plan' in sentence %d, want 0", sentenceOf["plan"])
	}
	// "Dr." must not close a sentence
	if sentenceOf["Dr"] != 1 || sentenceOf["Smith"] != 1 || sentenceOf["agreed"] != 1 {
		t.Errorf("abbreviation split the second sentence: %+v", sentenceOf)
	}
	if sentenceOf["Everyone"] != 2 {
		t.Errorf("'Everyone' in sentence %d, want 2", sentenceOf["Everyone"])
	}
}

func TestSentenceBoundaryFoldsClosingQuote(t *testing.T) {
	anns := annotate(t, `He said "stop." Then he left.`)

	for i, a := range anns {
		if a.Text == `"` && i > 0 && anns[i-1].Text == "." {
			if a.Sentence != 0 {
				t.Errorf("closing quote assigned to sentence %d, want 0", a.Sentence)
			}
			if !a.SentenceBoundary {
				t.Error("closing quote after a terminator should end the sentence")
			}
		}
		if a.Text == "Then" && a.Sentence != 1 {
			t.Errorf("'Then' in sentence %d, want 1", a.Sentence)
		}
	}
}

func TestTagToken(t *testing.T) {
	anns := annotate(t, "The cat quickly chased beautiful birds in London")

	want := map[string]POS{
		"The":       POSDet,
		"cat":       POSNoun,
		"quickly":   POSAdv,
		"chased":    POSVerb,
		"beautiful": POSAdj,
		"birds":     POSNoun,
		"in":        POSAdp,
		"London":    POSPropn,
	}
	for _, a := range anns {
		if pos, ok := want[a.Text]; ok && a.POS != pos {
			t.Errorf("%q tagged %s, want %s", a.Text, a.POS, pos)
		}
	}
}

func TestTagTokenPunctAndNumbers(t *testing.T) {
	anns := annotate(t, "pages 12–15, cost €50")

	for _, a := range anns {
		switch a.Text {
		case "12", "15", "50":
			if a.POS != POSNum {
				t.Errorf("%q tagged %s, want NUM", a.Text, a.POS)
			}
		case "–", ",":
			if a.POS != POSPunct {
				t.Errorf("%q tagged %s, want PUNCT", a.Text, a.POS)
			}
		case "€":
			if a.POS != POSSym {
				t.Errorf("%q tagged %s, want SYM", a.Text, a.POS)
			}
		}
	}
}

func TestSentenceInitialCapitalIsNotProper(t *testing.T) {
	anns := annotate(t, "Running is fun. Sarah agrees.")

	for _, a := range anns {
		if a.Text == "Running" && a.POS == POSPropn {
			t.Error("sentence-initial capital misread as proper noun")
		}
		if a.Text == "Sarah" && a.POS == POSPropn {
			t.Error("sentence-initial 'Sarah' should not be PROPN either")
		}
	}
}

func TestAttachDependencies(t *testing.T) {
	anns := annotate(t, "The cat chased birds.")

	var root, cat, the, birds int = -1, -1, -1, -1
	for i, a := range anns {
		switch a.Text {
		case "chased":
			root = i
		case "cat":
			cat = i
		case "The":
			the = i
		case "birds":
			birds = i
		}
	}
	if root < 0 || cat < 0 || the < 0 || birds < 0 {
		t.Fatalf("tokens missing: %+v", anns)
	}

	if anns[root].Dep != "root" || anns[root].Head != root {
		t.Errorf("verb not attached as root: %+v", anns[root])
	}
	if anns[the].Dep != "det" || anns[the].Head != cat {
		t.Errorf("determiner not attached to its noun: %+v", anns[the])
	}
	if anns[cat].Dep != "nsubj" || anns[cat].Head != root {
		t.Errorf("preverbal noun should be nsubj of root: %+v", anns[cat])
	}
	if anns[birds].Dep != "obj" || anns[birds].Head != root {
		t.Errorf("postverbal noun should be obj of root: %+v", anns[birds])
	}
}

func TestAnnotateEmptyInput(t *testing.T) {
	anns := annotate(t, "")
	if len(anns) != 0 {
		t.Errorf("empty input produced %d tokens", len(anns))
	}
}
