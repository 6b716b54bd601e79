package intake

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/alkime/monshin/internal/capture"
)

// Transcript reconciles recognizer output. Finalized text only grows within
// a capture session; the provisional tail is replaced by every Partial and
// dropped by every Final.
type Transcript struct {
	finalized   string
	provisional string
}

// Apply folds one recognizer event into the transcript. Non-text events
// leave it unchanged.
func (t Transcript) Apply(ev capture.Event) Transcript {
	switch ev.Kind {
	case capture.EventFinal:
		t.finalized = norm.NFC.String(t.finalized + ev.Text)
		t.provisional = ""
	case capture.EventPartial:
		t.provisional = norm.NFC.String(ev.Text)
	}

	return t
}

// Uploaded is the transcript of a recorded or selected file. It has no
// provisional part, so both views agree.
func Uploaded(text string) Transcript {
	return Transcript{finalized: norm.NFC.String(text)}
}

// Display is what is shown live, provisional text included.
func (t Transcript) Display() string { return t.finalized + t.provisional }

// Authoritative is the finalized-only text handed to summarization.
func (t Transcript) Authoritative() string { return t.finalized }

// Settle drops the provisional tail, e.g. when capture ends without a
// closing Final.
func (t Transcript) Settle() Transcript {
	t.provisional = ""
	return t
}

// Blank reports whether s has nothing but whitespace, ideographic space
// included.
func Blank(s string) bool { return strings.TrimSpace(s) == "" }
