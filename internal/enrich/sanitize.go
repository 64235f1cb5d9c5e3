package enrich

import "strings"

const (
	maxKeywords    = 10
	maxDefinitions = 20
	maxFlashcards  = 20
	maxAbstractLen = 500
)

// Sanitize clamps model output to the documented shape: empty entries
// dropped, list lengths capped, abstract truncated.
func Sanitize(e *Enrichment) {
	if e == nil {
		return
	}

	keywords := e.Keywords[:0]
	for _, k := range e.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}
	e.Keywords = keywords

	definitions := e.Definitions[:0]
	for _, d := range e.Definitions {
		d.Term = strings.TrimSpace(d.Term)
		d.Meaning = strings.TrimSpace(d.Meaning)
		if d.Term != "" && d.Meaning != "" {
			definitions = append(definitions, d)
		}
	}
	if len(definitions) > maxDefinitions {
		definitions = definitions[:maxDefinitions]
	}
	e.Definitions = definitions

	flashcards := e.Flashcards[:0]
	for _, f := range e.Flashcards {
		f.Question = strings.TrimSpace(f.Question)
		f.Answer = strings.TrimSpace(f.Answer)
		if f.Question != "" && f.Answer != "" {
			flashcards = append(flashcards, f)
		}
	}
	if len(flashcards) > maxFlashcards {
		flashcards = flashcards[:maxFlashcards]
	}
	e.Flashcards = flashcards

	e.Abstract = strings.TrimSpace(e.Abstract)
	if len(e.Abstract) > maxAbstractLen {
		e.Abstract = truncate(e.Abstract, maxAbstractLen)
	}
}
