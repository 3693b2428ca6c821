package crawler

// Record is one validated input row identifying a page to check.
type Record struct {
	// Index is the zero-based position of the record in the input file.
	Index  int    `json:"index"`
	Label  string `json:"label"`
	Target string `json:"target"`
}

// Span marks one misspelled token as byte offsets into the checked text.
type Span struct {
	Start int
	End   int
}

// Len returns the width of the span in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// Occurrence is a single misspelling instance with its surrounding context.
type Occurrence struct {
	Word    string `json:"word"`
	Context string `json:"context"`
}

// RecordResult holds the misspellings found on one successfully processed page.
// Words keeps first-occurrence order so folds and renderers stay deterministic.
type RecordResult struct {
	Label              string              `json:"label"`
	Target             string              `json:"target"`
	Words              []string            `json:"words"`
	MisspellingsByWord map[string][]string `json:"misspellings_by_word"`
}

// NewRecordResult returns an empty result for the record.
func NewRecordResult(record Record) *RecordResult {
	return &RecordResult{
		Label:              record.Label,
		Target:             record.Target,
		MisspellingsByWord: make(map[string][]string),
	}
}

// Add appends an occurrence under its word, registering the word on first sight.
func (r *RecordResult) Add(occ Occurrence) {
	if _, ok := r.MisspellingsByWord[occ.Word]; !ok {
		r.Words = append(r.Words, occ.Word)
	}
	r.MisspellingsByWord[occ.Word] = append(r.MisspellingsByWord[occ.Word], occ.Context)
}

// Occurrences counts every context recorded on the page, repeats included.
func (r *RecordResult) Occurrences() int {
	if r == nil {
		return 0
	}
	total := 0
	for _, contexts := range r.MisspellingsByWord {
		total += len(contexts)
	}
	return total
}

// Outcome is the terminal state of one scheduled task. Exactly one of Result
// and Err is set.
type Outcome struct {
	Record Record
	Result *RecordResult
	Err    error
}

// OK reports whether the task produced a result.
func (o Outcome) OK() bool {
	return o.Err == nil && o.Result != nil
}
