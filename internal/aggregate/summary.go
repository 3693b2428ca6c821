package aggregate

// Summary holds the run-level counters printed ahead of the breakdown.
type Summary struct {
	RecordsAttempted int `json:"records_attempted"`
	RecordsProcessed int `json:"records_processed"`
	RecordsFailed    int `json:"records_failed"`
	TotalOccurrences int `json:"total_occurrences"`
	UniqueWords      int `json:"unique_words"`
}
