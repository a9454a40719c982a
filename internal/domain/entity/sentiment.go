package entity

// SentimentReading is a market Fear & Greed observation, one per calendar
// day regardless of how many times the report runs.
type SentimentReading struct {
	Value          int    `json:"value"` // 0-100
	Classification string `json:"classification"`
}

// NeutralSentiment is the fallback served when the sentiment source cannot
// be reached. It is never persisted.
func NeutralSentiment() SentimentReading {
	return SentimentReading{Value: 50, Classification: "Neutral"}
}
