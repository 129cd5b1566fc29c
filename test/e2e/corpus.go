// Package e2e provides end-to-end tests exercising the HTTP API with a large corpus.
package e2e

import (
	"fmt"
)

// Corpus holds the texts used by the end-to-end tests.
type Corpus struct {
	Texts      []string
	TotalTexts int
}

// BuildCorpus returns a corpus of 100 texts with varied content. Each text
// carries a unique signature token so positional checks can tell them apart.
func BuildCorpus() *Corpus {
	texts := buildTexts(100)
	return &Corpus{
		Texts:      texts,
		TotalTexts: len(texts),
	}
}

func buildTexts(n int) []string {
	topics := []struct {
		subject string
		body    string
	}{
		{"quarterly finance report", "revenue and operating costs for the quarter with projections for the next fiscal year"},
		{"kubernetes deployment guide", "rolling updates readiness probes and horizontal pod autoscaling for production clusters"},
		{"mediterranean recipe collection", "olive oil tomatoes basil and slow cooked vegetables served with fresh bread"},
		{"astronomy field notes", "telescope observations of nebulae variable stars and planetary transits from the northern hemisphere"},
		{"customer support transcript", "ticket escalation refund policy and resolution steps for a billing dispute"},
		{"machine learning lecture", "gradient descent regularization and model evaluation on held out validation data"},
		{"travel itinerary draft", "train connections museum opening hours and walking routes through the old town"},
		{"gardening calendar", "seed starting dates soil preparation and a pruning schedule for fruit trees"},
		{"legal contract summary", "liability clauses termination terms and renewal options negotiated last spring"},
		{"music theory primer", "chord progressions voice leading and modal interchange in jazz harmony"},
	}
	texts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		topic := topics[i%len(topics)]
		texts = append(texts, fmt.Sprintf("%s %d: %s signature%04d", topic.subject, i, topic.body, i))
	}
	return texts
}
