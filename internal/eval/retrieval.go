package eval

import "fmt"

// DefaultKs are the cutoffs reported by retrieval evaluation when the caller
// supplies none.
var DefaultKs = []int{1, 5, 10, 20, 50, 100}

// TopKAccuracy returns the percentage of documents whose top-k contexts
// contain an answer-bearing passage. When useReordered is set and a document
// has reranked contexts, those are consulted instead of the retrieval order.
// An empty document set scores 0.
func TopKAccuracy(documents []Document, k int, useReordered bool) float64 {
	if len(documents) == 0 {
		return 0
	}

	hits := 0
	for _, doc := range documents {
		contexts := doc.Contexts
		if useReordered && len(doc.ReorderContexts) > 0 {
			contexts = doc.ReorderContexts
		}
		if k < len(contexts) {
			contexts = contexts[:k]
		}
		for _, c := range contexts {
			if c.HasAnswer {
				hits++
				break
			}
		}
	}

	return float64(hits) / float64(len(documents)) * 100
}

// RetrievalMetrics computes top-k accuracy for each requested cutoff, keyed
// "top_<k>".
func RetrievalMetrics(documents []Document, ks []int, useReordered bool) map[string]float64 {
	if len(ks) == 0 {
		ks = DefaultKs
	}
	results := make(map[string]float64, len(ks))
	for _, k := range ks {
		results[fmt.Sprintf("top_%d", k)] = TopKAccuracy(documents, k, useReordered)
	}
	return results
}
