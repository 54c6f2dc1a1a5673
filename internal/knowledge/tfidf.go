package knowledge

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

// ErrNotFitted is returned by Transform before FitTransform has been called
var ErrNotFitted = errors.New("vectorizer has not been fitted")

// wordPattern matches words of at least two letters, digits or underscores
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// TFIDFVectorizer is a local term-frequency / inverse-document-frequency
// vectorizer. FitTransform learns the vocabulary from the FAQ questions;
// Transform projects new text onto it. Not safe for concurrent use.
type TFIDFVectorizer struct {
	maxN  int
	vocab map[string]int
	idf   []float64
}

// NewTFIDFVectorizer creates a vectorizer over 1..maxN word n-grams
func NewTFIDFVectorizer(maxN int) *TFIDFVectorizer {
	if maxN < 1 {
		maxN = 1
	}
	return &TFIDFVectorizer{maxN: maxN}
}

// FitTransform learns vocabulary and idf weights from documents and returns
// their L2-normalized tf-idf vectors.
func (v *TFIDFVectorizer) FitTransform(documents []string) ([][]float64, error) {
	docTerms := make([][]string, len(documents))
	df := make(map[string]int)
	for i, doc := range documents {
		terms := ExtractTerms(doc, v.maxN)
		docTerms[i] = terms

		seen := make(map[string]bool, len(terms))
		for _, t := range terms {
			if !seen[t] {
				seen[t] = true
				df[t]++
			}
		}
	}

	vocabulary := make([]string, 0, len(df))
	for t := range df {
		vocabulary = append(vocabulary, t)
	}
	sort.Strings(vocabulary)

	v.vocab = make(map[string]int, len(vocabulary))
	v.idf = make([]float64, len(vocabulary))
	n := float64(len(documents))
	for i, t := range vocabulary {
		v.vocab[t] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}

	vectors := make([][]float64, len(documents))
	for i, terms := range docTerms {
		vectors[i] = v.vectorize(terms)
	}
	return vectors, nil
}

// Transform returns tf-idf vectors for documents using the fitted
// vocabulary. Unknown terms are ignored.
func (v *TFIDFVectorizer) Transform(documents []string) ([][]float64, error) {
	if v.vocab == nil {
		return nil, ErrNotFitted
	}

	vectors := make([][]float64, len(documents))
	for i, doc := range documents {
		vectors[i] = v.vectorize(ExtractTerms(doc, v.maxN))
	}
	return vectors, nil
}

// Dims returns the vocabulary size of the last fit
func (v *TFIDFVectorizer) Dims() int {
	return len(v.idf)
}

func (v *TFIDFVectorizer) vectorize(terms []string) []float64 {
	vec := make([]float64, len(v.idf))
	for _, t := range terms {
		if idx, ok := v.vocab[t]; ok {
			vec[idx]++
		}
	}

	var norm float64
	for i := range vec {
		vec[i] *= v.idf[i]
		norm += vec[i] * vec[i]
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

// ExtractTerms lowercases input, splits it into words and returns every
// 1..maxN word n-gram in reading order. Repeated n-grams are kept so callers
// can count them.
func ExtractTerms(input string, maxN int) []string {
	words := wordPattern.FindAllString(strings.ToLower(input), -1)
	if len(words) == 0 {
		return []string{}
	}

	terms := make([]string, 0, len(words)*maxN)
	for n := 1; n <= maxN && n <= len(words); n++ {
		for i := 0; i <= len(words)-n; i++ {
			terms = append(terms, strings.Join(words[i:i+n], " "))
		}
	}
	return terms
}
