package classification

import (
	"fmt"
	"os"
	"sync"

	"github.com/goccy/go-json"

	"sms_classifier/pkg/apperr"
	"sms_classifier/pkg/logger"
)

// featureMap is the on-disk vocabulary resource.
type featureMap struct {
	Vocab                 map[string]int `json:"vocab"`
	HeuristicFeatureCount int            `json:"heuristicFeatureCount"`
}

// Vocabulary maps lowercase tokens to dense vector indices. It loads its
// resource on first use and is read-only afterwards. A missing or invalid
// resource leaves it empty.
type Vocabulary struct {
	path string

	once  sync.Once
	index map[string]int
	err   error
}

// NewVocabulary returns a vocabulary backed by the feature map at path.
func NewVocabulary(path string) *Vocabulary {
	return &Vocabulary{path: path}
}

// NewStaticVocabulary returns an already-loaded vocabulary.
func NewStaticVocabulary(index map[string]int) *Vocabulary {
	v := &Vocabulary{index: index}
	if err := validateIndex(index); err != nil {
		v.index, v.err = nil, err
	}
	v.once.Do(func() {})
	return v
}

func (v *Vocabulary) load() {
	v.once.Do(func() {
		index, err := readFeatureMap(v.path)
		if err != nil {
			v.err = fmt.Errorf("%w: %v", apperr.ErrVocabularyUnavailable, err)
			logger.Warn("[Vocabulary] %v; TF vector disabled", err)
			return
		}
		v.index = index
		logger.Info("[Vocabulary] loaded %d terms from %s", len(index), v.path)
	})
}

func readFeatureMap(path string) (map[string]int, error) {
	if path == "" {
		return nil, fmt.Errorf("no feature map configured")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feature map: %w", err)
	}
	var fm featureMap
	if err := json.Unmarshal(data, &fm); err != nil {
		return nil, fmt.Errorf("decode feature map: %w", err)
	}
	if fm.HeuristicFeatureCount != 0 && fm.HeuristicFeatureCount != len(heuristicPredicates) {
		logger.Warn("[Vocabulary] feature map declares %d heuristic features, extractor produces %d",
			fm.HeuristicFeatureCount, len(heuristicPredicates))
	}
	if err := validateIndex(fm.Vocab); err != nil {
		return nil, err
	}
	return fm.Vocab, nil
}

// validateIndex requires every index to address a slot in [0, len).
func validateIndex(index map[string]int) error {
	for token, i := range index {
		if i < 0 || i >= len(index) {
			return fmt.Errorf("vocabulary index %d for %q out of range [0,%d)", i, token, len(index))
		}
	}
	return nil
}

// Size is the TF vector width; 0 when the vocabulary is unavailable.
func (v *Vocabulary) Size() int {
	v.load()
	return len(v.index)
}

// Lookup returns the slot for a lowercase token.
func (v *Vocabulary) Lookup(token string) (int, bool) {
	v.load()
	i, ok := v.index[token]
	return i, ok
}

// Err reports why the vocabulary is empty, if it failed to load.
func (v *Vocabulary) Err() error {
	v.load()
	return v.err
}
