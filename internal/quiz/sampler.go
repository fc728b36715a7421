package quiz

import (
	"fmt"
	"math/rand"

	"quizmaster/internal/models"
	"quizmaster/internal/validation"
)

// Shuffler is the randomness a sampler needs. *rand.Rand satisfies it, so
// tests can pass rand.New(rand.NewSource(seed)).
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type globalShuffler struct{}

// Shuffle uses the package-level source, which is seeded from system entropy
// and safe for concurrent use.
func (globalShuffler) Shuffle(n int, swap func(i, j int)) {
	rand.Shuffle(n, swap)
}

// DefaultShuffler returns the entropy-seeded, goroutine-safe shuffler
func DefaultShuffler() Shuffler {
	return globalShuffler{}
}

// Sampler turns selected questions into a quiz batch
type Sampler struct {
	rng Shuffler
}

// NewSampler creates a sampler. A nil rng selects DefaultShuffler.
func NewSampler(rng Shuffler) *Sampler {
	if rng == nil {
		rng = DefaultShuffler()
	}
	return &Sampler{rng: rng}
}

// BuildBatch validates the questions and gives each one its own permutation
// of options. The input questions are not modified.
func (s *Sampler) BuildBatch(questions []models.Question) (models.Batch, error) {
	if len(questions) != models.BatchSize {
		return nil, fmt.Errorf("%w: got %d", models.ErrBatchSize, len(questions))
	}

	batch := make(models.Batch, 0, len(questions))
	for _, q := range questions {
		if err := validation.ValidateQuestion(q); err != nil {
			return nil, err
		}

		shuffled := make([]string, len(q.Options))
		copy(shuffled, q.Options)
		s.rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		batch = append(batch, models.BatchQuestion{
			Question:        q,
			ShuffledOptions: shuffled,
		})
	}

	return batch, nil
}

// Pick returns up to n items chosen uniformly at random without replacement.
// The input slice is not modified.
func Pick[T any](rng Shuffler, items []T, n int) []T {
	picked := make([]T, len(items))
	copy(picked, items)
	rng.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	if n < len(picked) {
		picked = picked[:n]
	}
	return picked
}
