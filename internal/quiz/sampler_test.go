package quiz

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"quizmaster/internal/models"
	"quizmaster/internal/validation"
)

func makeQuestions(n int) []models.Question {
	questions := make([]models.Question, n)
	for i := range questions {
		id := int64(i + 1)
		questions[i] = models.Question{
			ID:      id,
			Text:    fmt.Sprintf("Question %d?", id),
			Options: []string{"alpha", "bravo", "charlie", "delta", "echo"}[:2+i%4],
			Answer:  "bravo",
		}
	}
	return questions
}

func TestBuildBatchIsPermutation(t *testing.T) {
	sampler := NewSampler(rand.New(rand.NewSource(7)))
	questions := makeQuestions(models.BatchSize)

	batch, err := sampler.BuildBatch(questions)
	if err != nil {
		t.Fatalf("BuildBatch() error = %v", err)
	}
	if len(batch) != models.BatchSize {
		t.Fatalf("batch size = %d, want %d", len(batch), models.BatchSize)
	}

	for i, bq := range batch {
		if bq.Question.ID != questions[i].ID {
			t.Errorf("position %d: question %d, want %d", i, bq.Question.ID, questions[i].ID)
		}

		original := append([]string(nil), questions[i].Options...)
		shuffled := append([]string(nil), bq.ShuffledOptions...)
		sort.Strings(original)
		sort.Strings(shuffled)
		if fmt.Sprint(original) != fmt.Sprint(shuffled) {
			t.Errorf("question %d: shuffled %v is not a permutation of %v", bq.Question.ID, bq.ShuffledOptions, questions[i].Options)
		}

		count := 0
		for _, opt := range bq.ShuffledOptions {
			if opt == bq.Question.Answer {
				count++
			}
		}
		if count != 1 {
			t.Errorf("question %d: answer appears %d times after shuffle", bq.Question.ID, count)
		}
	}
}

func TestBuildBatchDoesNotMutateStoredOrder(t *testing.T) {
	sampler := NewSampler(rand.New(rand.NewSource(1)))
	questions := makeQuestions(models.BatchSize)
	before := fmt.Sprint(questions)

	if _, err := sampler.BuildBatch(questions); err != nil {
		t.Fatalf("BuildBatch() error = %v", err)
	}
	if fmt.Sprint(questions) != before {
		t.Error("BuildBatch() modified its input")
	}
}

func TestBuildBatchSeededIsDeterministic(t *testing.T) {
	questions := makeQuestions(models.BatchSize)

	a, err := NewSampler(rand.New(rand.NewSource(42))).BuildBatch(questions)
	if err != nil {
		t.Fatalf("BuildBatch() error = %v", err)
	}
	b, err := NewSampler(rand.New(rand.NewSource(42))).BuildBatch(questions)
	if err != nil {
		t.Fatalf("BuildBatch() error = %v", err)
	}
	if fmt.Sprint(a) != fmt.Sprint(b) {
		t.Error("same seed produced different batches")
	}
}

func TestBuildBatchShuffleCoversAllPermutations(t *testing.T) {
	sampler := NewSampler(rand.New(rand.NewSource(3)))
	questions := makeQuestions(models.BatchSize)
	for i := range questions {
		questions[i].Options = []string{"a", "b", "c"}
		questions[i].Answer = "a"
	}

	seen := make(map[string]int)
	for round := 0; round < 200; round++ {
		batch, err := sampler.BuildBatch(questions)
		if err != nil {
			t.Fatalf("BuildBatch() error = %v", err)
		}
		for _, bq := range batch {
			seen[fmt.Sprint(bq.ShuffledOptions)]++
		}
	}

	// 2000 shuffles of three options; every one of the 6 orders should appear
	if len(seen) != 6 {
		t.Errorf("saw %d distinct orders, want 6: %v", len(seen), seen)
	}
}

func TestBuildBatchErrors(t *testing.T) {
	sampler := NewSampler(nil)

	tests := []struct {
		name      string
		questions []models.Question
		want      error
	}{
		{"too few", makeQuestions(9), models.ErrBatchSize},
		{"too many", makeQuestions(11), models.ErrBatchSize},
		{"empty", nil, models.ErrBatchSize},
		{"invalid question", func() []models.Question {
			qs := makeQuestions(models.BatchSize)
			qs[4].Answer = "zulu"
			return qs
		}(), validation.ErrInvalidQuestion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := sampler.BuildBatch(tt.questions)
			if !errors.Is(err, tt.want) {
				t.Fatalf("BuildBatch() error = %v, want %v", err, tt.want)
			}
			if batch != nil {
				t.Errorf("expected no batch on error, got %d questions", len(batch))
			}
		})
	}
}

func TestPick(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}

	picked := Pick(rng, items, 10)
	if len(picked) != 10 {
		t.Fatalf("Pick() returned %d items, want 10", len(picked))
	}
	seen := make(map[int]bool)
	for _, v := range picked {
		if seen[v] {
			t.Errorf("Pick() returned duplicate %d", v)
		}
		seen[v] = true
	}

	if got := Pick(rng, items[:3], 10); len(got) != 3 {
		t.Errorf("Pick() from 3 items returned %d, want 3", len(got))
	}
	if items[0] != 1 || items[11] != 12 {
		t.Error("Pick() modified its input")
	}
}
