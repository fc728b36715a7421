package models

import "testing"

func TestFilterMatches(t *testing.T) {
	fresh := Question{ID: 1}
	right := Question{ID: 2, HasAsked: true, AnsweredCorrectly: true}
	wrong := Question{ID: 3, HasAsked: true}
	// Correctness without exposure carries no meaning
	stale := Question{ID: 4, AnsweredCorrectly: true}

	tests := []struct {
		name   string
		filter Filter
		q      Question
		want   bool
	}{
		{"all fresh", FilterAll, fresh, true},
		{"all wrong", FilterAll, wrong, true},
		{"unasked fresh", FilterUnasked, fresh, true},
		{"unasked right", FilterUnasked, right, false},
		{"unasked stale", FilterUnasked, stale, true},
		{"incorrect wrong", FilterIncorrect, wrong, true},
		{"incorrect right", FilterIncorrect, right, false},
		{"incorrect fresh", FilterIncorrect, fresh, false},
		{"incorrect stale", FilterIncorrect, stale, false},
		{"unknown filter", Filter(42), fresh, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(tt.q); got != tt.want {
				t.Errorf("%v.Matches(%+v) = %v, want %v", tt.filter, tt.q, got, tt.want)
			}
		})
	}
}

func TestFilterForQuizType(t *testing.T) {
	tests := []struct {
		quizType string
		want     Filter
		ok       bool
	}{
		{"Random Quiz", FilterAll, true},
		{"Untested Questions Quiz", FilterUnasked, true},
		{"Incorrect Questions Quiz", FilterIncorrect, true},
		{"random quiz", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.quizType, func(t *testing.T) {
			got, ok := FilterForQuizType(tt.quizType)
			if ok != tt.ok || (ok && got != tt.want) {
				t.Errorf("FilterForQuizType(%q) = %v, %v; want %v, %v", tt.quizType, got, ok, tt.want, tt.ok)
			}
		})
	}

	for _, label := range QuizTypes {
		if _, ok := FilterForQuizType(label); !ok {
			t.Errorf("menu label %q has no filter", label)
		}
	}
}

func TestFilterString(t *testing.T) {
	if FilterUnasked.String() != "unasked" {
		t.Errorf("FilterUnasked.String() = %q", FilterUnasked.String())
	}
	if Filter(9).String() != "filter(9)" {
		t.Errorf("Filter(9).String() = %q", Filter(9).String())
	}
}
