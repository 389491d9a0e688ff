package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPickWinner(t *testing.T) {
	tests := []struct {
		name    string
		tallies []Tally
		want    string
		ok      bool
	}{
		{"no votes", nil, "", false},
		{"clear winner", []Tally{{"1", 2}, {"2", 5}, {"3", 1}}, "2", true},
		{"tie goes to smallest id", []Tally{{"7", 3}, {"2", 3}, {"10", 3}}, "2", true},
		{"numeric not lexical", []Tally{{"10", 3}, {"9", 3}}, "9", true},
		{"numeric ids before free text", []Tally{{"write-in", 4}, {"12", 4}}, "12", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PickWinner(tt.tallies)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSortedComments(t *testing.T) {
	got := SortedComments([]string{"b", "", "a", "b"})
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestRedactComment(t *testing.T) {
	assert.Nil(t, RedactComment(nil, "Sara"))

	comment := "Sara says hi at 555-123-4567"
	got := RedactComment(&comment, "Sara", "Jenkins")
	assert.Equal(t, "[REDACTED NAME] says hi at [REDACTED PHONE NUMBER]", *got)
	assert.Equal(t, "Sara says hi at 555-123-4567", comment, "input must not be mutated")
}
