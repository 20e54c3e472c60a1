package token_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"booklend-backend/internal/shared/token"
)

func Test_Tokenize(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "lowercases_and_splits_on_whitespace",
			in:   []string{"Clean Code"},
			want: []string{"clean", "code"},
		},
		{
			name: "strips_diacritics_and_drops_short_tokens",
			in:   []string{"Códigó ¡Limpio! A", "Martín"},
			want: []string{"codigo", "limpio", "martin"},
		},
		{
			name: "punctuation_acts_as_separator",
			in:   []string{"don't-stop_now.2nd"},
			want: []string{"don", "stop", "now", "2nd"},
		},
		{
			name: "deduplicates_across_arguments",
			in:   []string{"go go go", "Go Programming"},
			want: []string{"go", "programming"},
		},
		{
			name: "single_character_tokens_dropped",
			in:   []string{"a b c ab"},
			want: []string{"ab"},
		},
		{
			name: "empty_input",
			in:   []string{"", "   ", "!!!"},
			want: []string{},
		},
		{
			name: "digits_kept",
			in:   []string{"Catch 22"},
			want: []string{"catch", "22"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, token.Tokenize(tc.in...))
		})
	}
}

func Test_Tokenize_CapsAtTenTokens(t *testing.T) {
	in := "alpha bravo charlie delta echo foxtrot golf hotel india juliett kilo lima"

	got := token.Tokenize(in)

	assert.Len(t, got, 10)
	assert.Equal(t, strings.Fields(in)[:10], got)
}

func Test_Tokenize_EarlierArgumentsWinTheCap(t *testing.T) {
	first := "one two three four five six seven eight nine ten"
	second := "eleven twelve"

	got := token.Tokenize(first, second)

	assert.Len(t, got, 10)
	assert.NotContains(t, got, "eleven")
	assert.NotContains(t, got, "twelve")
}

func Test_Overlaps(t *testing.T) {
	tests := []struct {
		name string
		a    []string
		b    []string
		want bool
	}{
		{"shared_token", []string{"clean", "code"}, []string{"code", "complete"}, true},
		{"no_shared_token", []string{"clean", "code"}, []string{"pragmatic"}, false},
		{"empty_a", nil, []string{"code"}, false},
		{"empty_b", []string{"code"}, nil, false},
		{"both_empty", nil, nil, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, token.Overlaps(tc.a, tc.b))
		})
	}
}
