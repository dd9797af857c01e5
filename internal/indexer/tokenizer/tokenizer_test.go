package tokenizer

import (
	"reflect"
	"testing"
)

func TestNameWords(t *testing.T) {
	tests := []struct {
		name string
		want []string
	}{
		{"Soul_Food", []string{"soul", "food"}},
		{"Soul_Food_(film)", []string{"soul", "food", "film"}},
		{"Elon_Musk", []string{"elon", "musk"}},
		{"AC/DC", []string{"ac", "dc"}},
		{"Soul_Soul", []string{"soul"}},
		{"2016_Summer_Olympics", []string{"2016", "summer", "olympics"}},
		{"___", nil},
	}
	for _, tt := range tests {
		got := NameWords(tt.name)
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("NameWords(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestClaimWords(t *testing.T) {
	tests := []struct {
		claim string
		want  []string
	}{
		{"I love Soul Food", []string{"I", "love", "Soul", "Food"}},
		{"Elon Musk founded SpaceX.", []string{"Elon", "Musk", "founded", "SpaceX"}},
		{"snake_case stays joined", []string{"snake_case", "stays", "joined"}},
		{"", nil},
		{"  ...  ", nil},
	}
	for _, tt := range tests {
		got := ClaimWords(tt.claim)
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ClaimWords(%q) = %v, want %v", tt.claim, got, tt.want)
		}
	}
}

func TestNameTokens(t *testing.T) {
	tests := []struct {
		name string
		want []string
	}{
		{"Soul_Food", []string{"soul", "food"}},
		{"Soul_Food_(film)", []string{"soul", "food"}},
		{"Soul_Food_(1997_film)", []string{"soul", "food"}},
		{"(disambiguation)", nil},
		{"Elon_Musk", []string{"elon", "musk"}},
		{"A__B", []string{"a", "b"}},
	}
	for _, tt := range tests {
		got := NameTokens(tt.name)
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("NameTokens(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestIsEntityWord(t *testing.T) {
	tests := []struct {
		word string
		want bool
	}{
		{"Soul", true},
		{"soul", false},
		{"SpaceX", true},
		{"2016", true},
		{"iPhone", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsEntityWord(tt.word); got != tt.want {
			t.Errorf("IsEntityWord(%q) = %v, want %v", tt.word, got, tt.want)
		}
	}
}
