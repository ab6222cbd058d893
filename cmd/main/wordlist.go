package main

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// readTrainingList reads a whitespace separated word list. Words are returned
// sorted and without duplicates.
func readTrainingList(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read training list: %w", err)
	}
	words := strings.Fields(string(content))
	slices.Sort(words)
	return slices.Compact(words), nil
}

// titleCase upper-cases the first character and leaves the rest as generated, so
// "jean-luc" becomes "Jean-luc". A Caser keeps state, so each call builds its own.
func titleCase(word string) string {
	_, size := utf8.DecodeRuneInString(word)
	return cases.Upper(language.Und).String(word[:size]) + word[size:]
}
