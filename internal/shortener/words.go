package shortener

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	_ "embed"
)

//go:embed words.txt
var defaultWordList []byte

// DefaultVocabulary returns the built-in word list shipped with the binary.
func DefaultVocabulary() []Word {
	words, err := ReadVocabulary(bytes.NewReader(defaultWordList))
	if err != nil {
		// The embedded list is validated by tests; a parse failure here is a
		// build defect, not a runtime condition.
		panic(fmt.Sprintf("embedded word list: %v", err))
	}

	return words
}

// LoadVocabulary reads a word list from a file.
func LoadVocabulary(path string) ([]Word, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open word list: %w", err)
	}
	defer f.Close()

	words, err := ReadVocabulary(f)
	if err != nil {
		return nil, fmt.Errorf("read word list %s: %w", path, err)
	}

	return words, nil
}

// ReadVocabulary parses a newline-separated word list. Blank lines and
// lines starting with '#' are skipped; words are lowercased and deduplicated.
func ReadVocabulary(r io.Reader) ([]Word, error) {
	var words []Word

	seen := make(map[Word]struct{})

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		word := Word(strings.ToLower(line))
		if _, ok := seen[word]; ok {
			continue
		}

		seen[word] = struct{}{}
		words = append(words, word)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(words) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}

	return words, nil
}
