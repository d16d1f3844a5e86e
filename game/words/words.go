package words

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
)

// EnvWordsFile names the environment variable that overrides the default list
const EnvWordsFile = "WORDWEEPER_WORDS_FILE"

//go:embed default_words.txt
var embeddedWords string

var (
	// ErrEmptyList is returned when a word list holds no usable word
	ErrEmptyList = errors.New("word list is empty")
	// ErrNoCandidates is returned when no word fits a length range
	ErrNoCandidates = errors.New("no candidate words")
)

var (
	defaultOnce sync.Once
	defaultList *List
)

// List is an immutable set of uppercase A-Z words indexed by length
type List struct {
	words []string
	byLen map[int][]string
}

// Default returns the embedded word list
func Default() *List {
	defaultOnce.Do(func() {
		list, err := Parse(strings.NewReader(embeddedWords))
		if err != nil {
			panic(fmt.Sprintf("embedded word list: %v", err))
		}
		defaultList = list
	})
	return defaultList
}

// FromEnv loads the file named by WORDWEEPER_WORDS_FILE, or the default list
// when the variable is unset.
func FromEnv() (*List, error) {
	if path := os.Getenv(EnvWordsFile); path != "" {
		return Load(path)
	}
	return Default(), nil
}

// Load reads a word list file
func Load(path string) (*List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open word list: %w", err)
	}
	defer f.Close()

	list, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return list, nil
}

// Parse reads one word per line. Blank lines and lines starting with '#' are
// ignored, words are upper-cased and anything that is not purely A-Z after
// that is skipped. Duplicates are dropped.
func Parse(r io.Reader) (*List, error) {
	seen := make(map[string]struct{})
	var list []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		word, ok := Normalize(line)
		if !ok {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		list = append(list, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}
	return New(list)
}

// New builds a list from already normalised words
func New(list []string) (*List, error) {
	if len(list) == 0 {
		return nil, ErrEmptyList
	}
	l := &List{words: make([]string, 0, len(list)), byLen: make(map[int][]string)}
	for _, w := range list {
		word, ok := Normalize(w)
		if !ok {
			return nil, fmt.Errorf("invalid word %q", w)
		}
		l.words = append(l.words, word)
		l.byLen[len(word)] = append(l.byLen[len(word)], word)
	}
	return l, nil
}

// Normalize upper-cases w and reports whether it is purely A-Z
func Normalize(w string) (string, bool) {
	word := strings.ToUpper(strings.TrimSpace(w))
	if word == "" {
		return "", false
	}
	for _, r := range word {
		if r < 'A' || r > 'Z' {
			return "", false
		}
	}
	return word, true
}

// Candidates returns every word with minLen <= len <= maxLen
func (l *List) Candidates(minLen, maxLen int) ([]string, error) {
	var out []string
	for n := minLen; n <= maxLen; n++ {
		out = append(out, l.byLen[n]...)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: between %d and %d letters", ErrNoCandidates, minLen, maxLen)
	}
	return out, nil
}

// Len returns the number of words
func (l *List) Len() int {
	return len(l.words)
}

// Words returns a copy of the list in load order
func (l *List) Words() []string {
	out := make([]string, len(l.words))
	copy(out, l.words)
	return out
}

// Lengths returns how many words exist per length, ascending by length
func (l *List) Lengths() [][2]int {
	lengths := make([][2]int, 0, len(l.byLen))
	for n, ws := range l.byLen {
		lengths = append(lengths, [2]int{n, len(ws)})
	}
	sort.Slice(lengths, func(i, j int) bool { return lengths[i][0] < lengths[j][0] })
	return lengths
}
