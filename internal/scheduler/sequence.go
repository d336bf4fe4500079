package scheduler

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// NoSequence is the ordering key of a task whose name carries no sequence
// number. It sorts after every real key.
const NoSequence = math.MaxInt

// SequenceExtractor pulls an ordering number out of a task name. It must be
// pure; the boolean reports whether a number was found.
type SequenceExtractor func(name string) (int, bool)

// DefaultSequencePatterns match "3주차" style week ordinals and English
// "week 3", "unit 3", "chapter 3" or "lesson 3" labels.
var DefaultSequencePatterns = []string{
	`(\d+)\s*주차`,
	`(?i)\b(?:week|unit|chapter|lesson)\s*(\d+)`,
}

// RegexExtractor builds an extractor trying each pattern in order. Every
// pattern needs at least one capture group; the first group holds the number.
func RegexExtractor(patterns ...string) (SequenceExtractor, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, raw := range patterns {
		re, err := regexp.Compile(raw)
		if err != nil {
			return nil, fmt.Errorf("compile sequence pattern %q: %w", raw, err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("sequence pattern %q has no capture group", raw)
		}
		compiled = append(compiled, re)
	}
	return func(name string) (int, bool) {
		for _, re := range compiled {
			match := re.FindStringSubmatch(name)
			if match == nil {
				continue
			}
			n, err := strconv.Atoi(match[1])
			if err != nil {
				continue
			}
			return n, true
		}
		return 0, false
	}, nil
}

// DefaultExtractor uses DefaultSequencePatterns.
func DefaultExtractor() SequenceExtractor {
	extract, err := RegexExtractor(DefaultSequencePatterns...)
	if err != nil {
		panic(err)
	}
	return extract
}
