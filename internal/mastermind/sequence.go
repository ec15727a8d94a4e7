package mastermind

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	MinDigit = 1
	MaxDigit = 9
)

var (
	ErrDigitOutOfRange   = errors.New("digit out of range [1, 9]")
	ErrLengthMismatch    = errors.New("secret and guess lengths differ")
	ErrMalformedSequence = errors.New("malformed sequence")
)

// Sequence is an ordered list of digits. Values outside [MinDigit, MaxDigit]
// are representable so that input coming from the outside can be checked.
type Sequence []int

func (s Sequence) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

// ParseSequence converts a comma separated list such as "1,7,9,3,7".
// Only the integer syntax is checked here; the digit range is left to
// IsInvalid / Validate.
func ParseSequence(s string) (Sequence, error) {
	tokens := strings.Split(s, ",")
	seq := make(Sequence, 0, len(tokens))
	for _, tok := range tokens {
		n, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrMalformedSequence, tok)
		}
		seq = append(seq, n)
	}
	return seq, nil
}

// IsInvalid reports whether seq contains a value outside [1, 9].
func IsInvalid(seq Sequence) bool {
	return !IsValidRange(seq)
}

// IsValidRange checks every distinct value of seq once.
func IsValidRange(seq Sequence) bool {
	for d := range distinct(seq) {
		if d < MinDigit || d > MaxDigit {
			return false
		}
	}
	return true
}

// Validate is the explicit form of the checks Solve performs silently.
func Validate(secret, guess Sequence) error {
	if err := validateSide("secret", secret); err != nil {
		return err
	}
	if err := validateSide("guess", guess); err != nil {
		return err
	}
	if len(secret) != len(guess) {
		return fmt.Errorf("%w: secret has %d digits, guess has %d", ErrLengthMismatch, len(secret), len(guess))
	}
	return nil
}

func validateSide(side string, seq Sequence) error {
	for i, d := range seq {
		if d < MinDigit || d > MaxDigit {
			return fmt.Errorf("%s[%d]=%d: %w", side, i, d, ErrDigitOutOfRange)
		}
	}
	return nil
}

func distinct(seq []int) map[int]struct{} {
	set := make(map[int]struct{}, len(seq))
	for _, d := range seq {
		set[d] = struct{}{}
	}
	return set
}
