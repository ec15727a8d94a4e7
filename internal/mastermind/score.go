package mastermind

import "fmt"

// Score is the answer to one guess: strong = right digit in the right
// position, weak = right digit in the wrong position.
type Score struct {
	Strong int `json:"strong" yaml:"strong"`
	Weak   int `json:"weak" yaml:"weak"`
}

func (s Score) String() string {
	return fmt.Sprintf("(%d, %d)", s.Strong, s.Weak)
}

// Pair holds the secret and guess digits found at the same position.
type Pair struct {
	Secret int
	Guess  int
}

// Solve scores guess against secret.
//
// Invalid sequences and mismatched lengths yield Score{0, 0}, which is
// indistinguishable from a guess with no matches. Call Validate first when
// the difference matters.
func Solve(secret, guess Sequence) Score {
	if IsInvalid(secret) || IsInvalid(guess) || len(secret) != len(guess) {
		return Score{}
	}

	pairs := Zip(secret, guess)
	return Score{Strong: StrongCount(pairs), Weak: WeakCount(pairs)}
}

// Zip pairs secret and guess by position, stopping at the shorter one.
func Zip(secret, guess Sequence) []Pair {
	n := min(len(secret), len(guess))
	pairs := make([]Pair, n)
	for i := 0; i < n; i++ {
		pairs[i] = Pair{Secret: secret[i], Guess: guess[i]}
	}
	return pairs
}

func StrongCount(pairs []Pair) int {
	strong := 0
	for _, p := range pairs {
		strong += matchBit(p.Secret - p.Guess)
	}
	return strong
}

// matchBit maps a zero difference to 1 and everything else to 0.
func matchBit(diff int) int {
	if diff == 0 {
		return 1
	}
	return 0
}

// WeakCount counts distinct guessed values, outside the strong positions,
// that also occur among the secret's digits outside the strong positions.
// Each value counts once no matter how often it repeats on either side, so
// secret 2,2,3,3 against guess 3,3,2,2 gives 2, not 4.
func WeakCount(pairs []Pair) int {
	var secretVals, guessVals []int
	for _, p := range pairs {
		if p.Secret == p.Guess {
			continue
		}
		secretVals = append(secretVals, p.Secret)
		guessVals = append(guessVals, p.Guess)
	}

	inSecret := distinct(secretVals)
	weak := 0
	for d := range distinct(guessVals) {
		if _, ok := inSecret[d]; ok {
			weak++
		}
	}
	return weak
}
