// Package taskcode implements the short codes used to reference tasks in
// chat commands. A code is a Crockford-style base32 rendering of the task's
// numeric id: compact, case-insensitive and safe to read out loud.
package taskcode

import (
	"errors"
	"strings"
)

// alphabet is the Crockford base32 alphabet. I, L, O and U are excluded to
// avoid confusion with 1 and 0 and to keep codes pronounceable.
const alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// ErrInvalidCode is returned by Decode when the input is not a well-formed
// short code. It is distinct from a remote "task not found": an invalid code
// never reaches the task service.
var ErrInvalidCode = errors.New("invalid task code")

// Task ids are 32-bit database keys on the remote side. Seven base32 digits
// cover that range; anything longer is noise, not a code.
const (
	maxID     = 1<<31 - 1
	maxDigits = 7
)

var decodeTable = buildDecodeTable()

func buildDecodeTable() [128]int8 {
	var table [128]int8
	for i := range table {
		table[i] = -1
	}
	for i, c := range alphabet {
		table[c] = int8(i)
	}
	return table
}

// Encode renders a non-negative task id as a short code.
// Encode panics on ids outside the remote id range; task ids are
// remote-assigned and positive.
func Encode(id int) string {
	if id < 0 || id > maxID {
		panic("taskcode: task id out of range")
	}
	if id == 0 {
		return "0"
	}

	var buf [maxDigits]byte
	i := len(buf)
	for id > 0 {
		i--
		buf[i] = alphabet[id%32]
		id /= 32
	}
	return string(buf[i:])
}

// Normalize prepares user input for Decode: surrounding whitespace and
// hyphens are dropped, letters are uppercased, and the easily-confused
// characters I, L and O are folded onto 1, 1 and 0.
func Normalize(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(s)) {
		switch r {
		case '-':
			continue
		case 'I', 'L':
			sb.WriteRune('1')
		case 'O':
			sb.WriteRune('0')
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Decode parses a normalized short code back into a task id. Input that is
// empty, contains characters outside the alphabet, or falls outside the
// remote id range yields ErrInvalidCode. Decode never maps garbage to id 0.
func Decode(code string) (int, error) {
	if code == "" || len(code) > maxDigits {
		return 0, ErrInvalidCode
	}

	id := 0
	for i := 0; i < len(code); i++ {
		c := code[i]
		if c >= 128 || decodeTable[c] < 0 {
			return 0, ErrInvalidCode
		}
		id = id*32 + int(decodeTable[c])
	}
	if id > maxID {
		return 0, ErrInvalidCode
	}
	return id, nil
}
