package schema

import (
	"fmt"
	"math/big"
	"math/rand"
)

const base62Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// Bit widths for the packed (hasNamespace, typeNum, namespace, timestamp,
// random) tuple (spec §4.2). 109 bits fits in 19 base62 digits with room
// to spare, which is the codec's fixed encoding width regardless of
// minLength; minLength only adds further zero-digit left-padding on top
// of that fixed width (a leading zero digit never changes the packed
// value in a big-endian positional encoding, so this is lossless).
const (
	typeBits      = 14
	namespaceBits = 20
	timestampBits = 42
	randomBits    = 32
	fixedDigits   = 19
)

// DecodedID is the tuple recovered by Codec.Decode.
type DecodedID struct {
	TypeNum   int
	Namespace *int
	Timestamp int64
	Random    uint32
}

// Codec packs/unpacks the opaque body of a prefixed id
// ("contact_" + body) using a seeded Fisher-Yates shuffle of the base62
// alphabet, per spec §4.2.
type Codec struct {
	minLength int
	alphabet  [62]byte
	reverse   map[byte]int
}

// NewCodec builds a codec whose alphabet is a seeded Fisher-Yates
// permutation of the base62 character set. Two different seeds produce
// different encodings for the same input with overwhelming probability.
func NewCodec(seed int64, minLength int) *Codec {
	if minLength < 1 {
		minLength = 8
	}

	var alphabet [62]byte
	copy(alphabet[:], base62Alphabet)

	rng := rand.New(rand.NewSource(seed))
	for i := len(alphabet) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		alphabet[i], alphabet[j] = alphabet[j], alphabet[i]
	}

	reverse := make(map[byte]int, len(alphabet))
	for i, c := range alphabet {
		reverse[c] = i
	}

	return &Codec{minLength: minLength, alphabet: alphabet, reverse: reverse}
}

// Encode packs (typeNum, namespace?, timestamp, random) into an opaque
// alphanumeric segment of at least minLength characters.
func (c *Codec) Encode(typeNum int, namespace *int, timestamp int64, random uint32) (string, error) {
	if typeNum < 0 || typeNum >= 1<<typeBits {
		return "", fmt.Errorf("idcodec: typeNum %d out of range", typeNum)
	}
	if timestamp < 0 || timestamp >= 1<<timestampBits {
		return "", fmt.Errorf("idcodec: timestamp %d out of range", timestamp)
	}

	packed := new(big.Int)
	hasNS := 0
	ns := 0
	if namespace != nil {
		hasNS = 1
		ns = *namespace
		if ns < 0 || ns >= 1<<namespaceBits {
			return "", fmt.Errorf("idcodec: namespace %d out of range", ns)
		}
	}

	packed.SetInt64(int64(hasNS))
	shiftInto(packed, typeBits, int64(typeNum))
	shiftInto(packed, namespaceBits, int64(ns))
	shiftInto(packed, timestampBits, timestamp)
	shiftInto(packed, randomBits, int64(random))

	digits := c.toDigits(packed, fixedDigits)

	out := make([]byte, 0, c.minLength)
	if pad := c.minLength - len(digits); pad > 0 {
		for i := 0; i < pad; i++ {
			out = append(out, c.alphabet[0])
		}
	}
	out = append(out, digits...)
	return string(out), nil
}

// Decode reverses Encode. A segment that does not decode to a
// recognised shape (wrong alphabet, too short) returns an error; a
// segment decoding to an unknown typeNum is the caller's responsibility
// to detect via the TypeRegistry (Decode itself has no registry).
func (c *Codec) Decode(segment string) (*DecodedID, error) {
	if len(segment) < fixedDigits {
		return nil, fmt.Errorf("idcodec: segment too short")
	}
	tail := segment[len(segment)-fixedDigits:]

	packed := new(big.Int)
	for i := 0; i < len(tail); i++ {
		digit, ok := c.reverse[tail[i]]
		if !ok {
			return nil, fmt.Errorf("idcodec: invalid character %q", tail[i])
		}
		packed.Mul(packed, big.NewInt(62))
		packed.Add(packed, big.NewInt(int64(digit)))
	}

	random := extractBits(packed, 0, randomBits)
	timestamp := extractBits(packed, randomBits, timestampBits)
	namespace := extractBits(packed, randomBits+timestampBits, namespaceBits)
	typeNum := extractBits(packed, randomBits+timestampBits+namespaceBits, typeBits)
	hasNS := extractBits(packed, randomBits+timestampBits+namespaceBits+typeBits, 1)

	result := &DecodedID{
		TypeNum:   int(typeNum),
		Timestamp: timestamp,
		Random:    uint32(random),
	}
	if hasNS != 0 {
		n := int(namespace)
		result.Namespace = &n
	}
	return result, nil
}

// shiftInto shifts acc left by `bits` and ORs in `value` (value must fit
// in `bits` bits; callers validate range before calling).
func shiftInto(acc *big.Int, bits int, value int64) {
	acc.Lsh(acc, uint(bits))
	acc.Or(acc, big.NewInt(value))
}

// extractBits returns the `bits`-wide field starting at bit offset
// `offset` from the LSB of packed.
func extractBits(packed *big.Int, offset, bits int) int64 {
	shifted := new(big.Int).Rsh(packed, uint(offset))
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(bits)), big.NewInt(1))
	shifted.And(shifted, mask)
	return shifted.Int64()
}

// toDigits converts packed to exactly `width` base62 digits (using this
// codec's shuffled alphabet), left-padded with the zero digit.
func (c *Codec) toDigits(packed *big.Int, width int) []byte {
	digits := make([]byte, width)
	n := new(big.Int).Set(packed)
	base := big.NewInt(62)
	mod := new(big.Int)
	for i := width - 1; i >= 0; i-- {
		n.DivMod(n, base, mod)
		digits[i] = c.alphabet[mod.Int64()]
	}
	return digits
}
