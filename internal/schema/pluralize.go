package schema

import "strings"

// vowelYEndings lists the vowel+y endings ("Day", "Key") that just take
// a trailing "s"; any other trailing y ("Category") becomes "ies".
var vowelYEndings = []string{"ay", "ey", "oy", "uy"}

// Singular lowercases a PascalCase model name for use as the bare
// singular REST/id-prefix segment. "Contact" -> "contact".
func Singular(modelName string) string {
	return strings.ToLower(modelName)
}

// Plural derives the bare plural REST collection path from a PascalCase
// model name per the fixed rule set in spec §3:
//
//	Category  -> categories   (consonant + y -> ies)
//	Address   -> addresses    (trailing s/x/z/ch/sh -> es)
//	Box       -> boxes
//	Branch    -> branches
//	Wish      -> wishes
//	Day       -> days         (vowel + y keeps s)
//	Key       -> keys
//	default   -> append s
func Plural(modelName string) string {
	lower := strings.ToLower(modelName)
	if lower == "" {
		return lower
	}

	if strings.HasSuffix(lower, "y") && len(lower) >= 2 {
		last2 := lower[len(lower)-2:]
		keepsS := false
		for _, end := range vowelYEndings {
			if last2 == end {
				keepsS = true
				break
			}
		}
		if !keepsS {
			return lower[:len(lower)-1] + "ies"
		}
		return lower + "s"
	}

	for _, suffix := range []string{"s", "x", "z", "ch", "sh"} {
		if strings.HasSuffix(lower, suffix) {
			return lower + "es"
		}
	}

	return lower + "s"
}
