// Package anonymize masks phone numbers appearing as sender identities in
// transcripts, replacing them with star-masked numbers and friendly display
// names so summaries can be shared without exposing participants.
package anonymize

import (
	"math/rand"
	"strings"
	"unicode"

	"github.com/zoharbabin/ai-hackerspace-chat-chronicles/chronicle"
)

var adjectives = []string{
	"Happy", "Bouncy", "Cosmic", "Dancing", "Electric", "Fluffy", "Glowing",
	"Hyper", "Jazzy", "Magical", "Nifty", "Quirky", "Sparkly", "Whimsical",
	"Zesty", "Bubbly", "Cheerful", "Dazzling", "Energetic", "Fantastic",
}

var nouns = []string{
	"Penguin", "Unicorn", "Dragon", "Phoenix", "Wizard", "Ninja", "Panda",
	"Robot", "Dolphin", "Koala", "Raccoon", "Tiger", "Llama", "Octopus",
	"Platypus", "Narwhal", "Giraffe", "Kangaroo", "Hedgehog", "Chameleon",
}

// countryCodeLengths maps known international dialing codes to their digit
// length, so the code can be preserved while the subscriber number is masked.
var countryCodeLengths = map[string]int{
	"1": 1,
	"20": 2, "27": 2, "30": 2, "31": 2, "32": 2, "33": 2, "34": 2, "36": 2,
	"39": 2, "40": 2, "41": 2, "43": 2, "44": 2, "45": 2, "46": 2, "47": 2,
	"48": 2, "49": 2, "51": 2, "52": 2, "53": 2, "54": 2, "55": 2, "56": 2,
	"57": 2, "58": 2, "60": 2, "61": 2, "62": 2, "63": 2, "64": 2, "65": 2,
	"66": 2, "81": 2, "82": 2, "84": 2, "86": 2, "90": 2, "91": 2, "92": 2,
	"93": 2, "94": 2, "95": 2, "98": 2,
	"212": 3, "213": 3, "216": 3, "218": 3, "220": 3, "221": 3, "222": 3,
	"223": 3, "234": 3, "249": 3, "250": 3, "251": 3, "252": 3, "253": 3,
	"254": 3, "255": 3, "256": 3, "257": 3, "258": 3, "260": 3, "261": 3,
	"263": 3, "264": 3, "265": 3, "266": 3, "267": 3, "268": 3, "269": 3,
	"297": 3, "298": 3, "299": 3, "350": 3, "351": 3, "352": 3, "353": 3,
	"354": 3, "355": 3, "356": 3, "357": 3, "358": 3, "359": 3, "370": 3,
	"371": 3, "372": 3, "373": 3, "374": 3, "375": 3, "376": 3, "377": 3,
	"378": 3, "380": 3, "381": 3, "382": 3, "385": 3, "386": 3, "387": 3,
	"389": 3, "420": 3, "421": 3, "423": 3, "500": 3, "501": 3, "502": 3,
	"503": 3, "504": 3, "505": 3, "506": 3, "507": 3, "509": 3, "590": 3,
	"591": 3, "592": 3, "593": 3, "594": 3, "595": 3, "596": 3, "597": 3,
	"598": 3, "599": 3, "670": 3, "672": 3, "673": 3, "674": 3, "675": 3,
	"676": 3, "677": 3, "678": 3, "679": 3, "680": 3, "681": 3, "682": 3,
	"683": 3, "685": 3, "686": 3, "687": 3, "688": 3, "689": 3, "690": 3,
	"691": 3, "692": 3, "850": 3, "852": 3, "853": 3, "855": 3, "856": 3,
	"880": 3, "886": 3, "960": 3, "961": 3, "962": 3, "963": 3, "964": 3,
	"965": 3, "966": 3, "967": 3, "968": 3, "970": 3, "971": 3, "972": 3,
	"973": 3, "974": 3, "975": 3, "976": 3, "977": 3, "992": 3, "993": 3,
	"994": 3, "995": 3, "996": 3, "998": 3,
}

// Anonymize masks a phone number and returns it together with a display name.
// When username is provided it is cleaned and used (prefixed with [👤]);
// otherwise a random AdjectiveNoun name is generated (prefixed with [🎭]).
func Anonymize(phone, username string) (masked, displayName string) {
	return anonymize(phone, username, rand.Intn)
}

// anonymize takes the random source as a parameter so tests are
// deterministic.
func anonymize(phone, username string, intn func(int) int) (string, string) {
	cleaned := cleanPhone(phone)

	var masked string
	if len(cleaned) <= 5 {
		// Short numbers keep only the last digit.
		if cleaned == "" {
			masked = ""
		} else {
			masked = strings.Repeat("*", len(cleaned)-1) + cleaned[len(cleaned)-1:]
		}
	} else {
		code, remaining := extractCountryCode(cleaned)
		lastFour := remaining
		if len(remaining) >= 4 {
			lastFour = remaining[len(remaining)-4:]
		} else if len(remaining) >= 1 {
			lastFour = remaining[len(remaining)-1:]
		}
		// A fixed four-star fill keeps masked numbers uniform.
		masked = code + "****" + lastFour
	}

	if username != "" {
		return masked, "[👤] " + chronicle.NormalizeLine(username)
	}
	name := adjectives[intn(len(adjectives))] + nouns[intn(len(nouns))]
	return masked, "[🎭] " + name
}

// cleanPhone strips control characters, dash variants and everything that is
// not a digit or a leading plus.
func cleanPhone(phone string) string {
	s := chronicle.NormalizeLine(phone)
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) || r == '+' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// extractCountryCode splits a cleaned number into dialing code and subscriber
// digits. Numbers without a plus are assumed North American when they have
// the standard ten digits.
func extractCountryCode(phone string) (code, remaining string) {
	if !strings.HasPrefix(phone, "+") {
		if len(phone) == 10 {
			return "+1", phone
		}
		return "", phone
	}

	digits := phone[1:]
	// Longest dialing codes first, so "+212..." is Morocco, not +2.
	for _, length := range []int{3, 2, 1} {
		if len(digits) < length {
			continue
		}
		candidate := digits[:length]
		if l, ok := countryCodeLengths[candidate]; ok && l == length {
			return "+" + candidate, digits[length:]
		}
	}

	// Unknown code: assume a single-digit country code.
	if len(digits) > 0 {
		return "+" + digits[:1], digits[1:]
	}
	return "+", ""
}
