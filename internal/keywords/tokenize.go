package keywords

import (
	"strings"
	"unicode"
)

// stopwords are common English terms that carry no topical signal.
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"from": {}, "up": {}, "about": {}, "into": {}, "through": {}, "during": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "being": {},
	"have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {}, "will": {},
	"would": {}, "could": {}, "should": {}, "may": {}, "might": {}, "shall": {},
	"can": {}, "this": {}, "that": {}, "these": {}, "those": {}, "it": {},
	"its": {}, "he": {}, "she": {}, "they": {}, "them": {}, "his": {}, "her": {},
	"their": {}, "we": {}, "you": {}, "your": {}, "our": {}, "my": {}, "me": {},
	"i": {}, "as": {}, "if": {}, "then": {}, "than": {}, "so": {}, "not": {},
	"no": {}, "nor": {}, "all": {}, "any": {}, "both": {}, "each": {}, "few": {},
	"more": {}, "most": {}, "other": {}, "some": {}, "such": {}, "only": {},
	"own": {}, "same": {}, "too": {}, "very": {}, "just": {}, "also": {},
	"there": {}, "here": {}, "when": {}, "where": {}, "why": {}, "how": {},
	"what": {}, "which": {}, "who": {}, "whom": {}, "new": {}, "get": {},
	"one": {}, "two": {}, "like": {}, "make": {}, "made": {}, "use": {},
	"used": {}, "using": {},
}

// noiseTokens are web and filesystem artifacts that show up constantly in
// browsing history and file paths without describing content.
var noiseTokens = map[string]struct{}{
	"http": {}, "https": {}, "www": {}, "com": {}, "org": {}, "net": {},
	"html": {}, "htm": {}, "php": {}, "aspx": {}, "jsp": {}, "index": {},
	"page": {}, "home": {}, "login": {}, "signin": {}, "signup": {},
	"search": {}, "query": {}, "utm": {}, "ref": {}, "src": {}, "amp": {},
	"pdf": {}, "doc": {}, "docx": {}, "xls": {}, "xlsx": {}, "ppt": {},
	"pptx": {}, "txt": {}, "png": {}, "jpg": {}, "jpeg": {}, "gif": {},
	"file": {}, "files": {}, "folder": {}, "desktop": {}, "download": {},
	"downloads": {}, "document": {}, "documents": {}, "untitled": {},
	"screenshot": {}, "users": {}, "user": {}, "appdata": {}, "local": {},
	"temp": {}, "tmp": {}, "cache": {}, "null": {}, "undefined": {},
	"true": {}, "false": {},
}

// hangulParticles are common Korean grammatical particles stripped from the
// tail of Hangul tokens. Ordered longest-first so compound particles win.
var hangulParticles = []string{
	"에서는", "에서도", "으로는", "으로도",
	"에서", "에게", "한테", "까지", "부터", "처럼", "으로", "이나", "이란",
	"은", "는", "이", "가", "을", "를", "에", "의", "도", "만", "와", "과", "로",
}

// Tokenize splits text into normalized, keyword-like tokens.
//
// Tokens are lowercased, split on anything that is not a letter, digit, or
// CJK character, and filtered against stopwords and noise lists. Tokens
// shorter than two characters, purely numeric tokens, email-shaped tokens,
// and opaque random-looking identifiers are discarded. Hangul tokens have
// trailing grammatical particles stripped.
func Tokenize(text string) []string {
	// Emails are dropped before punctuation splitting would break them
	// into plausible-looking words.
	fields := strings.Fields(text)
	kept := make([]string, 0, len(fields))
	for _, f := range fields {
		if looksLikeEmail(f) {
			continue
		}
		kept = append(kept, f)
	}
	text = strings.ToLower(strings.Join(kept, " "))

	raw := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		tok = stripParticles(tok)
		if !keepToken(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// keepToken applies the discard rules from the cleaning pipeline.
func keepToken(tok string) bool {
	if len([]rune(tok)) < 2 {
		return false
	}
	if isPureDigits(tok) {
		return false
	}
	if _, ok := stopwords[tok]; ok {
		return false
	}
	if _, ok := noiseTokens[tok]; ok {
		return false
	}
	if looksRandom(tok) {
		return false
	}
	return true
}

func isPureDigits(tok string) bool {
	for _, r := range tok {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func looksLikeEmail(tok string) bool {
	at := strings.Index(tok, "@")
	if at <= 0 || at == len(tok)-1 {
		return false
	}
	return strings.Contains(tok[at+1:], ".")
}

// looksRandom flags opaque identifiers: hashes, session ids, cache keys.
// Heuristic: a long token mixing letters and digits, or a long latin token
// with no vowels, is almost never a human keyword.
func looksRandom(tok string) bool {
	var letters, digits, vowels, latin int
	for _, r := range tok {
		switch {
		case unicode.IsDigit(r):
			digits++
		case unicode.IsLetter(r):
			letters++
			if r < 128 {
				latin++
				switch r {
				case 'a', 'e', 'i', 'o', 'u', 'y':
					vowels++
				}
			}
		}
	}
	n := len([]rune(tok))
	if letters > 0 && digits > 0 && n >= 6 {
		return true
	}
	if latin == letters && letters >= 8 && vowels == 0 {
		return true
	}
	return false
}

// stripParticles removes a trailing Korean grammatical particle from Hangul
// tokens, keeping the stem when enough of it remains.
func stripParticles(tok string) string {
	if !hasHangul(tok) {
		return tok
	}
	for _, p := range hangulParticles {
		if strings.HasSuffix(tok, p) {
			stem := strings.TrimSuffix(tok, p)
			if len([]rune(stem)) >= 2 {
				return stem
			}
		}
	}
	return tok
}

func hasHangul(tok string) bool {
	for _, r := range tok {
		if unicode.Is(unicode.Hangul, r) {
			return true
		}
	}
	return false
}
