// Package extract holds the pure text parsers of the chat pipeline: the
// customer-info heuristics and the order-directive grammar. No I/O happens
// here, so everything is testable without network or database access.
package extract

import (
	"regexp"
	"strings"
)

// CustomerInfo is the structured result of parsing free-form customer text.
// Fields default to "" when nothing matches; ambiguous input degrades to
// empty fields rather than failing.
type CustomerInfo struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// The extractors are ordered rule lists evaluated first-match-wins per
// field, each field independent of the others. The lists are package data so
// tests can target individual rules.
var (
	// NameRules match "my name is X", "name: X", or a leading segment that
	// is not a number and not immediately followed by a phone/address
	// keyword.
	NameRules = []*regexp.Regexp{
		regexp.MustCompile(`اسمي\s+([^،,\n]+)`),
		regexp.MustCompile(`الاسم\s*:?\s*([^،,\n]+)`),
		regexp.MustCompile(`^([^،,\n0-9]+?)(?:\s*[،,]|\s*رقم|\s*هاتف|\s*عنوان|$)`),
	}

	// PhoneRules match Iraqi phone formats: labeled local numbers first,
	// then a bare local number (07 plus 8-9 digits), then international.
	PhoneRules = []*regexp.Regexp{
		regexp.MustCompile(`رقمي?\s*:?\s*(07\d{8,9})`),
		regexp.MustCompile(`هاتفي?\s*:?\s*(07\d{8,9})`),
		regexp.MustCompile(`رقم\s*الهاتف\s*:?\s*(07\d{8,9})`),
		regexp.MustCompile(`(07\d{8,9})`),
		regexp.MustCompile(`(\+964\s*7\d{8,9})`),
	}

	// AddressRules match "my address is X", "address: X", "I live in X",
	// "from X", "in X", each capturing up to the next separator.
	AddressRules = []*regexp.Regexp{
		regexp.MustCompile(`عنواني\s+([^،,\n]+)`),
		regexp.MustCompile(`العنوان\s*:?\s*([^،,\n]+)`),
		regexp.MustCompile(`أسكن\s+في\s+([^،,\n]+)`),
		regexp.MustCompile(`من\s+([^،,\n]+)`),
		regexp.MustCompile(`في\s+([^،,\n]+)`),
	}

	// CityRules are the fallback when no address phrasing matched: known
	// Iraqi provinces and cities, capturing from the city name to the next
	// separator.
	CityRules = []*regexp.Regexp{
		regexp.MustCompile(`(بغداد[^،,\n]*)`),
		regexp.MustCompile(`(البصرة[^،,\n]*)`),
		regexp.MustCompile(`(أربيل[^،,\n]*)`),
		regexp.MustCompile(`(موصل[^،,\n]*)`),
		regexp.MustCompile(`(نجف[^،,\n]*)`),
		regexp.MustCompile(`(كربلاء[^،,\n]*)`),
		regexp.MustCompile(`(ديالى[^،,\n]*)`),
		regexp.MustCompile(`(الأنبار[^،,\n]*)`),
		regexp.MustCompile(`(واسط[^،,\n]*)`),
		regexp.MustCompile(`(ذي قار[^،,\n]*)`),
		regexp.MustCompile(`(ميسان[^،,\n]*)`),
		regexp.MustCompile(`(المثنى[^،,\n]*)`),
		regexp.MustCompile(`(القادسية[^،,\n]*)`),
		regexp.MustCompile(`(صلاح الدين[^،,\n]*)`),
		regexp.MustCompile(`(كركوك[^،,\n]*)`),
	}

	separators = regexp.MustCompile(`[،,\n]`)
	localPhone = regexp.MustCompile(`07\d{8,9}`)
	cityNames  = regexp.MustCompile(`بغداد|البصرة|أربيل|موصل|نجف|كربلاء|ديالى|الأنبار|واسط|ذي قار|ميسان|المثنى|القادسية|صلاح الدين|كركوك`)
)

func firstMatch(rules []*regexp.Regexp, text string) string {
	for _, re := range rules {
		if m := re.FindStringSubmatch(text); m != nil && m[1] != "" {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// ParseCustomerInfo pulls a best-effort {name, phone, address} out of
// free-form customer text. It is a heuristic, not a guaranteed-correct
// parser.
func ParseCustomerInfo(text string) CustomerInfo {
	var info CustomerInfo
	if text == "" {
		return info
	}

	parts := separators.Split(text, -1)

	info.Name = firstMatch(NameRules, text)
	if info.Name == "" {
		// Fall back to the first segment that is neither a local phone
		// number nor a known city name.
		for _, part := range parts {
			p := strings.TrimSpace(part)
			if p != "" && !localPhone.MatchString(p) && !cityNames.MatchString(p) {
				info.Name = p
				break
			}
		}
	}

	info.Phone = firstMatch(PhoneRules, text)

	info.Address = firstMatch(AddressRules, text)
	if info.Address == "" {
		info.Address = firstMatch(CityRules, text)
	}
	if info.Address == "" {
		// Last resort: any remaining segment that is not the name, not a
		// phone number, and long enough to plausibly be an address.
		for _, part := range parts {
			p := strings.TrimSpace(part)
			if p != "" && p != info.Name && !localPhone.MatchString(p) && len([]rune(p)) > 3 {
				info.Address = p
				break
			}
		}
	}

	return info
}
