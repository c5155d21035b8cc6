package roledetect

import (
	"regexp"
	"strings"
)

var (
	numericSequenceRe = regexp.MustCompile(`\d{3,}`)
	testAccountRe     = regexp.MustCompile(`(^|[._-])(test|demo|sample|fake|dummy)([._-]|\d|$)`)
)

// personalDomains are consumer mail providers; a corporate role claimed from
// one of these deserves a closer look.
var personalDomains = map[string]struct{}{
	"gmail.com":      {},
	"googlemail.com": {},
	"yahoo.com":      {},
	"hotmail.com":    {},
	"outlook.com":    {},
	"icloud.com":     {},
	"aol.com":        {},
	"proton.me":      {},
	"protonmail.com": {},
}

const shortUsernameLimit = 3

// analyzeSecurity runs the informational side analysis. Flags never affect
// the suggested role or its confidence.
func analyzeSecurity(local, domain string) []string {
	var flags []string

	if numericSequenceRe.MatchString(local) {
		flags = append(flags, FlagNumericSequence)
	}
	if testAccountRe.MatchString(local) {
		flags = append(flags, FlagTestAccountPattern)
	}
	if local != "" && len(local) < shortUsernameLimit {
		flags = append(flags, FlagShortUsername)
	}
	if _, ok := personalDomains[strings.TrimSpace(domain)]; ok {
		flags = append(flags, FlagPersonalEmailDomain)
	}

	return flags
}
