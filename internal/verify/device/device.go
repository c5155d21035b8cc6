// Package device derives advisory signals from the client's user agent.
// Hints feed the outcome's security flags and never alter the pass/fail
// decision.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// Advisory flags derived from the client device.
const (
	FlagBotUserAgent     = "bot_user_agent"
	FlagMobileDevice     = "mobile_device"
	FlagUnknownUserAgent = "unknown_user_agent"
)

// Hints describes what could be inferred from one user agent string.
type Hints struct {
	Browser  string
	OS       string
	Mobile   bool
	Bot      bool
	Unknown  bool
	RawValue string
}

// Inspect parses a user agent string. An empty or unparseable value yields
// the unknown hint rather than an error.
func Inspect(rawUA string) Hints {
	rawUA = strings.TrimSpace(rawUA)
	if rawUA == "" {
		return Hints{Unknown: true}
	}

	ua := useragent.New(rawUA)
	browser, _ := ua.Browser()

	h := Hints{
		Browser:  browser,
		OS:       ua.OS(),
		Mobile:   ua.Mobile(),
		Bot:      ua.Bot(),
		RawValue: rawUA,
	}
	if h.Browser == "" && h.OS == "" && !h.Bot {
		h.Unknown = true
	}
	return h
}

// Flags renders the hints as advisory security flags.
func (h Hints) Flags() []string {
	var flags []string
	if h.Bot {
		flags = append(flags, FlagBotUserAgent)
	}
	if h.Mobile {
		flags = append(flags, FlagMobileDevice)
	}
	if h.Unknown {
		flags = append(flags, FlagUnknownUserAgent)
	}
	return flags
}
