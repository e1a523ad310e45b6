package fflogs

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reReportURL  = regexp.MustCompile(`^(?:https?://)?(?:[a-zA-Z0-9-]+\.)?fflogs\.com/reports/([a-zA-Z0-9]+)/?(?:[?#]fight=(\d+))?$`)
	reReportCode = regexp.MustCompile(`^[a-zA-Z0-9]{16,}$`)
)

// ParseReportURL accepts a report link (optionally with ?fight=N) or a bare report code.
// Anything after the first '&' is ignored. fightID is 0 when the link names no fight.
func ParseReportURL(s string) (code string, fightID int, ok bool) {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '&'); idx >= 0 {
		s = s[:idx]
	}

	if m := reReportURL.FindStringSubmatch(s); m != nil {
		if m[2] != "" {
			fightID, _ = strconv.Atoi(m[2])
		}
		return m[1], fightID, true
	}

	if reReportCode.MatchString(s) {
		return s, 0, true
	}

	return "", 0, false
}
