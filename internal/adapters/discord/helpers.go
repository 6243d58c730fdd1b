package discord

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var reMention = regexp.MustCompile(`^<@!?(\d+)>$`)

func mention(userID string) string { return "<@" + userID + ">" }

// parseCommand separa prefijo, nombre y args. También acepta la mención al bot como prefijo.
func parseCommand(content, prefix, botID string) (name string, args []string, ok bool) {
	content = strings.TrimSpace(content)
	switch {
	case prefix != "" && strings.HasPrefix(content, prefix):
		content = content[len(prefix):]
	case botID != "":
		fields := strings.Fields(content)
		if len(fields) == 0 {
			return "", nil, false
		}
		m := reMention.FindStringSubmatch(fields[0])
		if len(m) != 2 || m[1] != botID {
			return "", nil, false
		}
		content = strings.TrimSpace(content[len(fields[0]):])
	default:
		return "", nil, false
	}
	fields := strings.Fields(content)
	if len(fields) == 0 {
		return "", nil, false
	}
	return strings.ToLower(fields[0]), fields[1:], true
}

// parseMinutes: "10" → 10m. Acepta también duraciones Go ("1h30m").
func parseMinutes(arg string) (time.Duration, bool) {
	if n, err := strconv.Atoi(arg); err == nil {
		if n <= 0 {
			return 0, false
		}
		return time.Duration(n) * time.Minute, true
	}
	d, err := time.ParseDuration(arg)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}
