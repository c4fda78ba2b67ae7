package eventbus

import (
	"strings"
	"time"
)

// ParseRetryDelayFromTopicName extracts the retry delay from a topic name.
// Format: "<base>.retry.<duration>", e.g. "clauseguard.analysis.events.retry.1m0s".
func ParseRetryDelayFromTopicName(name string) (time.Duration, bool) {
	idx := strings.LastIndex(name, ".retry.")
	if idx == -1 || idx+7 >= len(name) {
		return 0, false
	}
	durStr := name[idx+7:]
	d, err := time.ParseDuration(durStr)
	if err != nil {
		return 0, false
	}
	return d, true
}
