package utils

import (
	"fmt"
	"time"
)

const (
	// LiveSessionTTL is how long a live editing-session claim survives in
	// redis without a refresh.
	LiveSessionTTL = 2 * time.Minute

	// CacheTTL bounds the read-through list caches.
	CacheTTL = 5 * time.Minute
)

func LiveSessionKey(user string) string {
	return fmt.Sprintf("labcalc:live:%s", user)
}

func StockListKey() string {
	return "labcalc:cache:stocks"
}

func EpsilonMapKey() string {
	return "labcalc:cache:epsilons"
}

func EventChannel(action string) string {
	return fmt.Sprintf("labcalc:events:%s", action)
}
