package service

import "strings"

func normalizeConfigKey(key string) string {
	return strings.TrimSpace(strings.ToLower(key))
}
