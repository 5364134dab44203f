package session

import (
	"fmt"
	"strings"
)

func sessionsPrefix(prefix string) string {
	return fmt.Sprintf("%s/sessions/", strings.TrimRight(prefix, "/"))
}

func sessionKey(prefix, id string) string {
	return sessionsPrefix(prefix) + id
}

func lockKey(prefix, key string) string {
	return fmt.Sprintf("%s/locks/%s", strings.TrimRight(prefix, "/"), strings.TrimLeft(key, "/"))
}

// idFromKey recovers the session id from a full etcd key.
func idFromKey(prefix, key string) string {
	return strings.TrimPrefix(key, sessionsPrefix(prefix))
}
