package usecase

import (
	"errors"
	"strings"
	"time"

	authdom "talentagency/internal/domain/auth"
)

var (
	ErrUnauthenticated = errors.New("usecase: authentication required")
	ErrForbidden       = errors.New("usecase: forbidden")
)

// Clock provides current time (for testability).
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a plain function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

func clockOrSystem(c Clock) Clock {
	if c == nil {
		return systemClock{}
	}
	return c
}

// requireUser returns the caller's uid or ErrUnauthenticated.
func requireUser(id authdom.Identity) (string, error) {
	uid := strings.TrimSpace(id.UID)
	if uid == "" {
		return "", ErrUnauthenticated
	}
	return uid, nil
}

// requireAdmin checks the verified admin claim. 認可は usecase 側で必ず確認する。
func requireAdmin(id authdom.Identity) error {
	if _, err := requireUser(id); err != nil {
		return err
	}
	if !id.IsAdmin {
		return ErrForbidden
	}
	return nil
}

// 共通ヘルパー: 重複排除 + 空白除去
func dedupStrings(xs []string) []string {
	seen := make(map[string]struct{}, len(xs))
	out := make([]string, 0, len(xs))
	for _, v := range xs {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// maskUID keeps uids out of logs in full.
func maskUID(uid string) string {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return ""
	}
	if len(uid) <= 6 {
		return "***"
	}
	return "***" + uid[len(uid)-6:]
}
