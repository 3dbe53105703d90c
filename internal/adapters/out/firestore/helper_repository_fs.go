// internal/adapters/out/firestore/helper_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var errNilClient = errors.New("firestore client is nil")

// batchLimit stays under Firestore's 500 writes per batch.
const batchLimit = 400

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func isAlreadyExists(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}

func asString(v any) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	default:
		return fmt.Sprint(v)
	}
}

// asInt tolerates numbers stored as float, int or string (documents edited by
// hand in the console end up with all three).
func asInt(v any) int {
	if v == nil {
		return 0
	}
	switch t := v.(type) {
	case int:
		return t
	case int32:
		return int(t)
	case int64:
		return int(t)
	case float32:
		return int(t)
	case float64:
		return int(t)
	case string:
		tt := strings.TrimSpace(t)
		if tt == "" {
			return 0
		}
		var n int
		_, _ = fmt.Sscanf(tt, "%d", &n)
		return n
	default:
		return 0
	}
}

// asBool treats a missing field as def.
func asBool(v any, def bool) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "1":
			return true
		case "false", "no", "0":
			return false
		}
	}
	return def
}

// asTime returns (time, ok)
func asTime(v any) (time.Time, bool) {
	if v == nil {
		return time.Time{}, false
	}
	switch t := v.(type) {
	case time.Time:
		return t, true
	default:
		return time.Time{}, false
	}
}

// deleteAll removes every document the query yields, in batches.
func deleteAll(ctx context.Context, client *firestore.Client, q firestore.Query) (int, error) {
	it := q.Documents(ctx)
	defer it.Stop()

	batch := client.Batch()
	count := 0
	for {
		doc, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return count, err
		}
		batch.Delete(doc.Ref)
		count++
		if count%batchLimit == 0 {
			if _, err := batch.Commit(ctx); err != nil {
				return count, err
			}
			batch = client.Batch()
		}
	}
	if count%batchLimit != 0 {
		if _, err := batch.Commit(ctx); err != nil {
			return count, err
		}
	}
	return count, nil
}
