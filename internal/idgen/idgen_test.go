package idgen

import (
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	uidPattern   = regexp.MustCompile(`^UID-\d{8}-\d{6}-USR\d+-CPY\d+-[0-9a-f]{16}$`)
	tokenPattern = regexp.MustCompile(`^DOC-\d{8}-\d{6}-[0-9a-f]{16}$`)
)

func TestNewUIDFormat(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	uid := NewUID(now, 42, 7)
	require.Regexp(t, uidPattern, uid)
	require.Contains(t, uid, "UID-20250314-092653-USR42-CPY7-")
}

func TestNewTokenFormat(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	tok := NewToken(now)
	require.Regexp(t, tokenPattern, tok)
	require.Contains(t, tok, "DOC-20250314-092653-")
}

func TestNewUIDNoDuplicates(t *testing.T) {
	now := time.Now()
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		uid := NewUID(now, 1, 1)
		_, dup := seen[uid]
		require.False(t, dup, "duplicate uid after %d generations: %s", i, uid)
		seen[uid] = struct{}{}
	}
}

func TestConcurrentIssuance(t *testing.T) {
	const workers = 16
	const perWorker = 250
	results := make(chan string, workers*perWorker)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			now := time.Now()
			for j := 0; j < perWorker; j++ {
				results <- NewToken(now)
			}
		}()
	}
	wg.Wait()
	close(results)
	seen := make(map[string]struct{}, workers*perWorker)
	for tok := range results {
		_, dup := seen[tok]
		require.False(t, dup, "duplicate token: %s", tok)
		seen[tok] = struct{}{}
	}
}

func TestShortRef(t *testing.T) {
	require.Equal(t, "deadbeef", ShortRef("UID-20250314-092653-USR42-CPY7-0123456789deadbeef"))
	require.Equal(t, "short", ShortRef("short"))
}
