package sync

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"

	"rostersync-backend/lib/sis"
	"rostersync-backend/lib/testutil"
	"rostersync-backend/lib/vault"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func makeRecords(n int) []sis.Record {
	records := make([]sis.Record, n)
	for i := range records {
		records[i] = sis.Record{
			SourcedID: fmt.Sprintf("%d", i+1),
			FirstName: fmt.Sprintf("First%d", i+1),
			LastName:  fmt.Sprintf("Last%d", i+1),
			Email:     fmt.Sprintf("student%d@school.test", i+1),
		}
	}
	return records
}

func TestDiffIdempotence(t *testing.T) {
	records := makeRecords(10)

	changed, index := Diff(records, nil)
	require.Len(t, changed, 10)
	require.Len(t, index, 10)

	changed, second := Diff(records, index)
	require.Len(t, changed, 0)
	require.Equal(t, index, second)
}

func TestDiffDetectsChanges(t *testing.T) {
	records := makeRecords(5)
	_, index := Diff(records, nil)

	records[2].Email = "changed@school.test"
	records = records[:4] // drop the last record entirely

	changed, next := Diff(records, index)
	require.Len(t, changed, 1)
	require.Equal(t, "3", changed[0].SourcedID)
	require.Len(t, next, 4)
	require.NotContains(t, next, "5")
}

var hexDigest = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestHashIndexHoldsNoRecordContent(t *testing.T) {
	records := makeRecords(20)
	_, index := Diff(records, nil)

	for id, hash := range index {
		if !hexDigest.MatchString(hash) {
			t.Fatalf("index entry %q is not a hex digest: %q", id, hash)
		}
		if strings.Contains(hash, "First") || strings.Contains(hash, "@school.test") {
			t.Fatalf("index entry %q leaks record content: %q", id, hash)
		}
	}
}

func TestPushPartialFailure(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/sync/students", r.URL.Path)
		require.Equal(t, "Bearer token123", r.Header.Get("Authorization"))

		var body struct {
			Students []sis.Record `json:"students"`
		}
		err := json.NewDecoder(r.Body).Decode(&body)
		require.NoError(t, err)

		if requests.Add(1) == 2 {
			http.Error(w, "replica is catching up", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer server.Close()

	var progress []int
	outcome := NewPusher().Push(
		context.Background(),
		makeRecords(120),
		Credential{Endpoint: server.URL, Token: "token123"},
		func(sent, total int) {
			require.Equal(t, 120, total)
			progress = append(progress, sent)
		},
	)

	require.Equal(t, 70, outcome.SuccessCount)
	require.Equal(t, 50, outcome.FailedCount)
	require.Len(t, outcome.Errors, 1)
	require.Contains(t, outcome.Errors[0], "replica is catching up")
	require.Equal(t, int32(3), requests.Load())
	require.Equal(t, []int{50, 100, 120}, progress)
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	result, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/sync",
		DbSchema: Schema,
	})
	t.Cleanup(cleanup)
	t.Cleanup(func() { result.DB.Close() })
	return result.DB
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	store := NewStore(openTestDB(t))

	endpoint, err := store.GetEndpoint(ctx)
	require.NoError(t, err)
	require.Equal(t, "", endpoint)

	require.NoError(t, store.SetEndpoint(ctx, "https://capsule.school.test"))
	require.NoError(t, store.SetEndpoint(ctx, "https://capsule2.school.test"))
	endpoint, err = store.GetEndpoint(ctx)
	require.NoError(t, err)
	require.Equal(t, "https://capsule2.school.test", endpoint)

	last, err := store.LastOutcome(ctx)
	require.NoError(t, err)
	require.Nil(t, last)

	require.NoError(t, store.SetLastOutcome(ctx, Outcome{SuccessCount: 70, FailedCount: 50}))
	last, err = store.LastOutcome(ctx)
	require.NoError(t, err)
	require.Equal(t, &Outcome{SuccessCount: 70, FailedCount: 50}, last)
}

func TestStoreLogBound(t *testing.T) {
	ctx := context.Background()
	store := NewStore(openTestDB(t))

	for i := 0; i < 55; i++ {
		require.NoError(t, store.AppendLog(ctx, fmt.Sprintf("run %d", i)))
	}

	entries, err := store.Log(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 50)
	require.Equal(t, "run 54", entries[0].Summary)
	require.Equal(t, "run 5", entries[49].Summary)
}

func TestStoreHashIndexReplace(t *testing.T) {
	ctx := context.Background()
	store := NewStore(openTestDB(t))

	require.NoError(t, store.ReplaceHashIndex(ctx, map[string]string{"1": "aaa", "2": "bbb"}))
	require.NoError(t, store.ReplaceHashIndex(ctx, map[string]string{"2": "ccc", "3": "ddd"}))

	index, err := store.HashIndex(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"2": "ccc", "3": "ddd"}, index)
}

func TestServiceAbortsBeforeNetwork(t *testing.T) {
	ctx := context.Background()

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer server.Close()

	service := NewService(openTestDB(t), Options{})

	// nothing configured yet
	_, err := service.Sync(ctx, makeRecords(3), "passphrase", nil)
	require.ErrorIs(t, err, ErrMissingEndpoint)

	require.NoError(t, service.SetCredential(ctx, server.URL, "token123", "right horse battery"))

	// wrong passphrase
	_, err = service.Sync(ctx, makeRecords(3), "wrong horse battery", nil)
	require.True(t, errors.Is(err, vault.ErrAuthenticationFailed))

	require.Equal(t, int32(0), requests.Load())
}

func TestServiceCheckHealth(t *testing.T) {
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/health", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer token123" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer server.Close()

	service := NewService(openTestDB(t), Options{})
	require.NoError(t, service.SetCredential(ctx, server.URL, "token123", "passphrase"))
	require.NoError(t, service.CheckHealth(ctx, "passphrase"))
	require.Error(t, service.CheckHealth(ctx, "not the passphrase"))
}

func TestServiceSync(t *testing.T) {
	ctx := context.Background()

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer server.Close()

	service := NewService(openTestDB(t), Options{})
	token := testutil.RandomToken(24)
	require.NoError(t, service.SetCredential(ctx, server.URL, token, "passphrase"))

	records := makeRecords(60)
	outcome, err := service.Sync(ctx, records, "passphrase", nil)
	require.NoError(t, err)
	require.Equal(t, Outcome{SuccessCount: 60}, outcome)
	require.Equal(t, int32(2), requests.Load())

	// unchanged records produce no network traffic at all
	outcome, err = service.Sync(ctx, records, "passphrase", nil)
	require.NoError(t, err)
	require.Equal(t, Outcome{}, outcome)
	require.Equal(t, int32(2), requests.Load())

	entries, err := service.Store().Log(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "60 records, 0 changed, 0 sent, 0 failed", entries[0].Summary)
	require.Equal(t, "60 records, 60 changed, 60 sent, 0 failed", entries[1].Summary)
}
