package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinaccel/reponav/pkg/models"
	"github.com/clinaccel/reponav/pkg/notify"
)

// refreshingTokens returns a distinct token on every call, counting calls.
type refreshingTokens struct {
	calls atomic.Int32
}

func (p *refreshingTokens) AccessToken(context.Context) (string, error) {
	return fmt.Sprintf("token-%d", p.calls.Add(1)), nil
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func typeCatalog() models.Collection[models.ObjectType] {
	items := []models.ObjectType{
		{ID: "folder", Name: "Folder"},
		{ID: "sasProgram", Name: "SAS Program"},
		{ID: "reference", Name: "Reference"},
	}
	return models.Collection[models.ObjectType]{Count: len(items), Items: items}
}

func serveTypes(mux *http.ServeMux, t *testing.T) {
	mux.HandleFunc(typesPath, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, typeCatalog())
	})
}

func connectedClient(t *testing.T, server *httptest.Server, notifier notify.Notifier) *Client {
	t.Helper()
	if notifier == nil {
		notifier = notify.Nop()
	}
	client, err := New(Config{
		BaseURL:  server.URL,
		Tokens:   StaticToken("secret"),
		Notifier: notifier,
	})
	require.NoError(t, err)
	require.NoError(t, client.Connect(context.Background()))
	return client
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Config{Tokens: StaticToken("x")})
	assert.ErrorIs(t, err, ErrEmptyBaseURL)
}

func TestChildrenEmptyWhileUnauthorized(t *testing.T) {
	client, err := New(Config{BaseURL: "https://example.invalid", Tokens: StaticToken("x")})
	require.NoError(t, err)

	items, err := client.Children(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestChildrenPaginatesToReportedCount(t *testing.T) {
	const total = 250
	var fetches atomic.Int32

	mux := http.NewServeMux()
	serveTypes(mux, t)
	mux.HandleFunc(itemsPath+"/1/children", func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		start, _ := strconv.Atoi(r.URL.Query().Get("start"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		page := models.Collection[models.Item]{Count: total, Start: start, Limit: limit}
		for i := start; i < total && i < start+limit; i++ {
			page.Items = append(page.Items, models.Item{
				ID:          fmt.Sprintf("item-%d", i),
				Name:        fmt.Sprintf("file-%d.sas", i),
				PrimaryType: models.ItemTypeFile,
				TypeID:      "sasProgram",
			})
		}
		writeJSON(t, w, page)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := connectedClient(t, server, nil)
	items, err := client.Children(context.Background(), nil)
	require.NoError(t, err)

	assert.Len(t, items, total)
	assert.EqualValues(t, 3, fetches.Load())
	assert.Equal(t, "item-0", items[0].ID)
	assert.Equal(t, "item-249", items[total-1].ID)
}

func TestChildrenFailsOnEmptyTypeCatalog(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(typesPath, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, models.Collection[models.ObjectType]{})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := connectedClient(t, server, nil)
	_, err := client.Children(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestObjectTypeNameFromCatalog(t *testing.T) {
	mux := http.NewServeMux()
	serveTypes(mux, t)
	mux.HandleFunc(itemsPath+"/1/children", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, models.Collection[models.Item]{Count: 0, Items: []models.Item{}})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := connectedClient(t, server, nil)
	_, err := client.Children(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, "SAS Program", client.ObjectTypeName("sasProgram"))
	assert.Equal(t, "", client.ObjectTypeName("unknown"))
}

func TestAuthRefreshRetriesOnceOn401(t *testing.T) {
	var requests atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc(itemsPath+"/42", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.Header.Get("Authorization") != "Bearer token-2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(t, w, models.Item{ID: "42", Name: "report.sas", PrimaryType: models.ItemTypeFile})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	tokens := &refreshingTokens{}
	client, err := New(Config{BaseURL: server.URL, Tokens: tokens})
	require.NoError(t, err)
	require.NoError(t, client.Connect(context.Background()))

	item, err := client.ResourceByID(context.Background(), "42")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "report.sas", item.Name)

	// The first request with the connect-time token got 401, one refresh and
	// one retry followed.
	assert.EqualValues(t, 2, requests.Load())
	assert.EqualValues(t, 2, tokens.calls.Load())
}

func TestAuthRefreshDoesNotLoopOnRepeated401(t *testing.T) {
	var requests atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc(itemsPath+"/42", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := connectedClient(t, server, nil)
	_, err := client.ResourceByID(context.Background(), "42")
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.EqualValues(t, 2, requests.Load())
}

func TestResourceByIDRecoversAccessErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(itemsPath+"/gone", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		writeJSON(t, w, map[string]string{"message": "Item not found."})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	var notified []string
	notifier := notify.Func(func(level notify.Level, message string) {
		assert.Equal(t, notify.LevelError, level)
		notified = append(notified, message)
	})

	client := connectedClient(t, server, notifier)
	item, err := client.ResourceByID(context.Background(), "gone")
	require.NoError(t, err)
	assert.Nil(t, item)
	assert.Equal(t, []string{notify.MsgAccessError}, notified)
}

func TestResourceByURIPropagatesAccessErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(itemsPath+"/gone", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := connectedClient(t, server, nil)
	u := &url.URL{Scheme: "sasHca", Path: "/report.sas", RawQuery: "id=gone"}
	_, err := client.ResourceByURI(context.Background(), u)
	assert.True(t, IsAccessDenied(err))
}

func TestRenameSendsCachedConcurrencyToken(t *testing.T) {
	mux := http.NewServeMux()
	var ifMatch, ifUnmodified string
	mux.HandleFunc(itemsPath+"/7", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Etag", `"v5"`)
			w.Header().Set("Last-Modified", "Tue, 03 Mar 2026 10:00:00 GMT")
			writeJSON(t, w, models.Item{ID: "7", Name: "old.sas", PrimaryType: models.ItemTypeFile})
		case http.MethodPatch:
			ifMatch = r.Header.Get("If-Match")
			ifUnmodified = r.Header.Get("If-Unmodified-Since")
			writeJSON(t, w, models.Item{ID: "7", Name: "new.sas", PrimaryType: models.ItemTypeFile})
		}
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := connectedClient(t, server, nil)
	item, err := client.ResourceByID(context.Background(), "7")
	require.NoError(t, err)

	renamed, err := client.Rename(context.Background(), item, "new.sas")
	require.NoError(t, err)
	assert.Equal(t, "new.sas", renamed.Name)
	assert.Equal(t, `"v5"`, ifMatch)
	assert.Equal(t, "Tue, 03 Mar 2026 10:00:00 GMT", ifUnmodified)
}

func TestRenameFallsBackToTimestampToken(t *testing.T) {
	mux := http.NewServeMux()
	var ifMatch, ifUnmodified string
	mux.HandleFunc(itemsPath+"/7", func(w http.ResponseWriter, r *http.Request) {
		ifMatch = r.Header.Get("If-Match")
		ifUnmodified = r.Header.Get("If-Unmodified-Since")
		writeJSON(t, w, models.Item{ID: "7", Name: "new.sas", PrimaryType: models.ItemTypeFile})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := connectedClient(t, server, nil)
	item := &models.Item{ID: "7", Name: "old.sas", PrimaryType: models.ItemTypeFile}
	_, err := client.Rename(context.Background(), item, "new.sas")
	require.NoError(t, err)

	// Never fetched, so no token was cached: empty etag plus a current
	// RFC 1123 timestamp.
	assert.Empty(t, ifMatch)
	stamp, err := time.Parse(http.TimeFormat, ifUnmodified)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), stamp, time.Minute)
}

func TestContentByURIRejectsBinaryPayload(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(itemsPath+"/9/content", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte{0xff, 0xfe, 0x00, 0x01})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := connectedClient(t, server, nil)
	u := &url.URL{Scheme: "sasHca", Path: "/blob.bin", RawQuery: "id=9"}
	_, err := client.ContentByURI(context.Background(), u)
	assert.ErrorIs(t, err, ErrContentType)
}

func TestContentByURIUpdatesConcurrencyToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(itemsPath+"/9/content", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Etag", `"c1"`)
		w.Write([]byte("data work; run;"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := connectedClient(t, server, nil)
	u := &url.URL{Scheme: "sasHca", Path: "/prog.sas", RawQuery: "id=9"}
	content, err := client.ContentByURI(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, "data work; run;", content)
	assert.Equal(t, `"c1"`, client.Token("9").ETag)
}

func TestDeleteEvictsConcurrencyToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(itemsPath+"/9", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Etag", `"v1"`)
			writeJSON(t, w, models.Item{ID: "9", Name: "prog.sas", PrimaryType: models.ItemTypeFile})
		case http.MethodDelete:
			assert.Equal(t, "false", r.URL.Query().Get("permanent"))
			w.WriteHeader(http.StatusNoContent)
		}
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := connectedClient(t, server, nil)
	item, err := client.ResourceByID(context.Background(), "9")
	require.NoError(t, err)
	require.Equal(t, `"v1"`, client.Token("9").ETag)

	require.NoError(t, client.Delete(context.Background(), item))
	assert.Empty(t, client.Token("9").ETag)
}

func TestPerformBatchActionExtractsToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(itemsBatchPath, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, string(models.ActionEnableVersioning), r.URL.Query().Get("action"))
		assert.NotEmpty(t, r.URL.Query().Get("clientId"))

		var body models.ActionBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "initial versions", body.Comment)

		w.Header().Set("Location", actionStatusPath+"/abc-123")
		w.WriteHeader(http.StatusAccepted)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := connectedClient(t, server, nil)
	token, err := client.PerformBatchAction(context.Background(), models.ActionEnableVersioning, &models.ActionBody{
		Comment:            "initial versions",
		FileSpecifications: []models.FileSpecification{{Path: "/study/prog.sas", FileVersion: "1.0"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "abc-123", token)
}

func TestPerformBatchActionRecoversAccessErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(itemsBatchPath, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	var notified []string
	notifier := notify.Func(func(level notify.Level, message string) {
		notified = append(notified, message)
	})

	client := connectedClient(t, server, notifier)
	token, err := client.PerformBatchAction(context.Background(), models.ActionDisableVersioning, nil)
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Equal(t, []string{notify.MsgAccessError}, notified)
}

func TestActionStatusSelectsMediaType(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(actionStatusPath+"/abc-123", func(w http.ResponseWriter, r *http.Request) {
		summaryOnly := r.Header.Get("Accept") == models.ActionSummaryMediaType
		status := models.ActionStatus{
			Summary: models.ActionStatusSummary{
				ID:               "abc-123",
				ProgressStatus:   models.ProgressCompleted,
				CompletionStatus: models.CompletionInfo,
				EndTimeStamp:     "2026-03-04T10:00:00Z",
			},
		}
		if !summaryOnly {
			status.Details = []models.ActionStatusDetail{{ID: "d1", CompletionStatus: models.CompletionInfo}}
		}
		writeJSON(t, w, status)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := connectedClient(t, server, nil)

	full, err := client.ActionStatus(context.Background(), "abc-123", false)
	require.NoError(t, err)
	assert.True(t, full.Done())
	assert.Len(t, full.Details, 1)

	summary, err := client.ActionStatus(context.Background(), "abc-123", true)
	require.NoError(t, err)
	assert.Empty(t, summary.Details)
}

func TestPermissionDefaults(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(authzPath+"/f1/permissions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []string{models.PermissionRead, models.PermissionWrite})
	})
	mux.HandleFunc(authzPath+"/c1/permissions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []string{models.PermissionRead})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := connectedClient(t, server, nil)

	file := &models.Item{ID: "f1", Name: "prog.sas", PrimaryType: models.ItemTypeFile}
	perm := client.Permission(context.Background(), file)
	assert.True(t, perm.Read)
	assert.True(t, perm.Write)
	assert.True(t, perm.Delete)
	assert.False(t, perm.Create)

	contextItem := &models.Item{ID: "c1", Name: "study", PrimaryType: models.ItemTypeContext}
	perm = client.Permission(context.Background(), contextItem)
	assert.True(t, perm.Read)
	assert.False(t, perm.Write)
	assert.False(t, perm.Delete)
	assert.True(t, perm.Create)
}

func TestPermissionLookupFailureLeavesWriteFalse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(authzPath+"/f1/permissions", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	var notified []string
	notifier := notify.Func(func(level notify.Level, message string) {
		notified = append(notified, message)
	})

	client := connectedClient(t, server, notifier)
	file := &models.Item{ID: "f1", Name: "prog.sas", PrimaryType: models.ItemTypeFile}
	perm := client.Permission(context.Background(), file)

	assert.True(t, perm.Read)
	assert.False(t, perm.Write)
	assert.Equal(t, []string{notify.MsgAccessPermissionsError}, notified)
}

func TestVersionHistoryRecoversAccessErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(itemsPath+"/f1/versions", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	var notified []string
	notifier := notify.Func(func(level notify.Level, message string) {
		notified = append(notified, message)
	})

	client := connectedClient(t, server, notifier)
	file := &models.Item{ID: "f1", Name: "prog.sas", PrimaryType: models.ItemTypeFile, Versioned: true}
	history, err := client.VersionHistory(context.Background(), file)
	require.NoError(t, err)
	assert.Nil(t, history)
	assert.Equal(t, []string{notify.MsgAccessError}, notified)
}

func TestTransientGatewayStatusRetried(t *testing.T) {
	var requests atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc(itemsPath+"/77", func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(t, w, models.Item{ID: "77", Name: "report.sas", PrimaryType: models.ItemTypeFile})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := connectedClient(t, server, nil)
	item, err := client.ResourceByID(context.Background(), "77")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "report.sas", item.Name)
	assert.EqualValues(t, 3, requests.Load())
}

func TestTransientRetriesAreBounded(t *testing.T) {
	var requests atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc(itemsPath+"/77", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := connectedClient(t, server, nil)
	_, err := client.ResourceByID(context.Background(), "77")
	require.Error(t, err)
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.EqualValues(t, 3, requests.Load())
}
