package dashclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(handler))
	t.Cleanup(server.Close)
	return New(server.URL, NewMemoryStore())
}

func listPage(rows []map[string]any, number, totalPages int, total int64) map[string]any {
	if rows == nil {
		rows = []map[string]any{}
	}
	return map[string]any{
		"userList": rows,
		"paging":   map[string]any{"number": number, "totalPages": totalPages, "totalElements": total},
	}
}

func row(id int64, verified bool) map[string]any {
	isVerify := "N"
	if verified {
		isVerify = "Y"
	}
	return map[string]any{
		"userId":              id,
		"userLoginIdentifier": "user-" + strconv.FormatInt(id, 10),
		"userName":            "User",
		"userGender":          "M",
		"isVerify":            isVerify,
	}
}

func TestUserListController_SetPageSizeResetsPage(t *testing.T) {
	var lastPage, lastSize string
	client := listServer(t, func(w http.ResponseWriter, r *http.Request) {
		lastPage = r.URL.Query().Get("page")
		lastSize = r.URL.Query().Get("size")
		writeEnvelope(w, http.StatusOK, listPage([]map[string]any{row(1, true)}, 1, 5, 250))
	})

	ctl := NewUserListController(client)
	require.NoError(t, ctl.Refresh(context.Background()))
	require.NoError(t, ctl.Next(context.Background()))
	assert.Equal(t, "2", lastPage)

	require.NoError(t, ctl.SetPageSize(context.Background(), 100))
	assert.Equal(t, "1", lastPage)
	assert.Equal(t, "100", lastSize)

	assert.Error(t, ctl.SetPageSize(context.Background(), 7))
}

func TestUserListController_BoundaryDisables(t *testing.T) {
	number := 1
	client := listServer(t, func(w http.ResponseWriter, r *http.Request) {
		if p := r.URL.Query().Get("page"); p != "" {
			number, _ = strconv.Atoi(p)
		}
		writeEnvelope(w, http.StatusOK, listPage([]map[string]any{row(1, false)}, number, 3, 150))
	})

	ctl := NewUserListController(client)
	require.NoError(t, ctl.Refresh(context.Background()))

	assert.False(t, ctl.CanPrev())
	assert.True(t, ctl.CanNext())

	require.NoError(t, ctl.Next(context.Background()))
	require.NoError(t, ctl.Next(context.Background()))

	assert.Equal(t, 3, ctl.Paging().Number)
	assert.True(t, ctl.CanPrev())
	assert.False(t, ctl.CanNext())

	// Next at the last page is a no-op, not a request.
	require.NoError(t, ctl.Next(context.Background()))
	assert.Equal(t, 3, ctl.Paging().Number)
}

func TestUserListController_EmptyResult(t *testing.T) {
	client := listServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, listPage(nil, 1, 1, 0))
	})

	ctl := NewUserListController(client)
	require.NoError(t, ctl.Refresh(context.Background()))

	assert.Empty(t, ctl.Rows())
	assert.NotNil(t, ctl.Rows())
	assert.False(t, ctl.CanPrev())
	assert.False(t, ctl.CanNext())
}

func TestUserListController_FetchErrorClearsRows(t *testing.T) {
	fail := false
	client := listServer(t, func(w http.ResponseWriter, r *http.Request) {
		if fail {
			writeError(w, http.StatusInternalServerError, "search failed")
			return
		}
		writeEnvelope(w, http.StatusOK, listPage([]map[string]any{row(1, false)}, 1, 1, 1))
	})

	ctl := NewUserListController(client)
	require.NoError(t, ctl.Refresh(context.Background()))
	require.Len(t, ctl.Rows(), 1)

	fail = true
	err := ctl.Refresh(context.Background())

	assert.Error(t, err)
	assert.Empty(t, ctl.Rows())
	assert.Error(t, ctl.Err())

	fail = false
	require.NoError(t, ctl.Refresh(context.Background()))
	assert.NoError(t, ctl.Err())
}

func TestUserListController_SearchResetsToFirstPage(t *testing.T) {
	var lastPage, lastKeyword string
	client := listServer(t, func(w http.ResponseWriter, r *http.Request) {
		lastPage = r.URL.Query().Get("page")
		lastKeyword = r.URL.Query().Get("keyword")
		writeEnvelope(w, http.StatusOK, listPage([]map[string]any{row(1, false)}, 1, 4, 200))
	})

	ctl := NewUserListController(client)
	require.NoError(t, ctl.Refresh(context.Background()))
	require.NoError(t, ctl.Next(context.Background()))

	require.NoError(t, ctl.Search(context.Background(), UserQuery{Keyword: "kim"}))
	assert.Equal(t, "1", lastPage)
	assert.Equal(t, "kim", lastKeyword)

	require.NoError(t, ctl.Reset(context.Background()))
	assert.Equal(t, "", lastKeyword)
	assert.Equal(t, UserQuery{Page: 1, Size: PageSizes[1]}, ctl.Query())
}

func TestUserListController_LastIntentWins(t *testing.T) {
	var requests atomic.Int64
	firstStarted := make(chan struct{})
	release := make(chan struct{})

	client := listServer(t, func(w http.ResponseWriter, r *http.Request) {
		n := requests.Add(1)
		if n == 1 {
			close(firstStarted)
			<-release
			writeEnvelope(w, http.StatusOK, listPage([]map[string]any{row(1, false)}, 1, 1, 1))
			return
		}
		writeEnvelope(w, http.StatusOK, listPage([]map[string]any{row(2, false)}, 1, 1, 1))
	})

	ctl := NewUserListController(client)

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- ctl.Refresh(context.Background())
	}()

	<-firstStarted
	require.NoError(t, ctl.Search(context.Background(), UserQuery{Keyword: "second"}))
	close(release)

	// The superseded fetch must not report an error or clobber the newer
	// result.
	assert.NoError(t, <-firstDone)
	rows := ctl.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2), rows[0].UserID)
}

type contextCapturingTransport struct {
	last context.Context
}

func (t *contextCapturingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.last = req.Context()
	return http.DefaultTransport.RoundTrip(req)
}

func TestUserListController_FetchReleasesContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, listPage([]map[string]any{row(1, false)}, 1, 1, 1))
	}))
	t.Cleanup(server.Close)

	transport := &contextCapturingTransport{}
	client := New(server.URL, NewMemoryStore(), WithHTTPClient(&http.Client{Transport: transport}))

	ctl := NewUserListController(client)
	require.NoError(t, ctl.Refresh(context.Background()))

	// The per-fetch context must be canceled once the fetch completes, not
	// held until the parent context ends.
	require.NotNil(t, transport.last)
	assert.ErrorIs(t, transport.last.Err(), context.Canceled)
}

func TestUserListController_Verify(t *testing.T) {
	var verifyCalls atomic.Int64
	verified := false
	client := listServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/admin/user/verify" {
			verifyCalls.Add(1)
			require.Equal(t, "5", r.URL.Query().Get("userId"))
			verified = true
			writeEnvelope(w, http.StatusOK, nil)
			return
		}
		writeEnvelope(w, http.StatusOK, listPage([]map[string]any{row(5, verified)}, 1, 1, 1))
	})

	ctl := NewUserListController(client)
	require.NoError(t, ctl.Refresh(context.Background()))

	unverified := ctl.Rows()[0]
	assert.True(t, ctl.CanVerify(unverified))

	require.NoError(t, ctl.Verify(context.Background(), 5))
	assert.Equal(t, int64(1), verifyCalls.Load())

	// The refetched row is verified now, so the action is disabled.
	refreshed := ctl.Rows()[0]
	assert.True(t, refreshed.Verified())
	assert.False(t, ctl.CanVerify(refreshed))
}
