package dashclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	msg := "OK"
	if status >= 300 {
		msg = http.StatusText(status)
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"rt":       status,
		"rtMsg":    msg,
		"response": response,
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"rt": status, "rtMsg": msg})
}

func TestLogin_SuperAdmin(t *testing.T) {
	orgID := int64(3)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "admin", body["userType"])
		require.Equal(t, "root", body["loginId"])

		writeEnvelope(w, http.StatusOK, map[string]any{
			"accessToken":      "access-token",
			"refreshToken":     "refresh-token",
			"isFirstLogin":     "N",
			"adminId":          9,
			"adminName":        "Root",
			"adminIsSuper":     true,
			"organizationId":   orgID,
			"organizationName": "HQ Dental",
		})
	}))
	defer server.Close()

	client := New(server.URL, NewMemoryStore())
	session, err := client.Login(context.Background(), "admin", "root", "secret")

	require.NoError(t, err)
	assert.Equal(t, RoleSuperAdmin, session.Role)
	assert.Equal(t, int64(9), session.PrincipalID)
	assert.Equal(t, "Root", session.Name)
	assert.Equal(t, int64(3), session.OrganizationID)
	assert.False(t, session.FirstLogin)
	assert.Equal(t, "/admin/users", session.LandingRoute())

	stored, err := client.Store().Load()
	require.NoError(t, err)
	assert.Equal(t, session, stored)
}

func TestLogin_FirstLoginAdmin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{
			"accessToken":  "access-token",
			"refreshToken": "refresh-token",
			"isFirstLogin": "Y",
			"adminId":      4,
			"adminName":    "New Admin",
			"adminIsSuper": false,
		})
	}))
	defer server.Close()

	client := New(server.URL, NewMemoryStore())
	session, err := client.Login(context.Background(), "admin", "fresh", "secret")

	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, session.Role)
	assert.True(t, session.FirstLogin)
	assert.Equal(t, "/register/organization", session.LandingRoute())
}

func TestLogin_BadCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	}))
	defer server.Close()

	client := New(server.URL, NewMemoryStore())
	_, err := client.Login(context.Background(), "admin", "root", "wrong")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "invalid credentials", apiErr.Message)

	_, err = client.Store().Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeEnvelope(w, http.StatusOK, []any{})
	}))
	defer server.Close()

	store := NewMemoryStore()
	require.NoError(t, store.Save(Session{AccessToken: "stored-token", Role: RoleAdmin}))

	client := New(server.URL, store)
	_, err := client.Plans(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Bearer stored-token", gotAuth)
}

func TestLogout_ClearsStoreEvenOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusInternalServerError, "boom")
	}))
	defer server.Close()

	store := NewMemoryStore()
	require.NoError(t, store.Save(Session{AccessToken: "token", Role: RoleUser}))

	client := New(server.URL, store)
	err := client.Logout(context.Background())

	assert.Error(t, err)
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRefresh_KeepsOrganizationIdentity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			writeEnvelope(w, http.StatusOK, map[string]any{
				"accessToken":      "access-1",
				"refreshToken":     "refresh-1",
				"isFirstLogin":     "N",
				"adminId":          9,
				"adminName":        "Clinic Admin",
				"adminIsSuper":     false,
				"organizationId":   7,
				"organizationName": "Smile Clinic",
			})
		case "/auth/refresh":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "admin", body["userType"])
			require.Equal(t, "refresh-1", body["refreshToken"])

			// Older backend builds omit the org fields on refresh.
			writeEnvelope(w, http.StatusOK, map[string]any{
				"accessToken":  "access-2",
				"refreshToken": "refresh-2",
				"isFirstLogin": "N",
				"adminId":      9,
				"adminName":    "Clinic Admin",
				"adminIsSuper": false,
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := New(server.URL, NewMemoryStore())
	_, err := client.Login(context.Background(), "admin", "clinic.admin", "secret")
	require.NoError(t, err)

	session, err := client.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "access-2", session.AccessToken)
	assert.Equal(t, "refresh-2", session.RefreshToken)
	assert.Equal(t, int64(7), session.OrganizationID)
	assert.Equal(t, "Smile Clinic", session.OrganizationName)

	stored, err := client.Store().Load()
	require.NoError(t, err)
	assert.Equal(t, int64(7), stored.OrganizationID)
	assert.Equal(t, "Smile Clinic", stored.OrganizationName)
}

func TestRegisterOrganization_UpdatesSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/organizations", r.URL.Path)
		writeEnvelope(w, http.StatusCreated, map[string]any{
			"organizationId":   21,
			"organizationName": "Smile Clinic",
		})
	}))
	defer server.Close()

	store := NewMemoryStore()
	require.NoError(t, store.Save(Session{AccessToken: "token", Role: RoleAdmin, FirstLogin: true}))

	client := New(server.URL, store)
	created, err := client.RegisterOrganization(context.Background(), RegisterOrganizationInput{
		OrganizationName: "Smile Clinic",
		PhoneNumber:      "02-000-0000",
		PlanID:           1,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(21), created.OrganizationID)

	session, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, int64(21), session.OrganizationID)
	assert.Equal(t, "Smile Clinic", session.OrganizationName)
	assert.False(t, session.FirstLogin)
	assert.Equal(t, "/admin/users", session.LandingRoute())
}

func TestChangePlan_Conflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/admin/subscriptions/organization/3/7", r.URL.Path)
		writeError(w, http.StatusConflict, "plan unchanged")
	}))
	defer server.Close()

	client := New(server.URL, NewMemoryStore())
	err := client.ChangePlan(context.Background(), 3, 7)

	assert.True(t, IsStatus(err, http.StatusConflict))
}

func TestUsers_QueryEncoding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "kim", q.Get("keyword"))
		require.Equal(t, "N", q.Get("verify"))
		require.Equal(t, "2", q.Get("page"))
		require.Equal(t, "10", q.Get("size"))
		require.False(t, q.Has("gender"))

		writeEnvelope(w, http.StatusOK, map[string]any{
			"userList": []map[string]any{{
				"userId":              11,
				"userLoginIdentifier": "kim.user",
				"userName":            "Kim",
				"userGender":          "M",
				"isVerify":            "N",
				"serviceNames":        []string{"oral-check"},
			}},
			"paging": map[string]any{"number": 2, "totalPages": 3, "totalElements": 25},
		})
	}))
	defer server.Close()

	client := New(server.URL, NewMemoryStore())
	page, err := client.Users(context.Background(), UserQuery{
		Keyword: "kim",
		Verify:  "N",
		Page:    2,
		Size:    10,
	})

	require.NoError(t, err)
	require.Len(t, page.UserList, 1)
	assert.Equal(t, "kim.user", page.UserList[0].UserLoginIdentifier)
	assert.False(t, page.UserList[0].Verified())
	assert.Equal(t, Paging{Number: 2, TotalPages: 3, TotalElements: 25}, page.Paging)
}

func TestWithHTTPClient_DoesNotMutateCaller(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeEnvelope(w, http.StatusOK, []any{})
	}))
	defer server.Close()

	shared := &http.Client{}
	store := NewMemoryStore()
	require.NoError(t, store.Save(Session{AccessToken: "token", Role: RoleAdmin}))

	client := New(server.URL, store, WithHTTPClient(shared))
	_, err := client.Plans(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Bearer token", gotAuth)

	// The caller's client must not have picked up the bearer transport.
	assert.Nil(t, shared.Transport)

	resp, err := shared.Get(server.URL + "/plain")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, gotAuth)
}

func TestAPIErrorMessage(t *testing.T) {
	err := &APIError{Status: 404, Code: 404, Message: "user not found"}
	assert.Equal(t, fmt.Sprintf("api error %d: user not found", 404), err.Error())
}
