package entra

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/halcyonops/spoadmin/internal/connectors/microsoft"
	"github.com/halcyonops/spoadmin/internal/core/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return New(Config{
		BaseURL:    server.URL,
		Tokens:     oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "graph-token"}),
		HTTPClient: server.Client(),
	})
}

func TestGroupMembers(t *testing.T) {
	var gotPath, gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"value": []map[string]any{
				{
					"id":                "00000000-0000-4000-8000-000000000001",
					"displayName":       "Mark Member",
					"mail":              "mark@contoso.com",
					"userPrincipalName": "mark@contoso.com",
				},
			},
		})
	})

	members, err := client.GroupMembers(context.Background(), "4cb22e83-1c75-4678-ab39-5f2c9d1e0a44")

	require.NoError(t, err)
	assert.Equal(t, "/groups/4cb22e83-1c75-4678-ab39-5f2c9d1e0a44/members", gotPath)
	assert.Equal(t, "Bearer graph-token", gotAuth)
	require.Len(t, members, 1)
	assert.Equal(t, domain.KindUser, members[0].Kind)
	assert.Equal(t, "Mark Member", members[0].DisplayName)
	assert.Equal(t, "mark@contoso.com", members[0].LoginName)
}

func TestGroupOwners(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(map[string]any{
			"value": []map[string]any{
				{"id": "00000000-0000-4000-8000-000000000002", "displayName": "Olivia Owner"},
			},
		})
	})

	owners, err := client.GroupOwners(context.Background(), "4cb22e83-1c75-4678-ab39-5f2c9d1e0a44")

	require.NoError(t, err)
	assert.Equal(t, "/groups/4cb22e83-1c75-4678-ab39-5f2c9d1e0a44/owners", gotPath)
	require.Len(t, owners, 1)
	// Objects without a UPN fall back to the object ID as identity key.
	assert.Equal(t, "00000000-0000-4000-8000-000000000002", owners[0].LoginName)
}

func TestGroupMembersPagination(t *testing.T) {
	var server *httptest.Server
	calls := 0
	handler := func(w http.ResponseWriter, r *http.Request) {
		calls++
		switch calls {
		case 1:
			_ = json.NewEncoder(w).Encode(map[string]any{
				"value": []map[string]any{
					{"displayName": "Page One", "userPrincipalName": "one@contoso.com"},
				},
				"@odata.nextLink": server.URL + "/groups/g/members?$skiptoken=x",
			})
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{
				"value": []map[string]any{
					{"displayName": "Page Two", "userPrincipalName": "two@contoso.com"},
				},
			})
		}
	}
	server = httptest.NewServer(http.HandlerFunc(handler))
	t.Cleanup(server.Close)
	client := New(Config{
		BaseURL:    server.URL,
		Tokens:     oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "graph-token"}),
		HTTPClient: server.Client(),
	})

	members, err := client.GroupMembers(context.Background(), "g")

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, members, 2)
	assert.Equal(t, "Page One", members[0].DisplayName)
	assert.Equal(t, "Page Two", members[1].DisplayName)
}

func TestGroupMembersNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "group does not exist", http.StatusNotFound)
	})

	_, err := client.GroupMembers(context.Background(), "missing")

	require.Error(t, err)
	assert.True(t, microsoft.IsNotFound(err))
}

func TestGroupMembersThrottled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.GroupMembers(context.Background(), "g")

	require.Error(t, err)
	assert.True(t, microsoft.IsRateLimited(err))
}
