package microsoft

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Microsoft identity platform token endpoint, per tenant.
const tokenURLFormat = "https://login.microsoftonline.com/%s/oauth2/v2.0/token"

// AppCredentials configures app-only authentication for one tenant.
type AppCredentials struct {
	// TenantID is the Entra tenant ID or verified domain name.
	TenantID string
	// ClientID is the app registration's application ID.
	ClientID string
	// ClientSecret is the app's client secret.
	ClientSecret string
}

// SharePointTokenSource returns a token source scoped to the SharePoint
// tenant administration API of the given tenant host (e.g. "contoso" for
// contoso-admin.sharepoint.com).
func (c AppCredentials) SharePointTokenSource(tenantHost string) oauth2.TokenSource {
	cfg := clientcredentials.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURL:     fmt.Sprintf(tokenURLFormat, c.TenantID),
		Scopes:       []string{fmt.Sprintf("https://%s-admin.sharepoint.com/.default", tenantHost)},
	}
	return cfg.TokenSource(context.Background())
}

// GraphTokenSource returns a token source scoped to Microsoft Graph.
func (c AppCredentials) GraphTokenSource() oauth2.TokenSource {
	cfg := clientcredentials.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURL:     fmt.Sprintf(tokenURLFormat, c.TenantID),
		Scopes:       []string{"https://graph.microsoft.com/.default"},
	}
	return cfg.TokenSource(context.Background())
}
