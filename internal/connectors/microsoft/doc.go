// Package microsoft provides the shared plumbing for the Microsoft-facing
// adapters: the SharePoint tenant administration REST API and the Microsoft
// Graph directory API.
//
// This package provides:
//   - App-only (client credentials) authentication against the Microsoft
//     identity platform
//   - Rate limiting for SharePoint and Graph requests
//   - Throttling classification for API responses
//   - A retrying invoker that absorbs throttling rejections
//
// # Authentication
//
// Administration runs unattended, so authentication uses the OAuth2 client
// credentials grant against a single tenant:
//   - Token URL: https://login.microsoftonline.com/{tenant}/oauth2/v2.0/token
//
// The resource (SharePoint admin vs. Graph) is selected by scope.
//
// # Throttling
//
// SharePoint Online and Graph throttle per app per tenant and signal it
// with a 429 response carrying an optional Retry-After header. The invoker
// retries only on that signal, waiting the server-suggested duration when
// present and a configured default otherwise. All other failures propagate
// immediately.
package microsoft
