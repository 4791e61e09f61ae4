// Package transport performs the HTTP request behind a form change.
//
// Every fragment request carries a JSON Content-Type and a marker header
// (X-Request: true by default) so servers can answer with partial HTML.
// Redirects are followed by the HTTP client; when a successful response
// arrived through a redirect its final URL is pushed onto the page history.
//
// Outcomes are collapsed to three variants: OutcomeOK with the body text,
// OutcomeHTTPRejected for any non-2xx status (no body, no error), and
// OutcomeNetworkFailure when the request never completed.
package transport
