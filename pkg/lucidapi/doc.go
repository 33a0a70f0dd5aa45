// Package lucidapi talks to the Lucid REST API.
//
// # Upload
//
// [Client.Upload] posts one archived bundle to the standard import
// endpoint and returns the edit URL of the created document:
//
//	POST {base}/documents
//	Authorization: Bearer <token>
//	Lucid-Api-Version: 1
//	multipart/form-data:
//	  file     data.lucid (x-application/vnd.lucid.standardImport)
//	  type     x-application/vnd.lucid.standardImport
//	  title    <title>
//	  product  lucidchart
//
// A non-2xx response fails with a [*StatusError] carrying the status, the
// raw body and, when the server sent one, its error message. A 2xx
// response without an editUrl fails with [ErrMalformedResponse]. Uploads
// are never retried. Requests are spaced by a token-bucket limiter.
//
// # Login
//
// [OAuthConfig] builds the authorization-code flow against lucid.app. The
// CLI runs a [CallbackServer] on 127.0.0.1 as the redirect target and
// exchanges the returned code for a token.
package lucidapi
