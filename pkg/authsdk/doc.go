/*
Package authsdk provides a client SDK for the marketauth service and the
error type the service writes on the wire.

# Client

Client behaves like a browser: session tokens arrive as http-only cookies and
are kept in the client's cookie jar, and every state-changing request echoes
the CSRF token in the X-CSRF-Token header.

	client, err := authsdk.NewClient("https://auth.example.com")

	// Fetch a CSRF token first; login and refresh require it
	if _, err := client.CSRFToken(ctx); err != nil {
		return err
	}

	if _, err := client.Login(ctx, "trader@example.com", "Passw0rd!"); err != nil {
		return err
	}

	profile, err := client.Me(ctx)

Access tokens are short lived. When a call fails with AccessTokenExpired, call
Refresh and retry; the refresh token is single use and is rotated on every
call.

# Errors

Every failed call returns an *APIError carrying the HTTP status, a kind and a
stable code:

	_, err := client.Me(ctx)
	if errors.Is(err, authsdk.ErrAccessTokenExpired) {
		_, err = client.Refresh(ctx)
	}

The server uses the same predefined values and writes them with WriteError,
so the client and service never disagree on codes.

# Thread Safety

A Client is safe for concurrent use. Note that concurrent Refresh calls race
for the same single-use refresh token and only one of them succeeds.
*/
package authsdk
