/*
Package session owns the authenticated-identity state machine.

The Manager starts in Loading and resolves to Anonymous or
Authenticated exactly once via Initialize; afterwards Login and Logout
drive the remaining transitions. Session state is never ambient: the
Manager is constructed explicitly and handed to consumers (the route
guard, the CLI) as a dependency.

A failed Login leaves the state untouched and propagates the backend's
message to the caller. Logout clears the local session regardless of
whether the remote call succeeded; a client that cannot reach the
backend must still be able to log out locally.
*/
package session
