/*
Package api implements the HTTP client for the task board backend.

One exported method exists per backend operation:

	Auth:   CheckSession, Login, Logout, Register
	Users:  ListUsers
	Tasks:  ListTasks, CreateTask, UpdateTask, DeleteTask

The session credential is a cookie set by the backend on login; the
client owns a cookie jar and, when a CookieStore is configured, saves
the jar after every request so a CLI session survives between process
invocations.

# Errors

Backend rejections (any non-2xx status) are returned as *Error. The
server-supplied message is extracted from the conventional "message"
or "error" field and preferred over the generic fallback; callers can
show Error.Message to users verbatim. Transport failures are plain
wrapped errors, distinguishable with errors.As.

# Response normalization

The /users/list endpoint has shipped three response shapes over time.
ListUsers normalizes all of them to a []types.User at this boundary,
so the directory resolver and everything above it see exactly one
schema.
*/
package api
