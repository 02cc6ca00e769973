/*
Package directory resolves user ids to user records from a cache.

The cache is built by Fetch and replaced wholesale each time. Resolve
is a pure lookup. It never triggers a fetch, so a task assigned to a
user added after the last Fetch resolves as missing until the next
explicit refresh. That staleness window is documented behavior, not
something this package papers over.

When the user-listing endpoint fails or returns nothing, Fetch
installs a fixed two-entry seed directory (one admin, one regular
user) so assignee pickers stay usable. Degraded reports when the seed
is in effect; UIs use it to show a warning rather than presenting
fake data as real.
*/
package directory
