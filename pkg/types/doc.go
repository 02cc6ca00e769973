/*
Package types defines the shared data model for taskdeck.

User, Task and the task input payload mirror the backend's JSON wire
format. The invariant on Task assignee fields (AssignedTo present
implies AssignedTo.ID == AssignedToID, AssignedToID empty implies
AssignedTo nil) is maintained by the task store, not enforced here.
*/
package types
