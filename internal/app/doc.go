// Package app assembles the order management services over a shared storage
// backend and manages their lifecycle as a group.
package app
