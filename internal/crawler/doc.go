// Package crawler defines the records, results, and collaborator interfaces
// shared by the fetch, spelling, scheduling, and reporting subsystems.
package crawler
