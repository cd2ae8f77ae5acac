// Package roundrobin splits each division into seeded, size-balanced groups
// and enumerates the round-robin matches inside every group.
package roundrobin
