// Package occupancy turns a stream of object positions into per-zone entry
// counts and dwell times.
//
// An Engine holds one Record per region of a geometry.RegionSet. Each call to
// Update tests the position against every region independently and applies
// the two-state machine below to that region's record:
//
//	OUTSIDE --contains--> INSIDE     entries++, EnterTime = t
//	INSIDE  --!contains--> OUTSIDE   TotalTime += t - EnterTime
//
// Overlapping regions are not mutually exclusive; a position inside two
// regions is inside both. An absent position (object not detected) leaves
// every record unchanged.
//
// TotalTime covers completed visits only. Snapshot adds the open visit up to
// a given time for callers that need a running total.
//
// Timestamps must be non-decreasing across calls. The Engine does not check
// this; an out-of-order timestamp during an open visit can produce a negative
// contribution to TotalTime.
//
// An Engine is not safe for concurrent use.
package occupancy
