// Package sim provides the next-event simulation engine for M/M/1 and M/M/c queues.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - server.go: ServerPool, per-server busy state and FIFO queues (queue.go)
//   - event.go: the Arrival and Departure events
//   - simulator.go: the event loop and both transitions
//   - metrics.go: the statistics collector and the Results snapshot
//
// # Architecture
//
// A run is configured by Config, validated up front, and executed once by
// Simulator.Run. Randomness comes from a PartitionedRNG keyed by the seed, so
// the arrival, service and assignment streams are isolated and a run is
// exactly reproducible. Sub-packages hold the pieces that do not touch
// simulator state:
//   - sim/histogram/: threshold fractions and cumulative tables over idle ledgers
//   - sim/analytic/: closed-form M/M/c reference values
//   - sim/trace/: optional event trace records
//
// # Key Interfaces
//
//   - AssignmentPolicy: select the server an arrival joins (random by default)
//   - DurationSampler: produce exponential service and inter-arrival times
package sim
