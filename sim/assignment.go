package sim

import (
	"math/rand"

	"github.com/sirupsen/logrus"
)

// Assignment policy names accepted by NewAssignmentPolicy.
const (
	PolicyRandom        = "random"
	PolicyRoundRobin    = "round-robin"
	PolicyShortestQueue = "shortest-queue"
	PolicyIdleFirst     = "idle-first"
)

var validAssignmentPolicies = map[string]bool{
	PolicyRandom:        true,
	PolicyRoundRobin:    true,
	PolicyShortestQueue: true,
	PolicyIdleFirst:     true,
}

// AssignmentPolicy picks the server an arriving job is sent to.
// Implementations see the pool as it is just before the job is placed and
// must return an index in [0, pool.Len()).
type AssignmentPolicy interface {
	Assign(pool *ServerPool) int
}

// NewAssignmentPolicy creates the named policy. rng is only consumed by
// randomized policies. Unknown names panic: callers validate first.
func NewAssignmentPolicy(name string, rng *rand.Rand) AssignmentPolicy {
	switch name {
	case "", PolicyRandom:
		return &RandomAssignment{rng: rng}
	case PolicyRoundRobin:
		return &RoundRobinAssignment{}
	case PolicyShortestQueue:
		return &ShortestQueueAssignment{}
	case PolicyIdleFirst:
		return &IdleFirstAssignment{}
	default:
		logrus.Panicf("unknown assignment policy: %s", name)
		return nil
	}
}

// IsValidAssignmentPolicy reports whether name is a recognized policy.
func IsValidAssignmentPolicy(name string) bool {
	return validAssignmentPolicies[name]
}

// AvailableAssignmentPolicies returns the supported policy names.
func AvailableAssignmentPolicies() []string {
	return []string{PolicyRandom, PolicyRoundRobin, PolicyShortestQueue, PolicyIdleFirst}
}

// RandomAssignment picks a server uniformly at random, ignoring load.
type RandomAssignment struct {
	rng *rand.Rand
}

// Assign implements AssignmentPolicy.
func (a *RandomAssignment) Assign(pool *ServerPool) int {
	return a.rng.Intn(pool.Len())
}

// RoundRobinAssignment cycles through servers 0, 1, ..., c-1, 0, ...
type RoundRobinAssignment struct {
	next int
}

// Assign implements AssignmentPolicy.
func (a *RoundRobinAssignment) Assign(pool *ServerPool) int {
	i := a.next % pool.Len()
	a.next = i + 1
	return i
}

// ShortestQueueAssignment picks the server with the fewest jobs present
// (in service plus queued). Ties go to the lowest index.
type ShortestQueueAssignment struct{}

// Assign implements AssignmentPolicy.
func (a *ShortestQueueAssignment) Assign(pool *ServerPool) int {
	best, bestLoad := 0, serverLoad(pool, 0)
	for i := 1; i < pool.Len(); i++ {
		if load := serverLoad(pool, i); load < bestLoad {
			best, bestLoad = i, load
		}
	}
	return best
}

// IdleFirstAssignment sends the job to the lowest-index idle server and
// falls back to the shortest queue when every server is busy.
type IdleFirstAssignment struct {
	fallback ShortestQueueAssignment
}

// Assign implements AssignmentPolicy.
func (a *IdleFirstAssignment) Assign(pool *ServerPool) int {
	for i := 0; i < pool.Len(); i++ {
		if pool.IsIdle(i) {
			return i
		}
	}
	return a.fallback.Assign(pool)
}

func serverLoad(pool *ServerPool, i int) int {
	load := pool.QueueLen(i)
	if !pool.IsIdle(i) {
		load++
	}
	return load
}
