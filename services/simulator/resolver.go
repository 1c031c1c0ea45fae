package simulator

import (
	"math/rand"
	"sync"
)

// Trigger names a simulated hardware or network action.
type Trigger string

const (
	TriggerTap   Trigger = "tap"
	TriggerDoor  Trigger = "door"
	TriggerTrack Trigger = "track"
	TriggerTrain Trigger = "train"
)

// Outcome is how a simulated action resolved.
type Outcome struct {
	Success bool
	Message string
}

// Resolver decides the outcome of each simulated action.
type Resolver interface {
	Resolve(trigger Trigger) Outcome
}

var failureMessages = map[Trigger]string{
	TriggerTap:   "nfc_read_failed",
	TriggerDoor:  "door_jammed",
	TriggerTrack: "tracking_failed",
	TriggerTrain: "training_failed",
}

// RandomResolver fails each trigger with a fixed probability.
type RandomResolver struct {
	mu    sync.Mutex
	rng   *rand.Rand
	rates map[Trigger]float64
}

// NewRandomResolver builds a resolver over rng. Triggers missing from rates always succeed.
func NewRandomResolver(rng *rand.Rand, rates map[Trigger]float64) *RandomResolver {
	return &RandomResolver{rng: rng, rates: rates}
}

// DefaultRates fails only training, at trainFailureRate.
func DefaultRates(trainFailureRate float64) map[Trigger]float64 {
	return map[Trigger]float64{TriggerTrain: trainFailureRate}
}

func (r *RandomResolver) Resolve(trigger Trigger) Outcome {
	rate := r.rates[trigger]
	if rate <= 0 {
		return Outcome{Success: true}
	}
	r.mu.Lock()
	roll := r.rng.Float64()
	r.mu.Unlock()
	if roll < rate {
		return Outcome{Message: failureMessages[trigger]}
	}
	return Outcome{Success: true}
}

// FixedResolver returns a preset outcome per trigger, success when unset.
type FixedResolver map[Trigger]Outcome

func (f FixedResolver) Resolve(trigger Trigger) Outcome {
	if out, ok := f[trigger]; ok {
		return out
	}
	return Outcome{Success: true}
}
