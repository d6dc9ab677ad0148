package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Draw ranges, both ends inclusive.
const (
	MinDamage      = 5
	MaxDamage      = 20
	MinGemsAwarded = 1
	MaxGemsAwarded = 10
)

// MalformedPolicy decides what the resolver does with a participant whose
// snapshot lacks an id or a usable health value.
type MalformedPolicy string

const (
	PolicySkip  MalformedPolicy = "skip"
	PolicyAbort MalformedPolicy = "abort"
)

func ParseMalformedPolicy(s string) (MalformedPolicy, error) {
	switch MalformedPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicySkip:
		return PolicySkip, nil
	case PolicyAbort:
		return PolicyAbort, nil
	}
	return "", fmt.Errorf("unknown malformed participant policy %q (want skip or abort)", s)
}

// PlayerSnapshot is the read-only view of a participant handed to the
// resolver. Health may hold anything integer-coercible.
type PlayerSnapshot struct {
	ID     string
	Nome   string
	Health any
	Gems   any
}

// Outcome is the per-participant result of a match.
type Outcome struct {
	Damage int `json:"damage"`
	Health int `json:"health"`
	Gems   int `json:"gems"`
}

// MatchResult maps participant id to Outcome and keeps insertion order.
type MatchResult struct {
	order    []string
	outcomes map[string]Outcome
}

func newMatchResult(capacity int) *MatchResult {
	return &MatchResult{
		order:    make([]string, 0, capacity),
		outcomes: make(map[string]Outcome, capacity),
	}
}

func (r *MatchResult) add(id string, o Outcome) {
	if _, ok := r.outcomes[id]; !ok {
		r.order = append(r.order, id)
	}
	r.outcomes[id] = o
}

func (r *MatchResult) Len() int { return len(r.order) }

// IDs returns participant ids in insertion order.
func (r *MatchResult) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *MatchResult) Get(id string) (Outcome, bool) {
	o, ok := r.outcomes[id]
	return o, ok
}

// MarshalJSON writes the result as an object whose keys follow insertion order.
func (r *MatchResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range r.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.outcomes[id])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Resolver computes match outcomes. It never touches storage.
type Resolver struct {
	rng    RandomSource
	policy MalformedPolicy
}

func NewResolver(rng RandomSource, policy MalformedPolicy) *Resolver {
	if rng == nil {
		rng = NewRandomSource()
	}
	if policy == "" {
		policy = PolicySkip
	}
	return &Resolver{rng: rng, policy: policy}
}

// Resolve draws damage and gems for every participant independently.
// Malformed participants are left out of the result unless the policy is
// PolicyAbort; a nil slice is always an invalid request.
func (r *Resolver) Resolve(participants []PlayerSnapshot) (*MatchResult, error) {
	const op = "resolve match"
	if participants == nil {
		return nil, invalidRequest(op, "participants missing")
	}

	result := newMatchResult(len(participants))
	for i, p := range participants {
		id := strings.TrimSpace(p.ID)
		health, ok := healthOf(p.Health)
		if id == "" || !ok {
			if r.policy == PolicyAbort {
				return nil, invalidRequest(op, fmt.Sprintf("participant %d is malformed", i))
			}
			continue
		}
		if _, dup := result.Get(id); dup {
			if r.policy == PolicyAbort {
				return nil, invalidRequest(op, "duplicate participant "+id)
			}
			continue
		}

		damage := r.rng.NextInt(MinDamage, MaxDamage)
		gems := r.rng.NextInt(MinGemsAwarded, MaxGemsAwarded)
		result.add(id, Outcome{
			Damage: damage,
			Health: max(health-damage, 0),
			Gems:   gems,
		})
	}
	return result, nil
}

func healthOf(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if math.IsInf(n, 0) || math.IsNaN(n) || n != math.Trunc(n) {
			return 0, false
		}
		// int(n) is undefined outside int's range
		if n < float64(math.MinInt) || n >= -float64(math.MinInt) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}
