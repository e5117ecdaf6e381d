package coverage

import (
	"fmt"
	"strings"
	"time"
)

// Scope describes where a reservation applies
type Scope string

const (
	// ScopeZone means the reservation only covers one availability zone
	ScopeZone Scope = "zone"

	// ScopeRegion means the reservation covers any zone in its region
	ScopeRegion Scope = "region"
)

// Instance represents a running instance to be checked for coverage.
// Engine and MultiAZ are only meaningful for database instances and stay
// zero-valued for compute instances.
type Instance struct {
	ID      string
	Name    string
	Zone    string
	Region  string // derived from Zone when empty
	Type    string
	VPC     bool
	Engine  string
	MultiAZ bool
}

// Reservation represents an active reserved instance purchase.
// Count is the number of identical instances the purchase covers.
type Reservation struct {
	ID         string
	Type       string
	Scope      Scope
	Zone       string // set when Scope is ScopeZone
	Region     string
	Count      int
	VPC        bool
	Engine     string
	MultiAZ    bool
	Expiry     time.Time
	AnnualCost float64
}

// DaysLeft returns the whole days remaining until the reservation expires.
func (r Reservation) DaysLeft(now time.Time) int {
	return int(r.Expiry.Sub(now).Hours() / 24)
}

// Assignment annotates one instance with the reservation that covers it.
// A nil Reservation means the instance is not covered, which is a normal
// outcome rather than an error.
type Assignment struct {
	Instance    Instance
	Reservation *Reservation
	Slot        int // 1-based position within the reservation's count
}

// Covered reports whether the instance is backed by a reservation.
func (a Assignment) Covered() bool {
	return a.Reservation != nil
}

// Result is the output of Match for one resource family.
type Result struct {
	Assignments []Assignment
	Unused      []Reservation
}

// ValidationError reports an input record missing a required field.
type ValidationError struct {
	Kind  string // "instance" or "reservation"
	ID    string
	Field string
}

func (e *ValidationError) Error() string {
	id := e.ID
	if id == "" {
		id = "<no id>"
	}
	return fmt.Sprintf("%s %s: missing or invalid %s", e.Kind, id, e.Field)
}

// RegionOfZone strips the zone letter suffix from an availability zone,
// e.g. "us-east-1a" becomes "us-east-1".
func RegionOfZone(zone string) string {
	return strings.TrimRight(zone, "abcdefghijklmnopqrstuvwxyz")
}
