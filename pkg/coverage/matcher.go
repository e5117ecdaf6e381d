package coverage

// poolKey identifies a set of interchangeable reservation units
type poolKey struct {
	instanceType string
	where        string // zone for zonal reservations, region otherwise
	scope        Scope
	vpc          bool
	engine       string
	multiAZ      bool
}

// poolEntry tracks how much of a single reservation is still available
type poolEntry struct {
	res       *Reservation
	remaining int
	used      int
}

// Match cross-references running instances against active reservations and
// returns one Assignment per instance plus the reservations that ended up
// completely unused. Matching is greedy: each reservation unit is consumed
// by at most one instance, a zone-exact reservation is preferred over a
// region-scoped one, and reservations sharing a key are consumed in input
// order. A reservation that is only partially consumed does not count as
// unused. Match is a pure function over its inputs and performs no I/O.
func Match(instances []Instance, reservations []Reservation) (Result, error) {
	if err := validateInstances(instances); err != nil {
		return Result{}, err
	}
	if err := validateReservations(reservations); err != nil {
		return Result{}, err
	}

	// Build the pool of remaining reservation units. Entries keep their
	// input order within a key so ties go to the first reservation seen.
	pool := make(map[poolKey][]*poolEntry)
	entries := make([]*poolEntry, 0, len(reservations))
	for _, r := range reservations {
		res := r
		entry := &poolEntry{res: &res, remaining: res.Count}
		key := poolKey{
			instanceType: res.Type,
			where:        res.Zone,
			scope:        res.Scope,
			vpc:          res.VPC,
			engine:       res.Engine,
			multiAZ:      res.MultiAZ,
		}
		if res.Scope == ScopeRegion {
			key.where = res.Region
		}
		pool[key] = append(pool[key], entry)
		entries = append(entries, entry)
	}

	result := Result{Assignments: make([]Assignment, 0, len(instances))}

	for _, inst := range instances {
		region := inst.Region
		if region == "" {
			region = RegionOfZone(inst.Zone)
		}

		zonal := poolKey{
			instanceType: inst.Type,
			where:        inst.Zone,
			scope:        ScopeZone,
			vpc:          inst.VPC,
			engine:       inst.Engine,
			multiAZ:      inst.MultiAZ,
		}
		regional := zonal
		regional.where = region
		regional.scope = ScopeRegion

		assignment := Assignment{Instance: inst}
		if entry := take(pool, zonal, regional); entry != nil {
			assignment.Reservation = entry.res
			assignment.Slot = entry.used
		}
		result.Assignments = append(result.Assignments, assignment)
	}

	for _, entry := range entries {
		if entry.remaining == entry.res.Count {
			result.Unused = append(result.Unused, *entry.res)
		}
	}

	return result, nil
}

// take consumes one reservation unit for the first key that has capacity
func take(pool map[poolKey][]*poolEntry, keys ...poolKey) *poolEntry {
	for _, key := range keys {
		for _, entry := range pool[key] {
			if entry.remaining > 0 {
				entry.remaining--
				entry.used++
				return entry
			}
		}
	}
	return nil
}

func validateInstances(instances []Instance) error {
	for _, inst := range instances {
		switch {
		case inst.ID == "":
			return &ValidationError{Kind: "instance", ID: inst.Name, Field: "id"}
		case inst.Type == "":
			return &ValidationError{Kind: "instance", ID: inst.ID, Field: "type"}
		case inst.Zone == "":
			return &ValidationError{Kind: "instance", ID: inst.ID, Field: "zone"}
		}
	}
	return nil
}

func validateReservations(reservations []Reservation) error {
	for _, res := range reservations {
		switch {
		case res.ID == "":
			return &ValidationError{Kind: "reservation", Field: "id"}
		case res.Type == "":
			return &ValidationError{Kind: "reservation", ID: res.ID, Field: "type"}
		case res.Count < 1:
			return &ValidationError{Kind: "reservation", ID: res.ID, Field: "count"}
		case res.Scope == ScopeZone && res.Zone == "":
			return &ValidationError{Kind: "reservation", ID: res.ID, Field: "zone"}
		case res.Scope == ScopeRegion && res.Region == "":
			return &ValidationError{Kind: "reservation", ID: res.ID, Field: "region"}
		case res.Scope != ScopeZone && res.Scope != ScopeRegion:
			return &ValidationError{Kind: "reservation", ID: res.ID, Field: "scope"}
		}
	}
	return nil
}
