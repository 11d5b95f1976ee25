package core

// DBOrdering is one ORDER BY term.
type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// AllowedOrderings drops orderings on fields not in `allowed`.
// Orderings end up in raw SQL, never pass them through unchecked.
func AllowedOrderings(ords []DBOrdering, allowed ...string) []DBOrdering {
	if len(ords) == 0 {
		return nil
	}
	clean := make([]DBOrdering, 0, len(ords))
	for _, ord := range ords {
		for _, fld := range allowed {
			if ord.Field == fld {
				clean = append(clean, ord)
				break
			}
		}
	}
	return clean
}
