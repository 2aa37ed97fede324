package table

// Explode builds a derived table with one derived row per element of a
// parent row's list-valued column. The split function maps a parent row to
// its derived rows; all non-exploded fields must be copied from the parent.
//
// The derived table's row count equals the sum of the parents' list lengths.
// Returns ErrDuplicateKey if two derived rows collide on the new index.
func Explode[R Row, D Row](t Table[R], split func(R) []D) (Table[D], error) {
	var out []D
	for r := range t.Rows() {
		out = append(out, split(r)...)
	}
	return New(out...)
}

// SessionsByExperiment re-indexes a session table by ophys experiment id,
// producing one row per experiment with the parent session's fields.
func SessionsByExperiment(t Table[OphysSession]) (Table[SessionByExperiment], error) {
	return Explode(t, func(s OphysSession) []SessionByExperiment {
		rows := make([]SessionByExperiment, 0, len(s.OphysExperimentIDs))
		for _, id := range s.OphysExperimentIDs {
			rows = append(rows, SessionByExperiment{
				OphysExperimentID: id,
				OphysSessionID:    s.OphysSessionID,
				BehaviorSessionID: s.BehaviorSessionID,
				DateOfAcquisition: s.DateOfAcquisition,
			})
		}
		return rows
	})
}
