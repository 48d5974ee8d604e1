package lattice

// MembershipRow is one row of the window-membership export table.
type MembershipRow struct {
	Token      string `json:"token"`
	HomeWindow int    `json:"home_window"`
}

// LatticeRow is one row of the lattice-map export table: the uncorrected
// target window plus the offset that applies to the token's transitions.
type LatticeRow struct {
	Token        string `json:"token"`
	TargetWindow int    `json:"target_window"`
	Offset       int    `json:"offset"`
}

// MembershipRows returns the flat membership table in rank order.
func (m *Model) MembershipRows() []MembershipRow {
	rows := make([]MembershipRow, 0, len(m.Tokens))
	for rank, token := range m.Tokens {
		rows = append(rows, MembershipRow{Token: token, HomeWindow: m.Home[rank]})
	}
	return rows
}

// LatticeRows returns the flat lattice-map table in rank order.
func (m *Model) LatticeRows() []LatticeRow {
	rows := make([]LatticeRow, 0, len(m.Tokens))
	for rank, token := range m.Tokens {
		rows = append(rows, LatticeRow{
			Token:        token,
			TargetWindow: m.Target[rank],
			Offset:       m.Offsets[m.Home[rank]],
		})
	}
	return rows
}
