package report

import "sort"

// UsageRow is one grouped row of the usage log query.
type UsageRow struct {
	ContextID uint  `gorm:"column:context_id"`
	UserID    uint  `gorm:"column:user_id"`
	Year      int   `gorm:"column:usage_year"`
	Month     int   `gorm:"column:usage_month"`
	Day       int   `gorm:"column:usage_day"`
	Amount    int64 `gorm:"column:amount"`
}

type UserRow struct {
	UserID uint    `json:"user_id"`
	Counts []int64 `json:"counts"`
}

// ContextRow holds one module's counts indexed by day offset. In per-user
// mode Counts is nil and Users carries one row per user.
type ContextRow struct {
	ContextID uint      `json:"context_id"`
	Counts    []int64   `json:"counts,omitempty"`
	Users     []UserRow `json:"users,omitempty"`
}

func (r ContextRow) Max() int64 {
	highest := maxOf(r.Counts)
	for _, u := range r.Users {
		if v := maxOf(u.Counts); v > highest {
			highest = v
		}
	}
	return highest
}

type Matrix struct {
	Days    int          `json:"days"`
	PerUser bool         `json:"per_user"`
	Rows    []ContextRow `json:"rows"`
	// Dropped lists contexts present in the log that no longer resolve to
	// a course module.
	Dropped []uint `json:"dropped,omitempty"`
}

func (m Matrix) Max() int64 {
	var highest int64
	for _, r := range m.Rows {
		if v := r.Max(); v > highest {
			highest = v
		}
	}
	return highest
}

func (m Matrix) Empty() bool {
	return len(m.Rows) == 0
}

// Aggregate turns grouped usage rows into a dense matrix over the window.
// Every context (and user, in per-user mode) gets one count per day with
// missing days left at zero. Rows for contexts rejected by known are
// skipped; a nil known accepts everything.
func Aggregate(rows []UsageRow, w Window, perUser bool, known func(contextID uint) bool) Matrix {
	days := w.Days()
	m := Matrix{Days: days, PerUser: perUser}

	type acc struct {
		counts []int64
		users  map[uint][]int64
	}
	contexts := make(map[uint]*acc)
	dropped := make(map[uint]bool)

	for _, row := range rows {
		if dropped[row.ContextID] {
			continue
		}
		a, ok := contexts[row.ContextID]
		if !ok {
			if known != nil && !known(row.ContextID) {
				dropped[row.ContextID] = true
				m.Dropped = append(m.Dropped, row.ContextID)
				continue
			}
			a = &acc{}
			if perUser {
				a.users = make(map[uint][]int64)
			} else {
				a.counts = make([]int64, days+1)
			}
			contexts[row.ContextID] = a
		}

		offset := DayOffset(w.Start, row.Year, row.Month, row.Day)
		if offset < 0 || offset > days {
			continue
		}

		if perUser {
			counts, ok := a.users[row.UserID]
			if !ok {
				counts = make([]int64, days+1)
				a.users[row.UserID] = counts
			}
			counts[offset] += row.Amount
		} else {
			a.counts[offset] += row.Amount
		}
	}

	ids := make([]uint, 0, len(contexts))
	for id := range contexts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	m.Rows = make([]ContextRow, 0, len(ids))
	for _, id := range ids {
		a := contexts[id]
		row := ContextRow{ContextID: id, Counts: a.counts}
		if perUser {
			userIDs := make([]uint, 0, len(a.users))
			for uid := range a.users {
				userIDs = append(userIDs, uid)
			}
			sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })
			row.Users = make([]UserRow, 0, len(userIDs))
			for _, uid := range userIDs {
				row.Users = append(row.Users, UserRow{UserID: uid, Counts: a.users[uid]})
			}
		}
		m.Rows = append(m.Rows, row)
	}

	sort.Slice(m.Dropped, func(i, j int) bool { return m.Dropped[i] < m.Dropped[j] })
	return m
}

func maxOf(values []int64) int64 {
	var highest int64
	for _, v := range values {
		if v > highest {
			highest = v
		}
	}
	return highest
}
