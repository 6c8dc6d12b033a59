package models

// Stats are the collection-wide counters shown under the pledge list
type Stats struct {
	Total     int
	Vouches   uint64
	Completed int
	Active    int
}

// UserStats summarizes one address's activity as seen in the cached collection
type UserStats struct {
	PledgesCreated   int
	PledgesCompleted int
	VouchesReceived  uint64
	// TotalFeesPaid counts creation and completion fees on the address's own pledges
	TotalFeesPaid int64
}

// ComputeStats counts the collection-wide totals
func ComputeStats(pledges []Pledge) Stats {
	var s Stats
	for _, p := range pledges {
		s.Total++
		s.Vouches += p.Vouches
		if p.Completed {
			s.Completed++
		} else {
			s.Active++
		}
	}
	return s
}

// ComputeUserStats counts what address created and completed
func ComputeUserStats(pledges []Pledge, address string) UserStats {
	var s UserStats
	if address == "" {
		return s
	}
	for _, p := range pledges {
		if p.Creator != address {
			continue
		}
		s.PledgesCreated++
		s.VouchesReceived += p.Vouches
		s.TotalFeesPaid += ActionCreate.ContractFee()
		if p.Completed {
			s.PledgesCompleted++
			s.TotalFeesPaid += ActionComplete.ContractFee()
		}
	}
	return s
}
