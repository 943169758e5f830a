package model

// StatusCounts is one summary bucket of the statistics endpoint.
type StatusCounts struct {
	Running   int64 `json:"running"`
	Completed int64 `json:"completed"`
	Closed    int64 `json:"closed"`
	Paused    int64 `json:"paused"`
	Cancelled int64 `json:"cancelled"`
}

func (s StatusCounts) Add(other StatusCounts) StatusCounts {
	return StatusCounts{
		Running:   s.Running + other.Running,
		Completed: s.Completed + other.Completed,
		Closed:    s.Closed + other.Closed,
		Paused:    s.Paused + other.Paused,
		Cancelled: s.Cancelled + other.Cancelled,
	}
}

type ContractStats struct {
	General      StatusCounts `json:"general"`
	BlockBooking StatusCounts `json:"block_booking"`
	Total        StatusCounts `json:"total"`
}

// StatusCountRow is one row of the grouped (type, status) aggregation.
type StatusCountRow struct {
	ContractType ContractType
	Status       ContractStatus
	Count        int64
}
