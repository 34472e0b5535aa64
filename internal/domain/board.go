package domain

// Column is one status column of a board, in sort-key order.
type Column struct {
	Status Status        `json:"status"`
	Tasks  []TaskSummary `json:"tasks"`
}

// Board is every column of a user's board in board order. Empty columns are
// included.
type Board struct {
	Columns []Column `json:"columns"`
}

// NewBoard groups summaries by status. Summaries must already be sorted by
// sort key within each status; relative order is preserved.
func NewBoard(summaries []TaskSummary) *Board {
	board := &Board{Columns: make([]Column, len(boardOrder))}
	for i, status := range boardOrder {
		board.Columns[i] = Column{Status: status, Tasks: []TaskSummary{}}
	}
	for _, s := range summaries {
		rank := s.Status.Rank()
		if rank < 0 {
			continue
		}
		board.Columns[rank].Tasks = append(board.Columns[rank].Tasks, s)
	}
	return board
}

// Column returns the column for status, or nil when status is unknown.
func (b *Board) Column(status Status) *Column {
	rank := status.Rank()
	if rank < 0 || rank >= len(b.Columns) {
		return nil
	}
	return &b.Columns[rank]
}
