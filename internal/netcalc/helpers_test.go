package netcalc

// seqSource replays a fixed sequence of draws, reduced modulo n
type seqSource struct {
	values []int64
	next   int
}

func newSeqSource(values ...int64) *seqSource {
	return &seqSource{values: values}
}

func (s *seqSource) Int64N(n int64) int64 {
	v := s.values[s.next%len(s.values)]
	s.next++
	return v % n
}
