package model

// Bucket is one bar of the admin chart.
type Bucket struct {
	Status AttendanceStatus `json:"status"`
	Label  string           `json:"label"`
	Color  string           `json:"color"`
	Count  int              `json:"count"`
}

type Stats struct {
	Buckets []Bucket `json:"buckets"`
	Total   int      `json:"total"`
}

var chartBuckets = []Bucket{
	{Status: StatusPresent, Label: "Hadir", Color: "#22c55e"},
	{Status: StatusLate, Label: "Terlambat", Color: "#eab308"},
	{Status: StatusLeave, Label: "Izin", Color: "#3b82f6"},
	{Status: StatusRemote, Label: "WFH", Color: "#8b5cf6"},
	{Status: StatusOffSite, Label: "Dinas", Color: "#f97316"},
	{Status: StatusSick, Label: "Sakit", Color: "#ef4444"},
}

// Tally counts records by exact status match. Records with an unknown
// status are counted in Total only.
func Tally(records []*AttendanceRecord) Stats {
	buckets := make([]Bucket, len(chartBuckets))
	copy(buckets, chartBuckets)
	index := make(map[AttendanceStatus]int, len(buckets))
	for i, b := range buckets {
		index[b.Status] = i
	}
	for _, r := range records {
		if i, ok := index[r.Status]; ok {
			buckets[i].Count++
		}
	}
	return Stats{Buckets: buckets, Total: len(records)}
}

// Count returns the bucket count for status, 0 if it has no bucket.
func (s Stats) Count(status AttendanceStatus) int {
	for _, b := range s.Buckets {
		if b.Status == status {
			return b.Count
		}
	}
	return 0
}

// Max is the largest bucket count, used to scale the bars.
func (s Stats) Max() int {
	m := 0
	for _, b := range s.Buckets {
		if b.Count > m {
			m = b.Count
		}
	}
	return m
}

// Percent is the bar height of b relative to the largest bucket.
func (s Stats) Percent(b Bucket) int {
	m := s.Max()
	if m == 0 {
		return 0
	}
	return b.Count * 100 / m
}
