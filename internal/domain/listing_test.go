package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleWorkloads() []Workload {
	return []Workload{
		{ID: 1, Submitter: UserRef{Username: "alice"}, Source: SourceHorizontal, Status: WorkloadPending},
		{ID: 2, Submitter: UserRef{Username: "bob"}, Source: SourceInnovation, Status: WorkloadMentorApproved},
		{ID: 3, Submitter: UserRef{Username: "alice"}, Source: SourceInnovation, Status: WorkloadTeacherApproved},
		{ID: 4, Submitter: UserRef{Username: "carol"}, Source: SourceOther, Status: WorkloadPending},
	}
}

func ids(items []Workload) []int {
	out := make([]int, 0, len(items))
	for _, w := range items {
		out = append(out, w.ID)
	}
	return out
}

func TestWorkloadFilter_AllMatchesEverything(t *testing.T) {
	f := WorkloadFilter{Submitter: FilterAll, Source: "", Status: FilterAll}
	assert.Equal(t, []int{1, 2, 3, 4}, ids(f.Apply(sampleWorkloads())))
}

func TestWorkloadFilter_Combined(t *testing.T) {
	f := WorkloadFilter{Submitter: "alice", Source: string(SourceInnovation)}
	assert.Equal(t, []int{3}, ids(f.Apply(sampleWorkloads())))

	f = WorkloadFilter{Status: string(WorkloadPending)}
	assert.Equal(t, []int{1, 4}, ids(f.Apply(sampleWorkloads())))
}

func TestUniqueSubmitters_FirstSeenOrder(t *testing.T) {
	assert.Equal(t, []string{"alice", "bob", "carol"}, UniqueSubmitters(sampleWorkloads()))
}

func TestPaginate(t *testing.T) {
	items := make([]int, 23)
	for i := range items {
		items[i] = i
	}

	p := Paginate(items, 1, 10)
	assert.Len(t, p.Items, 10)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 23, p.TotalItems)
	assert.False(t, p.HasPrev())
	assert.True(t, p.HasNext())

	p = Paginate(items, 3, 10)
	assert.Equal(t, []int{20, 21, 22}, p.Items)
	assert.False(t, p.HasNext())

	p = Paginate(items, 9, 10)
	assert.Equal(t, 3, p.Number, "out-of-range page is clamped")

	p = Paginate(items, 0, 0)
	assert.Equal(t, 1, p.Number)
	assert.Len(t, p.Items, DefaultPageSize)
}

func TestPaginate_Empty(t *testing.T) {
	p := Paginate([]int{}, 2, 10)
	assert.Empty(t, p.Items)
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 1, p.TotalPages)
}
