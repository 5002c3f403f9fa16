package main

// SuccessionPath records the roster over a trial. Index 0 is the initial
// roster; index y is the roster after y birthdays.
type SuccessionPath struct {
	Alive       [][]int // member indices alive at the end of each year
	Successors  [][]int // alive members flagged as successors
	Involvement []float64
}

// FinalSuccessors returns the successors alive at the horizon
func (p SuccessionPath) FinalSuccessors() []int {
	return p.Successors[len(p.Successors)-1]
}

// FinalInvolvement returns the family hours available at the horizon
func (p SuccessionPath) FinalInvolvement() float64 {
	return p.Involvement[len(p.Involvement)-1]
}

// AliveCount returns the number of living members at the end of year y
func (p SuccessionPath) AliveCount(year int) int {
	return len(p.Alive[year])
}

// SuccessionModel ages the family roster year by year. Members are removed
// once their age passes life expectancy and never re-enter.
type SuccessionModel struct {
	members []FamilyMember
}

func NewSuccessionModel(members []FamilyMember) SuccessionModel {
	return SuccessionModel{members: members}
}

// Run ages a private copy of the ages; the members themselves are not touched
func (m SuccessionModel) Run(years int) SuccessionPath {
	path := SuccessionPath{
		Alive:       make([][]int, 0, years+1),
		Successors:  make([][]int, 0, years+1),
		Involvement: make([]float64, 0, years+1),
	}

	ages := make([]int, len(m.members))
	alive := make([]int, 0, len(m.members))
	for i, member := range m.members {
		ages[i] = member.Age
		alive = append(alive, i)
	}
	m.record(&path, alive)

	for year := 1; year <= years; year++ {
		next := make([]int, 0, len(alive))
		for _, idx := range alive {
			ages[idx]++
			if ages[idx] <= m.members[idx].LifeExpectancy {
				next = append(next, idx)
			}
		}
		alive = next
		m.record(&path, alive)
	}
	return path
}

func (m SuccessionModel) record(path *SuccessionPath, alive []int) {
	var successors []int
	involvement := 0.0
	for _, idx := range alive {
		member := m.members[idx]
		if member.Successor {
			successors = append(successors, idx)
		}
		involvement += member.TimeCommitment
	}
	path.Alive = append(path.Alive, alive)
	path.Successors = append(path.Successors, successors)
	path.Involvement = append(path.Involvement, involvement)
}
