package journal

// Journaled state can be rolled back to an earlier snapshot. Commit forgets the undo history.
type Journaled interface {
	Snapshot() int
	RevertTo(snapshot int)
	Commit()
}

// Journal is an undo log. Every mutation records a closure restoring the previous value.
type Journal struct {
	undo []func()
}

func (j *Journal) Record(undo func()) {
	j.undo = append(j.undo, undo)
}

func (j *Journal) Snapshot() int {
	return len(j.undo)
}

func (j *Journal) RevertTo(snapshot int) {
	if snapshot < 0 || snapshot > len(j.undo) {
		return
	}
	for i := len(j.undo) - 1; i >= snapshot; i-- {
		j.undo[i]()
	}
	j.undo = j.undo[:snapshot]
}

func (j *Journal) Commit() {
	j.undo = nil
}

func (j *Journal) Len() int {
	return len(j.undo)
}

// Group treats several journaled participants as a single unit.
type Group []Journaled

func (g Group) Snapshot() []int {
	ids := make([]int, len(g))
	for i, p := range g {
		ids[i] = p.Snapshot()
	}
	return ids
}

func (g Group) RevertTo(ids []int) {
	for i := len(g) - 1; i >= 0; i-- {
		g[i].RevertTo(ids[i])
	}
}

func (g Group) Commit() {
	for _, p := range g {
		p.Commit()
	}
}

// Atomic runs fn and reverts every participant if it fails or panics. A panic is re-raised after the revert.
func (g Group) Atomic(fn func() error) error {
	ids := g.Snapshot()
	defer func() {
		if r := recover(); r != nil {
			g.RevertTo(ids)
			panic(r)
		}
	}()

	if err := fn(); err != nil {
		g.RevertTo(ids)
		return err
	}
	g.Commit()

	return nil
}
