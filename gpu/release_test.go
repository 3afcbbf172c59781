package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeResource struct {
	name  string
	log   *[]string
	calls int
}

func (f *fakeResource) Release() {
	f.calls++
	*f.log = append(*f.log, f.name)
}

func TestReleaseAllReverseOrder(t *testing.T) {
	var log []string
	rs := []Releasable{
		&fakeResource{name: "surface", log: &log},
		&fakeResource{name: "pipeline", log: &log},
		&fakeResource{name: "buffers", log: &log},
	}

	ReleaseAll(rs)

	assert.Equal(t, []string{"buffers", "pipeline", "surface"}, log)
}

func TestReleaseAllSkipsNil(t *testing.T) {
	var log []string
	rs := []Releasable{
		&fakeResource{name: "a", log: &log},
		nil,
		&fakeResource{name: "b", log: &log},
	}

	assert.NotPanics(t, func() { ReleaseAll(rs) })
	assert.Equal(t, []string{"b", "a"}, log)
}

func TestReleaseAllReleasesEachOnce(t *testing.T) {
	var log []string
	a := &fakeResource{name: "a", log: &log}
	b := &fakeResource{name: "b", log: &log}

	ReleaseAll([]Releasable{a, b})

	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}
