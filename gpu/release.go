package gpu

// Releasable is any GPU-backed object with an explicit release.
type Releasable interface {
	Release()
}

// ReleaseAll releases in reverse acquisition order and nils nothing for
// the caller; skipping a release here leaks GPU memory across reloads, so
// teardown paths must route through it.
func ReleaseAll(rs []Releasable) {
	for i := len(rs) - 1; i >= 0; i-- {
		if rs[i] != nil {
			rs[i].Release()
		}
	}
}
