package odcpio

import (
	"io"
	"iter"
)

// Archive iterates over the members of an odc cpio archive held in a
// rewindable byte source.
//
// Every pass starts by rewinding the source, so sequential passes over the
// same Archive yield identical sequences. The Archive owns the source's
// read cursor for the duration of a pass and performs no locking: callers
// must not run two passes, or other reads of the same source, concurrently.
type Archive struct {
	src io.ReadSeeker
}

func NewArchive(src io.ReadSeeker) *Archive {
	return &Archive{src: src}
}

// Walk calls fn for every member in physical stream order, excluding the
// trailer, which is consumed and ends the pass.
//
// The first decode failure aborts the pass and is returned; members handed
// to fn before that point were complete and remain valid. If fn returns an
// error, the pass stops and that error is returned.
func (a *Archive) Walk(fn func(*Entry) error) error {
	r, err := a.rewind()
	if err != nil {
		return err
	}

	for {
		e, err := r.Next()
		if err != nil {
			return err
		}

		if e.Trailer() {
			return nil
		}

		if err := fn(e); err != nil {
			return err
		}
	}
}

// Entries provides a sequence of members equivalent to [Archive.Walk]:
// physical order, trailer excluded. A decode failure is yielded once as
// (nil, err) and ends the sequence. Breaking out early is safe and reads
// nothing further from the source.
func (a *Archive) Entries() iter.Seq2[*Entry, error] {
	return func(yield func(*Entry, error) bool) {
		r, err := a.rewind()
		if err != nil {
			yield(nil, err)
			return
		}

		for {
			e, err := r.Next()
			if err != nil {
				yield(nil, err)
				return
			}

			if e.Trailer() {
				return
			}

			if !yield(e, nil) {
				return
			}
		}
	}
}

func (a *Archive) rewind() (*Reader, error) {
	if _, err := a.src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return NewReader(a.src), nil
}
