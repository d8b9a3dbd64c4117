package odcpio

import (
	"bufio"
	"bytes"
	"io"

	"github.com/opencontainers/go-digest"
)

// Error related to [Reader].
var ErrShortData = &FormatError{msg: "filesize does not match available data"}

// One decoded archive member: its header, its filename (with the trailing 0
// stripped) and its complete file data. An Entry is never partially
// populated; decoding is all-or-nothing, and nothing mutates it afterwards.
type Entry struct {
	Header Header
	Data   []byte
}

// Filename of the member, without the trailing 0.
func (e *Entry) Filename() string { return e.Header.Filename }

// Size of the member file data in bytes.
func (e *Entry) Size() int64 { return int64(len(e.Data)) }

// Trailer reports whether this is the end-of-archive sentinel entry.
func (e *Entry) Trailer() bool { return e.Header.Trailer() }

// Dir reports whether the member is a directory.
func (e *Entry) Dir() bool { return e.Header.Mode.Dir() }

// File reports whether the member is a regular file.
func (e *Entry) File() bool { return e.Header.Mode.File() }

// Executable reports whether any execute permission bit is set.
func (e *Entry) Executable() bool { return e.Header.Mode.Executable() }

// Digest returns the canonical content digest of the member file data.
func (e *Entry) Digest() digest.Digest { return digest.FromBytes(e.Data) }

func (e *Entry) String() string { return e.Header.String() }

// Reader decodes archive members sequentially from a byte stream.
type Reader struct {
	br    *bufio.Reader
	nread int64
}

func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r)}
}

// Consumes input and decodes the next file entry, including its complete
// file data. Callers should stop at the entry for which [Entry.Trailer]
// reports true; past it the stream holds no further records and Next
// returns [ErrHeaderTooShort].
//
// Returns [ErrShortData] if the input ends before the DataSize bytes the
// header promised.
func (r *Reader) Next() (*Entry, error) {
	var e Entry
	if err := r.next(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *Reader) next(e *Entry) error {
	var headerOffset = r.nread

	n, err := e.Header.ReadFrom(r.br)
	r.nread += n
	if err != nil {
		return err
	}

	e.Header.HeaderOffset = headerOffset
	e.Header.DataOffset = r.nread

	// Sized by the data actually present, not by what the header claims,
	// so a corrupt filesize fails the read instead of the allocation.
	var data bytes.Buffer
	n1, err := io.CopyN(&data, r.br, e.Header.DataSize)
	r.nread += n1
	if err != nil {
		return ErrShortData.with(err)
	}
	e.Data = data.Bytes()

	return nil
}
