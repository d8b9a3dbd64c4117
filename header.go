package odcpio

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"time"
)

// A FormatError reports a structural problem with the archive byte stream.
// Every decode failure in this package is a *FormatError; the fixed
// conditions are exposed as the Err* sentinel values below.
type FormatError struct {
	msg string
	err error
}

func (e *FormatError) Error() string { return "odcpio: " + e.msg }
func (e *FormatError) Unwrap() error { return e.err }

// Is matches FormatErrors by condition, so a sentinel still matches a copy
// of itself that carries an underlying cause.
func (e *FormatError) Is(target error) bool {
	t, ok := target.(*FormatError)
	return ok && e.msg == t.msg
}

func (e *FormatError) with(cause error) *FormatError {
	return &FormatError{msg: e.msg, err: cause}
}

// Errors related to [Header].
var (
	ErrHeaderTooShort = &FormatError{msg: "header too short for ASCII CPIO header"}
	ErrBadMagic       = &FormatError{msg: "not a valid ASCII CPIO archive"}
	ErrShortFilename  = &FormatError{msg: "namesize does not match available data"}
)

// Magic identifier for an archive member file header.
const Magic_070707 = `070707`

// The sentinel filename that indicates end-of-archive.
const TrailerFilename = "TRAILER!!!"

// File mode and permission bits.
type Mode uint32

const (
	Mode_FileTypeMask Mode = 0o170_000
	Mode_Socket       Mode = 0o140_000 // File type for sockets.
	Mode_Symlink      Mode = 0o120_000 // File type for symbolic links (file data is link target).
	Mode_File         Mode = 0o100_000 // File type for regular files.
	Mode_BlockDevice  Mode = 0o060_000 // File type for block devices.
	Mode_Dir          Mode = 0o040_000 // File type for directories.
	Mode_CharDevice   Mode = 0o020_000 // File type for character devices.
	Mode_FIFO         Mode = 0o010_000 // File type for named pipes or FIFO's.
	Mode_SetUID       Mode = 0o004_000 // SUID bit.
	Mode_SetGID       Mode = 0o002_000 // SGID bit.
	Mode_Sticky       Mode = 0o001_000 // Sticky bit.
	Mode_PermsMask    Mode = 0o000_777 // Permission bits (read/write/execute for user, group and other).

	UserRead     Mode = 0o400
	UserWrite    Mode = 0o200
	UserExecute  Mode = 0o100
	GroupRead    Mode = 0o040
	GroupWrite   Mode = 0o020
	GroupExecute Mode = 0o010
	OtherRead    Mode = 0o004
	OtherWrite   Mode = 0o002
	OtherExecute Mode = 0o001
)

func (m Mode) FileType() Mode { return m & Mode_FileTypeMask }
func (m Mode) Perms() int     { return int(m & Mode_PermsMask) }

func (m Mode) Socket() bool      { return m.FileType() == Mode_Socket }
func (m Mode) Symlink() bool     { return m.FileType() == Mode_Symlink }
func (m Mode) File() bool        { return m.FileType() == Mode_File }
func (m Mode) BlockDevice() bool { return m.FileType() == Mode_BlockDevice }
func (m Mode) Dir() bool         { return m.FileType() == Mode_Dir }
func (m Mode) CharDevice() bool  { return m.FileType() == Mode_CharDevice }
func (m Mode) FIFO() bool        { return m.FileType() == Mode_FIFO }

func (m Mode) SetUID() bool { return (m & Mode_SetUID) != 0 }
func (m Mode) SetGID() bool { return (m & Mode_SetGID) != 0 }
func (m Mode) Sticky() bool { return (m & Mode_Sticky) != 0 }

// Executable reports whether any of the user, group or other execute bits
// are set, independent of the file type.
func (m Mode) Executable() bool {
	return (m & (UserExecute | GroupExecute | OtherExecute)) != 0
}

func (m Mode) String() string {
	var s = [...]byte{'-', '-', '-', '-', '-', '-', '-', '-', '-', '-'}

	switch m.FileType() {
	case Mode_Socket:
		s[0] = 's'
	case Mode_Symlink:
		s[0] = 'l'
	case Mode_BlockDevice:
		s[0] = 'b'
	case Mode_Dir:
		s[0] = 'd'
	case Mode_CharDevice:
		s[0] = 'c'
	case Mode_FIFO:
		s[0] = 'p'
	}

	if (m & UserRead) != 0 {
		s[1] = 'r'
	}
	if (m & UserWrite) != 0 {
		s[2] = 'w'
	}
	if (m & UserExecute) != 0 {
		s[3] = 'x'
	}

	if (m & GroupRead) != 0 {
		s[4] = 'r'
	}
	if (m & GroupWrite) != 0 {
		s[5] = 'w'
	}
	if (m & GroupExecute) != 0 {
		s[6] = 'x'
	}

	if (m & OtherRead) != 0 {
		s[7] = 'r'
	}
	if (m & OtherWrite) != 0 {
		s[8] = 'w'
	}
	if (m & OtherExecute) != 0 {
		s[9] = 'x'
	}

	return string(s[:])
}

// Header for a file member within an odc cpio archive.
type Header struct {
	HeaderOffset int64
	DataOffset   int64

	// Fixed length fields
	Magic        string    // Always `070707`
	Dev          uint32    // Device number of the filesystem the file resides on
	Inode        uint32    // File inode number
	Mode         Mode      // File mode and permission bits
	Uid          uint32    // File owner user id
	Gid          uint32    // File owner group id
	NumLinks     uint32    // Number of hard links
	RDev         uint32    // Device number referenced by special files
	Mtime        time.Time // Modification time (seconds since Unix epoch)
	FilenameSize uint32    // Length of filename field (including trailing 0)
	DataSize     int64     // Size of file data following the filename field

	// Variable length field
	Filename string
}

// Formats the header similarly to the long listing output of `ls -l`.
func (hdr *Header) String() string {
	return fmt.Sprintf("%s %4d  %4d %4d  %8d  %s  %s", hdr.Mode, hdr.NumLinks, hdr.Uid, hdr.Gid, hdr.DataSize, hdr.Mtime, hdr.Filename)
}

// Trailer reports whether this header names the end-of-archive sentinel
// record, which carries no file data.
func (hdr *Header) Trailer() bool {
	return hdr.Filename == TrailerFilename && hdr.DataSize == 0
}

// Read and convert the textual form of the header and filename fields.
//
// Returns [ErrHeaderTooShort] if the input ends before a full fixed-size
// record, [ErrBadMagic] if the record does not start with `070707`, and
// [ErrShortFilename] if the input ends before FilenameSize bytes of
// filename. A single trailing 0 is stripped from the filename if present.
func (hdr *Header) ReadFrom(r io.Reader) (n int64, err error) {
	var text rawTextHeader
	n0, err := text.ReadFrom(r)
	n += n0
	if err != nil {
		return n, ErrHeaderTooShort.with(err)
	}

	if err := hdr.fromText(&text); err != nil {
		return n, err
	}

	var filename = make([]byte, hdr.FilenameSize)
	n1, err := io.ReadFull(r, filename)
	n += int64(n1)
	if err != nil {
		return n, ErrShortFilename.with(err)
	}

	if k := len(filename); k > 0 && filename[k-1] == 0 {
		filename = filename[:k-1]
	}
	hdr.Filename = string(filename)

	return n, nil
}

// The size of a member file header within an odc cpio archive.
const HeaderSize = 76

// 6 bytes magic, seven fields at 6 bytes, mtime at 11, namesize at 6, filesize at 11
var _ [HeaderSize]byte = [6 + 7*6 + 11 + 6 + 11]byte{}

// Widths of the fixed fields following the magic, in record order: dev,
// inode, mode, uid, gid, numlinks, rdev, mtime, namesize, filesize.
var fieldWidths = [...]int{6, 6, 6, 6, 6, 6, 6, 11, 6, 11}

// The raw octal characters of the fixed fields from the member file header.
type rawTextHeader [HeaderSize]byte

func (text *rawTextHeader) ReadFrom(r io.Reader) (int64, error) {
	n, err := io.ReadFull(r, text[:])
	return int64(n), err
}

var magic_070707 = []byte(Magic_070707)

func (hdr *Header) fromText(text *rawTextHeader) error {
	if !bytes.Equal(text[:6], magic_070707) {
		return ErrBadMagic
	}

	var fields [len(fieldWidths)]uint64
	offs := 6
	for i, w := range fieldWidths {
		v, err := parseField(text[offs : offs+w])
		if err != nil {
			return err
		}
		fields[i] = v
		offs += w
	}

	*hdr = Header{
		Magic:        Magic_070707,
		Dev:          uint32(fields[0]),
		Inode:        uint32(fields[1]),
		Mode:         Mode(fields[2]),
		Uid:          uint32(fields[3]),
		Gid:          uint32(fields[4]),
		NumLinks:     uint32(fields[5]),
		RDev:         uint32(fields[6]),
		Mtime:        time.Unix(int64(fields[7]), 0),
		FilenameSize: uint32(fields[8]),
		DataSize:     int64(fields[9]),
		// Filename is excluded from this conversion
	}

	return nil
}

// parseField decodes one fixed-width octal digit run. Every field is a
// zero-padded octal number; the padding disappears exactly when the value
// fills the field (a regular file mode prints as 100644), so the base is
// always eight, never inferred from a leading zero.
func parseField(run []byte) (uint64, error) {
	v, err := strconv.ParseUint(string(run), 8, 64)
	if err != nil {
		return 0, &FormatError{
			msg: fmt.Sprintf("invalid header field %q", run),
			err: err,
		}
	}
	return v, nil
}
