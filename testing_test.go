package odcpio

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"testing"
)

//go:embed testdata
var testdata embed.FS

func readTestdata(t *testing.T, name string) []byte {
	data, err := fs.ReadFile(testdata, name)
	if err != nil {
		t.Fatalf("readTestdata %s: %s", name, err)
	}
	return data
}

func testdataReader(t *testing.T, name string) io.Reader {
	r, err := testdata.Open(name)
	if err != nil {
		t.Fatalf("testdataReader %s: %s", name, err)
	}
	return r
}

// rawRecord renders one fixed-size header record followed by a
// 0-terminated filename and the file data.
func rawRecord(name string, mode Mode, data string) string {
	return rawRecordFields(0, 0, mode, 0, 0, 1, 0, 0, name, data)
}

func rawRecordFields(dev, ino uint32, mode Mode, uid, gid, nlink, rdev uint32, mtime int64, name, data string) string {
	return fmt.Sprintf("%s%06o%06o%06o%06o%06o%06o%06o%011o%06o%011o%s\x00%s",
		Magic_070707, dev, ino, uint32(mode), uid, gid, nlink, rdev, mtime, len(name)+1, len(data), name, data)
}

func rawTrailer() string { return rawRecord(TrailerFilename, 0, "") }
