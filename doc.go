// Read cpio archives in the old portable ASCII ("odc") format.
//
// This is the legacy fixed-width header layout identified by the magic
// digits `070707`, as produced by `cpio -o -H odc` and described in the
// [cpio(5)] man page. Newer variants of the format (binary, "newc",
// "crc") and archive writing are out of scope.
//
// [cpio(5)]: https://man.freebsd.org/cgi/man.cgi?query=cpio&sektion=5
package odcpio
