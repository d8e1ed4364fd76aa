//go:build windows

package extract

import (
	"os"
	"syscall"
	"time"

	"fsintel/internal/storage"
)

// applySysInfo maps what Windows exposes onto the record. Inode and
// link counts stay zero and owner names stay null; creation and access
// times come from the Win32 file attribute data.
func applySysInfo(fi os.FileInfo, rec *storage.FileRecord) {
	st, ok := fi.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return
	}

	ctime := time.Unix(0, st.CreationTime.Nanoseconds())
	atime := time.Unix(0, st.LastAccessTime.Nanoseconds())
	rec.CreatedDate = &ctime
	rec.AccessedDate = &atime
}
