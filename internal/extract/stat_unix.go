//go:build !windows

package extract

import (
	"os"
	"os/user"
	"strconv"
	"syscall"
	"time"

	"fsintel/internal/storage"
)

// applySysInfo fills the POSIX-only fields from the raw stat result:
// inode, hard link count, owner names, and the access/change times the
// portable FileInfo interface does not expose.
func applySysInfo(fi os.FileInfo, rec *storage.FileRecord) {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return
	}

	rec.InodeNumber = st.Ino
	rec.HardLinkCount = uint64(st.Nlink)

	atime := time.Unix(st.Atim.Sec, st.Atim.Nsec)
	ctime := time.Unix(st.Ctim.Sec, st.Ctim.Nsec)
	rec.AccessedDate = &atime
	rec.CreatedDate = &ctime

	if u, err := user.LookupId(strconv.FormatUint(uint64(st.Uid), 10)); err == nil {
		rec.OwnerUser = &u.Username
	}
	if g, err := user.LookupGroupId(strconv.FormatUint(uint64(st.Gid), 10)); err == nil {
		rec.OwnerGroup = &g.Name
	}
}
