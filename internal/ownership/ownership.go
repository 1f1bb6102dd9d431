// Package ownership resolves the configured owner user/group and flags
// entries whose uid/gid differ (§4.9).
package ownership

import (
	"fmt"
	"os/user"
	"strconv"

	"github.com/archivekeeper/curator/internal/planpkg"
	"github.com/archivekeeper/curator/internal/scanmodel"
)

// ResolvedOwner is the result of resolving the configured owner_user and
// owner_group names to numeric ids via the local account databases.
type ResolvedOwner struct {
	UserName  string
	GroupName string
	Uid       uint32
	Gid       uint32
}

// Resolve looks up userName and groupName via os/user. Per §7, a lookup
// failure is a fatal configuration error for the ownership action only.
func Resolve(userName, groupName string) (ResolvedOwner, error) {
	u, err := user.Lookup(userName)
	if err != nil {
		return ResolvedOwner{}, fmt.Errorf("owner_user %q does not resolve: %w", userName, err)
	}
	g, err := user.LookupGroup(groupName)
	if err != nil {
		return ResolvedOwner{}, fmt.Errorf("owner_group %q does not resolve: %w", groupName, err)
	}
	uid, err := strconv.ParseUint(u.Uid, 10, 32)
	if err != nil {
		return ResolvedOwner{}, fmt.Errorf("owner_user %q resolved to non-numeric uid %q", userName, u.Uid)
	}
	gid, err := strconv.ParseUint(g.Gid, 10, 32)
	if err != nil {
		return ResolvedOwner{}, fmt.Errorf("owner_group %q resolved to non-numeric gid %q", groupName, g.Gid)
	}
	return ResolvedOwner{UserName: userName, GroupName: groupName, Uid: uint32(uid), Gid: uint32(gid)}, nil
}

// Analyze compares every scanned entry's uid/gid against the resolved
// owner, emitting an Ownership Operation per mismatch.
func Analyze(model *scanmodel.Model, desired ResolvedOwner) []planpkg.Operation {
	var ops []planpkg.Operation

	check := func(path string, depth int, stat scanmodel.StatSnapshot) {
		if stat.Uid == desired.Uid && stat.Gid == desired.Gid {
			return
		}
		ops = append(ops, planpkg.Operation{
			Kind:         planpkg.KindOwnership,
			Path:         path,
			CurrentOwner: lookupUserName(stat.Uid),
			CurrentGroup: lookupGroupName(stat.Gid),
			DesiredOwner: desired.UserName,
			DesiredGroup: desired.GroupName,
			NewUid:       desired.Uid,
			NewGid:       desired.Gid,
			Reason:       "owner/group mismatch",
			Depth:        depth,
		})
	}

	for _, f := range model.FilesInOrder() {
		if f.Ignored || f.MarkedForDelete {
			continue
		}
		check(f.Path, f.Depth, f.Stat)
	}
	for _, d := range model.DirsInOrder() {
		check(d.Path, d.Depth, d.Stat)
	}
	return ops
}

// lookupUserName resolves uid back to an account name via the local user
// database, falling back to the stringified numeric id when the uid has
// no entry (an orphaned owner, common after an account is deleted).
func lookupUserName(uid uint32) string {
	if u, err := user.LookupId(strconv.FormatUint(uint64(uid), 10)); err == nil {
		return u.Username
	}
	return strconv.FormatUint(uint64(uid), 10)
}

// lookupGroupName resolves gid back to a group name the same way.
func lookupGroupName(gid uint32) string {
	if g, err := user.LookupGroupId(strconv.FormatUint(uint64(gid), 10)); err == nil {
		return g.Name
	}
	return strconv.FormatUint(uint64(gid), 10)
}
