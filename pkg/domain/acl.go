package domain

// UserAccess grants an access pattern to a single user.
type UserAccess struct {
	UserUid string
	Access  string
}

// UserGroupAccess grants an access pattern to all members of a user
// group. The member set is not embedded; it is looked up by GroupUid
// through the user-group cache when needed.
type UserGroupAccess struct {
	GroupUid string
	Access   string
}

// Sharing is the ACL attached to a metadata object. Access strings are
// stored verbatim (8-char rwrw---- patterns); interpreting them belongs
// to the validation stage.
type Sharing struct {
	PublicAccess  string
	UserAccesses  []UserAccess
	GroupAccesses []UserGroupAccess
}

func (s Sharing) Equal(o Sharing) bool {
	if s.PublicAccess != o.PublicAccess ||
		len(s.UserAccesses) != len(o.UserAccesses) ||
		len(s.GroupAccesses) != len(o.GroupAccesses) {
		return false
	}
	for i, ua := range s.UserAccesses {
		if o.UserAccesses[i] != ua {
			return false
		}
	}
	for i, ga := range s.GroupAccesses {
		if o.GroupAccesses[i] != ga {
			return false
		}
	}
	return true
}
