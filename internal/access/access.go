package access

// ResourceKind identifies which external resource a permission applies to.
type ResourceKind string

const (
	KindEvents ResourceKind = "events"
	KindTasks  ResourceKind = "tasks"
)

// Status is the raw authorization state reported by a backend. The set is
// open ended: backends may report values this package has never seen.
type Status string

const (
	StatusNotDetermined Status = "notDetermined"
	StatusRestricted    Status = "restricted"
	StatusDenied        Status = "denied"
	StatusWriteOnly     Status = "writeOnly"
	StatusFullAccess    Status = "fullAccess"
	// StatusAuthorized is the legacy unrestricted-access value older
	// backends report instead of StatusFullAccess.
	StatusAuthorized Status = "authorized"
)

// Tier is the normalized permission level for one resource kind. Full can
// read and write containers, WriteOnly may create and update items but not
// enumerate or choose containers, None permits nothing.
type Tier int

const (
	TierNone Tier = iota
	TierWriteOnly
	TierFull
)

func (t Tier) String() string {
	switch t {
	case TierFull:
		return "full"
	case TierWriteOnly:
		return "writeOnly"
	default:
		return "none"
	}
}

// TierFor maps a raw status down to a tier. Unrecognized statuses normalize
// to TierNone so a value added by a future backend can never grant access by
// accident.
func TierFor(status Status) Tier {
	switch status {
	case StatusFullAccess, StatusAuthorized:
		return TierFull
	case StatusWriteOnly:
		return TierWriteOnly
	default:
		return TierNone
	}
}
