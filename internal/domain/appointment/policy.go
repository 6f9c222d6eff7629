package appointment

// TransitionPolicy decides whether a status change is accepted.
type TransitionPolicy interface {
	Allows(from, to Status) bool
}

// PermissivePolicy accepts any move between listed statuses.
type PermissivePolicy struct{}

func (PermissivePolicy) Allows(_, to Status) bool {
	return to.IsValid()
}

// StrictPolicy accepts only the forward lifecycle edges.
type StrictPolicy struct{}

var strictEdges = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

func (StrictPolicy) Allows(from, to Status) bool {
	for _, s := range strictEdges[from] {
		if s == to {
			return true
		}
	}
	return false
}

func PolicyFor(strict bool) TransitionPolicy {
	if strict {
		return StrictPolicy{}
	}
	return PermissivePolicy{}
}
