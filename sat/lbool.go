package sat

// LBool is a lifted boolean: True, False, or Unknown.
type LBool int8

const (
	Unknown LBool = 0
	True    LBool = 1
	False   LBool = -1
)

// Opposite maps True to False, False to True, and leaves Unknown unchanged.
func (l LBool) Opposite() LBool {
	return -l
}

// Lift returns the LBool corresponding to the given bool.
func Lift(b bool) LBool {
	if b {
		return True
	}
	return False
}

func (l LBool) String() string {
	switch l {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}
