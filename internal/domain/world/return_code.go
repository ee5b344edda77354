package world

// ReturnCode is the status a world command reports back to the caller
type ReturnCode int

const (
	OK ReturnCode = iota
	ErrNotOwner
	ErrBusy
	ErrNotFound
	ErrNotEnoughResources
	ErrInvalidTarget
	ErrFull
	ErrNotInRange
	ErrInvalidArgs
	ErrTired
	ErrNoBodyPart
)

var returnCodeNames = map[ReturnCode]string{
	OK:                    "OK",
	ErrNotOwner:           "ERR_NOT_OWNER",
	ErrBusy:               "ERR_BUSY",
	ErrNotFound:           "ERR_NOT_FOUND",
	ErrNotEnoughResources: "ERR_NOT_ENOUGH_RESOURCES",
	ErrInvalidTarget:      "ERR_INVALID_TARGET",
	ErrFull:               "ERR_FULL",
	ErrNotInRange:         "ERR_NOT_IN_RANGE",
	ErrInvalidArgs:        "ERR_INVALID_ARGS",
	ErrTired:              "ERR_TIRED",
	ErrNoBodyPart:         "ERR_NO_BODYPART",
}

func (c ReturnCode) String() string {
	if name, ok := returnCodeNames[c]; ok {
		return name
	}
	return "ERR_UNKNOWN"
}
