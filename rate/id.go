package rate

import "strconv"

const (
	// MaxGroupRates is the number of rate slots in every group.
	MaxGroupRates = 10
	// MaxGroups is the number of groups an ID can address.
	MaxGroups = 256
)

// ID identifies one rate as a (group, index) pair. The zero value is None.
type ID struct {
	group uint8
	index uint8
	valid bool
}

// None is the "no candidate" sentinel.
var None ID

// NewID returns the rate at index within group. group must be below
// MaxGroups and index below MaxGroupRates.
func NewID(group, index int) ID {
	return ID{group: uint8(group), index: uint8(index), valid: true}
}

func (id ID) Group() int {
	return int(id.group)
}

func (id ID) Index() int {
	return int(id.index)
}

func (id ID) IsValid() bool {
	return id.valid
}

func (id ID) String() string {
	if !id.valid {
		return "none"
	}
	return strconv.Itoa(int(id.group)) + "/" + strconv.Itoa(int(id.index))
}
