package sat

// resetSet is a set of integers from 0 to N-1 that can be emptied in constant
// time. Conflict analysis uses one to mark the variables it has already
// visited without paying for a clear between conflicts.
type resetSet struct {
	addedAt        []uint16
	addedTimestamp uint16
}

func (rs *resetSet) contains(v int) bool {
	return rs.addedAt[v] == rs.addedTimestamp
}

func (rs *resetSet) add(v int) {
	rs.addedAt[v] = rs.addedTimestamp
}

// clear removes all the elements in the set in constant time.
func (rs *resetSet) clear() {
	rs.addedTimestamp++
	if rs.addedTimestamp == 0 { // overflow
		rs.addedTimestamp = 1
		for i := range rs.addedAt {
			rs.addedAt[i] = 0
		}
	}
}

// expand increases the capacity of the set by one element.
func (rs *resetSet) expand() {
	rs.addedAt = append(rs.addedAt, 0)
}
