package discovery

// locateCore finds the core record named by sel and returns the token range
// [start, limit) the interface scan covers.
//
// In manual mode the group key must be matched before the core key is
// considered, and the core must sit inside the matched group's object. The
// range starts just past the core's key/value pair and ends with the object
// holding it. In auto mode the first record is accepted and the whole
// document is scanned.
func locateCore(doc []byte, tokens []Token, sel Selection) (start, limit int, err error) {
	criteria, manual := sel.Criteria()
	if !manual {
		if len(tokens) == 0 {
			return 0, 0, ErrGroupOrCoreNotFound
		}
		return 0, len(tokens), nil
	}

	group, groupLimit, ok := findGroup(doc, tokens, criteria.GroupName)
	if !ok {
		return 0, 0, ErrGroupOrCoreNotFound
	}
	for i := group + 2; i < groupLimit; i++ {
		if matchPair(doc, tokens, i, KeyThingArn, criteria.CoreIdentity) {
			return i + 2, objectLimit(tokens, i), nil
		}
	}
	return 0, 0, ErrGroupOrCoreNotFound
}
