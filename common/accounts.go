package common

import "github.com/nspcc-dev/neo-go/pkg/util"

// ContainsAccount checks whether the list contains the account.
func ContainsAccount(list []util.Uint160, acc util.Uint160) bool {
	return IndexOfAccount(list, acc) >= 0
}

// IndexOfAccount returns index of the account in the list or -1.
func IndexOfAccount(list []util.Uint160, acc util.Uint160) int {
	for i := range list {
		if list[i].Equals(acc) {
			return i
		}
	}
	return -1
}

// AddAccount appends the account to the list if it is not there yet. Returns
// false if the account is already in the list.
func AddAccount(list []util.Uint160, acc util.Uint160) ([]util.Uint160, bool) {
	if ContainsAccount(list, acc) {
		return list, false
	}
	return append(list, acc), true
}

// RemoveAccount removes the account from the list keeping the order of other
// elements. Returns false if the account is not in the list.
func RemoveAccount(list []util.Uint160, acc util.Uint160) ([]util.Uint160, bool) {
	i := IndexOfAccount(list, acc)
	if i < 0 {
		return list, false
	}

	res := make([]util.Uint160, 0, len(list)-1)
	res = append(res, list[:i]...)
	return append(res, list[i+1:]...), true
}

// CountAccounts returns number of accounts from the list that are also in the
// set.
func CountAccounts(list, set []util.Uint160) int {
	var n int
	for i := range list {
		if ContainsAccount(set, list[i]) {
			n++
		}
	}
	return n
}
