// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"sort"
	"strconv"
	"strings"

	"github.com/wigggles/opentxs-sub024/fault"
)

// FormatNumbers - comma separated list
func FormatNumbers(numbers []int64) string {
	s := make([]string, len(numbers))
	for i, n := range numbers {
		s[i] = strconv.FormatInt(n, 10)
	}
	return strings.Join(s, ",")
}

// ParseNumbers - reverse of FormatNumbers
func ParseNumbers(s string) ([]int64, error) {
	if "" == s {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	result := make([]int64, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if nil != err || n <= 0 {
			return nil, fault.InvalidCount
		}
		result[i] = n
	}
	return result, nil
}

// SortNumbers - ascending copy
func SortNumbers(numbers []int64) []int64 {
	result := append([]int64{}, numbers...)
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
