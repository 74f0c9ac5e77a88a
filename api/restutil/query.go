// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package restutil

import (
	"math"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
)

// ParseLimitQuery parses the "limit" query parameter. A missing parameter
// yields zero, which callers treat as the default page size.
func ParseLimitQuery(query url.Values) (uint32, error) {
	raw := query.Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, BadRequest(errors.WithMessage(err, "limit"))
	}
	if n > math.MaxUint32 {
		return 0, BadRequest(errors.New("limit: out of range"))
	}
	return uint32(n), nil
}

// ParseBoolQuery parses an optional boolean query parameter, false when absent.
func ParseBoolQuery(query url.Values, name string) (bool, error) {
	raw := query.Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, BadRequest(errors.WithMessage(err, name))
	}
	return v, nil
}
