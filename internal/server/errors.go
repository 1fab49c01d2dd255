// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"errors"
	"time"
)

var (
	errMissingISSN = errors.New("please provide an ISSN")
	errBadFilename = errors.New("invalid file name")
)

func rateLimitOrDefault(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

func rateWindowOrDefault(w time.Duration) time.Duration {
	if w <= 0 {
		return time.Second
	}
	return w
}
