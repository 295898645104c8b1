// Package entities contains core business entities and errors.
package entities

import "errors"

var (
	// ErrInvalidArgument signals failed input validation.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrClusterNotFound signals missing cluster.
	ErrClusterNotFound = errors.New("cluster not found")
	// ErrClusterExists signals cluster id conflict.
	ErrClusterExists = errors.New("cluster exists")
	// ErrWatchNotFound signals missing watch.
	ErrWatchNotFound = errors.New("watch not found")
	// ErrWatchExists signals watch id conflict.
	ErrWatchExists = errors.New("watch exists")
	// ErrVersionNotFound signals missing version.
	ErrVersionNotFound = errors.New("version not found")
	// ErrNoSigningKey signals absent app signing key material.
	ErrNoSigningKey = errors.New("no signing key configured")
)
