package kcl

import "errors"

var (
	ErrTruncated       = errors.New("kcl: truncated data")
	ErrInvalidHeader   = errors.New("kcl: invalid header")
	ErrInvalidSection  = errors.New("kcl: invalid section")
	ErrIndexOutOfRange = errors.New("kcl: index out of range")
	ErrInvalidOctree   = errors.New("kcl: invalid octree")
)
