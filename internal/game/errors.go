package game

import "errors"

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrGameInProgress = errors.New("game in progress")
	ErrWrongPassword  = errors.New("incorrect password")
	ErrNotHost        = errors.New("not host")
	ErrBadStatus      = errors.New("bad status")
	ErrBadConfig      = errors.New("invalid room settings")
)
