package commands

import "errors"

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrNoFileName     = errors.New("no file name")
	ErrNothingToUndo  = errors.New("already at oldest change")
	ErrNothingToRedo  = errors.New("already at newest change")
	ErrEmptyGrid      = errors.New("grid is empty")
)
