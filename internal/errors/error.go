package errors

import "errors"

var (
	ErrPositionMissing   = errors.New("no position supplied for analysis")
	ErrIllegalMove       = errors.New("move is not legal in this position")
	ErrEngineUnavailable = errors.New("engine process is not running")
	ErrEngineCall        = errors.New("engine call failed")
	ErrGameNotFound      = errors.New("game not found")
	ErrBadPGN            = errors.New("could not parse PGN")
	ErrInternal          = errors.New("internal error")
)
