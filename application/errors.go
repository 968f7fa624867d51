package application

import "fmt"

// Stage names the part of the application that failed.
type Stage string

const (
	StageAllocator Stage = "frame allocator"
	StagePlatform  Stage = "platform"
	StageRenderer  Stage = "renderer"
	StageGameInit  Stage = "game initialize"
	StageUpdate    Stage = "game update"
	StageRender    Stage = "game render"
	StageDrawFrame Stage = "draw frame"
	StageRun       Stage = "run"
)

// Error is a fatal application error.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("application: %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
func (e *Error) Cause() error  { return e.Err }
