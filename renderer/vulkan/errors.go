package vulkan

import "github.com/pkg/errors"

var (
	ErrNoPhysicalDevices      = errors.New("vulkan: no devices which support Vulkan were found")
	ErrNoSuitableDevice       = errors.New("vulkan: no physical device meets the requirements")
	ErrNoDepthFormat          = errors.New("vulkan: no supported depth format")
	ErrValidationLayerMissing = errors.New("vulkan: required validation layer is missing")
	ErrNotInitialized         = errors.New("vulkan: backend not initialized")
	ErrNoActiveFrame          = errors.New("vulkan: end frame without a matching begin frame")
	ErrCommandBufferState     = errors.New("vulkan: command buffer in wrong state")
)

// Stage names the initialization step that failed.
type Stage string

const (
	StageInstance          Stage = "instance creation"
	StageDebugMessenger    Stage = "debug messenger creation"
	StageSurface           Stage = "surface creation"
	StageDeviceSelection   Stage = "device selection"
	StageDeviceCreation    Stage = "device creation"
	StageSwapchainCreation Stage = "swapchain creation"
	StageRenderPass        Stage = "render pass creation"
	StageFramebuffers      Stage = "framebuffer creation"
	StageCommandBuffers    Stage = "command buffer allocation"
	StageSync              Stage = "sync object creation"
)

// StageError reports which step of backend initialization failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return string(e.Stage) + ": " + e.Err.Error() }
func (e *StageError) Unwrap() error { return e.Err }
func (e *StageError) Cause() error  { return e.Err }

func stageError(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}
