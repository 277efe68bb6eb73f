package tendon

import "errors"

// Sentinel errors returned by mutating calls. A rejected call leaves the
// armature, bone or frame exactly as it was.
var (
	ErrInvalidIterations    = errors.New("iteration count must be positive")
	ErrInvalidDamping       = errors.New("damping angle must be in (0, pi)")
	ErrInvalidStabilization = errors.New("stabilization pass count must not be negative")
	ErrInvalidLength        = errors.New("bone length must not be negative")
	ErrBoneCycle            = errors.New("bone cannot be parented to itself or one of its descendants")
	ErrFrameCycle           = errors.New("frame cannot be parented to itself or one of its descendants")
	ErrForeignBone          = errors.New("bone belongs to a different armature")
	ErrRootExists           = errors.New("armature already has a root bone")
	ErrDisposed             = errors.New("bone has been disposed")
)
