package gfx

import (
	"log/slog"

	"github.com/gogpu/gpucontext"
)

// Option configures a Device when it is opened.
//
// Example:
//
//	dev, err := gfx.Open("gl",
//	    gfx.WithLogger(logger),
//	    gfx.WithProfiling(true),
//	)
type Option func(*Options)

// Options holds the device configuration collected from Option values.
// Backends read it through NewOptions.
type Options struct {
	// Logger receives device diagnostics. Defaults to Logger().
	Logger *slog.Logger

	// Debug logs every executed command at debug level.
	Debug bool

	// Profiling wraps command buffer execution in GPU timer queries on
	// backends that support them.
	Profiling bool

	// Provider supplies a host-owned GPU device. Backends that cannot
	// create their own device require it.
	Provider gpucontext.DeviceProvider
}

// NewOptions applies opts over the defaults.
func NewOptions(opts ...Option) Options {
	o := Options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.Logger == nil {
		o.Logger = Logger()
	}
	return o
}

// WithLogger sets the logger used by a device instead of the package logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithDebug enables per-command debug logging during execution.
func WithDebug(enabled bool) Option {
	return func(o *Options) {
		o.Debug = enabled
	}
}

// WithProfiling enables GPU timing of ExecuteCmdBuffers.
func WithProfiling(enabled bool) Option {
	return func(o *Options) {
		o.Profiling = enabled
	}
}

// WithDeviceProvider shares a GPU device owned by the host application,
// such as a gogpu window. The provider should also expose HalDevice() and
// HalQueue() for direct HAL access.
func WithDeviceProvider(p gpucontext.DeviceProvider) Option {
	return func(o *Options) {
		o.Provider = p
	}
}

// CmdBufferOption configures a CmdBuffer.
type CmdBufferOption func(*cmdBufferOptions)

type cmdBufferOptions struct {
	capacity int
}

// WithCapacity sets the maximum number of 32-bit words a command buffer can
// hold, including the End opcode.
func WithCapacity(words int) CmdBufferOption {
	return func(o *cmdBufferOptions) {
		if words > 0 {
			o.capacity = words
		}
	}
}
