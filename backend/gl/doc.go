// Package gl implements gfx.Device on OpenGL 3.3 core.
//
// The device talks to GL through the Functions interface, so the
// translation from descriptors and command streams to GL calls is plain Go
// and can be tested without a context. Package glcore supplies the real
// function table and registers the backend as "gl".
//
// # Resources
//
// Buffers, textures, samplers and framebuffers map one to one onto GL
// objects. A pipeline owns a linked program and a vertex array object with
// its attributes enabled; vertex attribute pointers are set when vertex
// buffers are bound. State blocks are translated to GL enums when created
// and applied in full whenever they are bound.
//
// Render passes with attachments own a framebuffer object. A pass without
// attachments targets the default framebuffer.
//
// # Push constants
//
// GL has no push constants. The device owns a 128-byte uniform buffer bound
// at PushConstantBinding and uploads each BindPushConstants payload into it.
// Shaders read it through a std140 block named PushConstants:
//
//	layout(std140) uniform PushConstants {
//	    mat4 mvp;
//	};
//
// # Vertex attributes
//
// Input layout element i is bound to attribute location i under the name
// returned by Semantic.AttribName, e.g. "inPosition" or "inTexCoord0".
//
// # Threading
//
// GL contexts are bound to one thread. A Device must only be used from the
// thread that owns its context.
package gl
