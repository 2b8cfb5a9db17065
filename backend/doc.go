// Package backend defines the capability contract every concrete SDCS
// renderer satisfies, and a registry for selecting one at runtime.
//
// A Backend wraps a pixel surface, the shared stream interpreter, and
// whatever presentation concerns the renderer has (window mapping, GPU
// submission, device files). The contract is deliberately narrow so that
// heterogeneous renderers (CPU rasterizers, window-system surfaces, GPU
// swapchains) are interchangeable to callers and to the host process
// runtime.
//
// # Backend Registration
//
// Backends register themselves via init() functions and are selected by
// name or by priority:
//
//	import _ "github.com/gogpu/sdcs/backend"     // software, headless
//	import _ "github.com/gogpu/sdcs/backend/gpu" // wgpu-backed, if available
//
//	b, err := backend.New(backend.DefaultOptions(800, 600))
//	// or a specific one:
//	b, err := backend.NewByName("software", backend.DefaultOptions(800, 600))
//
// External renderers (DRM/KMS, X11, Wayland, device-file protocols) plug in
// through Register without changes to this package.
//
// # Rendering
//
// Render never panics on a bad SDCS payload; decode failures are reported
// through the result's ErrorMsg so a hosted backend survives hostile input:
//
//	res := b.Render(&backend.RenderRequest{
//		SurfaceID: 1,
//		Stream:    enc.Bytes(),
//		Config:    backend.FramebufferConfig{Width: 800, Height: 600},
//	})
//	if !res.Ok() {
//		log.Println("frame failed:", res.ErrorMsg)
//	}
//
// # Input and clipboard
//
// Input draining and clipboard transfer are optional capabilities expressed
// as the InputSource and Clipboard interfaces; backends that cannot provide
// them simply do not implement them.
package backend
