// Package gpu provides a GPU-presenting SDCS backend built on gogpu/wgpu.
//
// Drawing still goes through the shared stream interpreter on the CPU
// (SDCS defines no shader pipelines), but frames are uploaded to a GPU
// texture for presentation, and device bring-up (instance, adapter,
// device, queue) is real. Importing the package registers the backend:
//
//	import _ "github.com/gogpu/sdcs/backend/gpu"
//
// The backend registers at priority 100 and reports itself unavailable on
// systems without a usable adapter, so registry-driven selection falls
// back to the software backend cleanly.
package gpu
