// Package wallscene renders 2D wallpaper scenes onto a GPU surface.
//
// # Overview
//
// A scene is a JSON document (see package document) listing sprite objects
// with a transform, a visibility flag and an image. Each frame, a [Renderer]
// resolves every object against an image→material index and a texture
// cache (see package assets), writes one textured quad per drawable object
// into a fixed-capacity vertex/index buffer set, and issues the draws in a
// single render pass.
//
// # Quick Start
//
//	root, _ := document.Load(f)
//	index, _, _ := assets.IndexScene(sceneFS, root)
//	cache, _, _ := assets.LoadTextures(sceneFS, index, assets.NewUploader(device, queue))
//
//	r, err := wallscene.NewRenderer(device, queue, wallscene.WithSize(1920, 1080))
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	img, report, err := r.RenderFrame(root, index, cache)
//
// # Dropped Objects
//
// Objects that cannot be drawn (hidden, missing origin or size, malformed
// vectors, unresolved textures) are left out of the frame and listed in the
// [Report]. They never fail the frame. Running out of buffer capacity does.
//
// # Logging
//
// wallscene is silent by default. Call [SetLogger] to route its diagnostics
// through log/slog.
package wallscene
