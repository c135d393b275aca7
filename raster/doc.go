// Package raster is the rasterizer driver: primitive assembly,
// Sutherland-Hodgman clipping, triangle setup, a scanline worker pool,
// and the per-quad pixel pipeline dispatch that invokes package
// pipeline's compiled routines and resolves into a Framebuffer.
package raster
