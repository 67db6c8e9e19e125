// Package process controls external process trees spawned by the renderer.
package process
