// Package viz is the terminal dashboard for a trajectory log.
//
//   - [Model]: bubbletea model stepping through the frames of a
//     [trajectory.Store]
//   - [Scene]: braille rendering of one frame, top-down for planar data
//     and through a rotatable [Camera] for 3D data
//
// # Key Bindings
//
//	←/→   - Step frames
//	U     - Reload the whole log
//	P     - Merge the log tail into the series
//	F     - Follow the log (periodic tail merge)
//	C     - Copy the current frame as JSON
//	T     - Cycle color themes
//	?     - Show help overlay
//
// The store pushes [RevisionMsg] values through the running program so
// ingestions started elsewhere still refresh the view.
package viz
