// Package viz draws the boat in the terminal.
//
// The live view is a Bubble Tea program:
//
//   - [Model]: sails a world in real time from the keyboard
//   - [Canvas]: braille pixel canvas, 2x4 dots per cell
//   - [Viewport]: maps world coordinates onto the canvas
//
// # Key Bindings
//
//	Up/Down    - Trim/ease the mainsheet
//	Left/Right - Rudder (moves the target heading when the autopilot is on)
//	A          - Toggle the autopilot
//	Space      - Pause/Resume
//	R          - Reset to the starting position
//	Q          - Quit
package viz
