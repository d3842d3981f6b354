// Package analysis turns recorded runs into numbers a sailor cares about.
//
//   - [PowerSpectrum] and [DominantFrequency]: oscillation of heading or
//     speed, e.g. an autopilot hunting around its course
//   - [Polar]: steady-state speed and VMG against true wind angle
//   - [TrackToASCII]: the path sailed, for a terminal
package analysis
