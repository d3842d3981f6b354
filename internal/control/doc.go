// Package control provides the collaborators that write sheet and rudder
// input before each tick.
//
// Controllers implement [sim.Controller]:
//
//   - [None]: leaves the boat alone
//   - [Manual]: drains deltas queued by a keyboard or a network client
//   - [Trim]: slews sheet and rudder toward fixed settings
//   - [HeadingPID]: rudder autopilot holding a compass heading
//   - [AutoTrim]: eases or trims the sheet to hold an angle of attack
//   - [Combined]: sums the inputs of several controllers
//
// # Usage
//
//	pilot := control.NewHeadingPID(0.8, 0.05, 0.2, math.Pi/4)
//	trim := control.NewAutoTrim(world.Boat.Sails[0])
//	s := sim.New(world, control.Combine(pilot, trim))
package control
