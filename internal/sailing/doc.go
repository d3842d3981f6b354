// Package sailing implements the per-tick force pipeline of a single-hull,
// single-sail boat.
//
// A [World] owns the [Wind] and the [Boat]; the boat owns its [Sail] and
// [Rudder] by composition. Each call to [World.Tick] runs the stages in a
// fixed order:
//
//  1. apply control [Input] (sheet and rudder deltas, optional overrides)
//  2. compute world transforms for the boat and its sails (cached for the tick)
//  3. apparent wind for the boat
//  4. sail drag and lift ([SailForces])
//  5. sail weathervane torque ([SailTorque]) followed by the boom constraint
//  6. sails push their impulses onto the boat
//  7. resolve the impulses along the keel ([Boat.Resolve])
//  8. quadratic hull drag ([Boat.ApplyDrag])
//  9. rudder steering ([Steer])
//  10. kinematic integration of position and rotation
//
// The force stages are instantaneous decompositions calibrated per fixed
// step and do not depend on dt; dt only scales the kinematic integration.
//
// Nothing in this package returns an error. Inputs are clamped into solvable
// ranges and zero vectors are special-cased before normalisation, so a
// correctly built world never produces NaN or Inf.
//
// # Angles
//
// Hull rotation 0 points the bow along +X. A sail's Rotation is measured from
// the line running from its pivot to its sheet block, so for a block on the
// centreline aft of the mast it is the boom angle off the centreline.
package sailing
