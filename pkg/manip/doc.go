// Package manip converts pointer input into committed joint values. It
// resolves a ray hit to the manipulable joint (climbing through fixed
// connections), turns consecutive pointer samples into a 1-DOF joint delta,
// clamps against joint limits, and drives forward kinematics and the
// loop-closure solver after every commit. All of it runs synchronously on
// the caller's thread inside the pointer-event handler.
package manip
