// Package model defines the kinematic data model for Armature.
// A Model is a tree of rigid Links connected by Joints, plus Constraints
// layered on top of the tree that may close kinematic loops. It is built
// once per loaded robot description and mutated in place for the life of
// the scene.
package model
