// Package shower is a small transport host that drives the stepping
// notifications with something that looks like a particle shower.
//
// Tracks move along straight lines through a stack of slabs. In each slab
// they lose energy continuously if charged, and interact after an
// exponentially distributed free path, giving their energy to two or three
// secondaries. Tracks are transported depth first from a per-worker stack.
//
// The physics is only good enough to exercise tracers. Energy is conserved
// per event: the primary energy is deposited, carried out of the world, or
// dropped with killed tracks.
package shower
