// Package colouring implements decentralized graph colouring: every graph
// node is controlled by an autonomous agent that must pick a colour no
// neighbour shares, under a shrinking colour palette and occasional topology
// perturbation.
//
// # Core concepts
//
// Agents perceive their neighbours' committed colours, rank candidate
// colours against a shared per-colour reputation board, and commit the best
// available choice. When the palette is too small for the neighbourhood, an
// agent knowingly accepts the least-bad conflict rather than holding no
// colour - the protocol is best-effort, not an exact solver.
//
// Two execution models exist. The sequential model visits agents once per
// round in a fixed ascending-id order; later agents observe earlier commits,
// an accepted first-mover bias that keeps runs reproducible. The concurrent
// model runs one goroutine per agent per round, gated by a RoundBarrier so
// every agent forms its intent before any agent starts negotiating.
// Colliding intents between neighbours resolve through a deterministic
// pairwise tie-break: degree, then contested-colour score, then node id.
//
// # Collaborators
//
// The package consumes a GraphStore for adjacency and committed colours and
// a ScoreBoard for reputation; both are interfaces, so the graph and the
// board can live in memory or behind an external store. Palette shrinking,
// edge rewiring, experiment looping and results persistence are the caller's
// concern.
package colouring
